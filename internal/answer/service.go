package answer

import (
	"context"
	"strings"

	"github.com/wolfman30/foundry-guide/internal/content"
	"github.com/wolfman30/foundry-guide/internal/interactions"
	"github.com/wolfman30/foundry-guide/internal/retrieval"
	"github.com/wolfman30/foundry-guide/pkg/logging"
)

// AnonymousUser is recorded when an ask carries no session id.
const AnonymousUser = "anonymous"

// Service runs the free-text pipeline: content, scoring, composition and
// the interaction log.
type Service struct {
	store    *content.Store
	composer *Composer
	recorder *interactions.Recorder
	limit    int
	logger   *logging.Logger
}

func NewService(store *content.Store, composer *Composer, recorder *interactions.Recorder, limit int, logger *logging.Logger) *Service {
	if composer == nil {
		composer = NewComposer(nil, Options{Logger: logger})
	}
	if limit <= 0 {
		limit = retrieval.DefaultLimit
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{store: store, composer: composer, recorder: recorder, limit: limit, logger: logger}
}

// Entries returns the loaded FAQ entries. A failed load yields whatever
// was loaded before, possibly nothing. The store remembers a failed load,
// so this never refetches per request.
func (s *Service) Entries(ctx context.Context) []content.Entry {
	if s.store == nil {
		return nil
	}
	entries, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Debug("answer: content unavailable, continuing without faq entries", "error", err)
		return s.store.Entries()
	}
	return entries
}

// Ask answers question for userID and records the interaction.
func (s *Service) Ask(ctx context.Context, userID, question string) Answer {
	scored := retrieval.FindRelevant(question, s.Entries(ctx), s.limit)
	ans := s.composer.Compose(ctx, question, scored)

	if strings.TrimSpace(userID) == "" {
		userID = AnonymousUser
	}
	matched := make([]interactions.Match, 0, len(scored))
	for _, se := range scored {
		matched = append(matched, interactions.Match{ID: se.Entry.ID, Score: se.Score})
	}
	s.recorder.Record(ctx, interactions.NewRecord(userID, question, ans.Text, matched))
	return ans
}
