package content

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wolfman30/foundry-guide/pkg/logging"
)

// DefaultFetchTimeout bounds a single fetch from the source.
const DefaultFetchTimeout = 15 * time.Second

var errNoSource = errors.New("no source configured")

// Store holds the immutable FAQ list loaded from a Source. The first load
// attempt is memoized, failed or not; only Reload fetches again.
type Store struct {
	source       Source
	logger       *logging.Logger
	fetchTimeout time.Duration

	// fetchMu serializes fetches so concurrent first loads hit the source once.
	fetchMu sync.Mutex

	mu        sync.RWMutex
	attempted bool
	loaded    bool
	loadErr   error
	entries   []Entry
	byID      map[string]int
}

// NewStore creates a store over source.
func NewStore(source Source, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{
		source:       source,
		logger:       logger,
		fetchTimeout: DefaultFetchTimeout,
		byID:         map[string]int{},
	}
}

// Load returns the entries, fetching them on first use. When the first
// attempt fails the store stays empty and every later Load returns the same
// *LoadError without touching the source until Reload is called.
func (s *Store) Load(ctx context.Context) ([]Entry, error) {
	if entries, ok, err := s.memoized(); ok {
		return entries, err
	}

	s.fetchMu.Lock()
	defer s.fetchMu.Unlock()
	if entries, ok, err := s.memoized(); ok {
		return entries, err
	}
	return s.fetch(ctx)
}

// Reload fetches the source again and swaps the entries on success. A failed
// reload keeps whatever was loaded before.
func (s *Store) Reload(ctx context.Context) ([]Entry, error) {
	s.fetchMu.Lock()
	defer s.fetchMu.Unlock()
	return s.fetch(ctx)
}

func (s *Store) memoized() ([]Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.attempted {
		return nil, false, nil
	}
	if s.loadErr != nil {
		return nil, true, s.loadErr
	}
	return s.copyEntries(), true, nil
}

func (s *Store) fetch(ctx context.Context) ([]Entry, error) {
	entries, err := s.fetchEntries(ctx)
	if err != nil {
		s.mu.Lock()
		s.attempted = true
		if !s.loaded {
			s.loadErr = err
		}
		s.mu.Unlock()
		return nil, err
	}

	byID := make(map[string]int, len(entries))
	for i, e := range entries {
		byID[e.ID] = i
	}

	s.mu.Lock()
	s.entries = entries
	s.byID = byID
	s.attempted = true
	s.loaded = true
	s.loadErr = nil
	out := s.copyEntries()
	s.mu.Unlock()

	s.logger.Info("content: faq entries loaded", "source", s.source.Name(), "count", len(entries))
	return out, nil
}

func (s *Store) fetchEntries(ctx context.Context) ([]Entry, error) {
	if s.source == nil {
		return nil, &LoadError{Source: "none", Err: errNoSource}
	}
	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	raw, err := s.source.Fetch(fetchCtx)
	if err != nil {
		return nil, &LoadError{Source: s.source.Name(), Err: err}
	}

	entries := make([]Entry, 0, len(raw))
	for _, e := range raw {
		entries = append(entries, e.normalize())
	}
	if err := validate(entries); err != nil {
		return nil, &LoadError{Source: s.source.Name(), Err: err}
	}
	return entries, nil
}

// Entries returns the loaded entries in source order (empty before a
// successful load).
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyEntries()
}

// Get looks up an entry by id.
func (s *Store) Get(id string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return Entry{}, false
	}
	return s.entries[i].clone(), true
}

// Len reports how many entries are loaded.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store) copyEntries() []Entry {
	out := make([]Entry, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.clone()
	}
	return out
}
