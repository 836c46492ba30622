package conversation

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/foundry-guide/internal/answer"
	"github.com/wolfman30/foundry-guide/pkg/logging"
)

var primaryOptions = []string{
	"VC & Funding Insights",
	"Female Foundry Programs",
	"Community & Stories",
	"Contact & Partners",
}

type stubAnswerer struct {
	answers map[string]answer.Answer
	asked   []string
}

func (s *stubAnswerer) Ask(_ context.Context, userID, question string) answer.Answer {
	s.asked = append(s.asked, userID+":"+question)
	if ans, ok := s.answers[question]; ok {
		return ans
	}
	return answer.Answer{Text: answer.NoInfoMessage, Source: answer.SourceGeneric}
}

func newTestEngine(opts EngineOptions) *Engine {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	return NewEngine(opts)
}

func send(t *testing.T, e *Engine, s *Session, input string) (Response, *Session) {
	t.Helper()
	return e.Handle(context.Background(), s, input)
}

func TestEngine_NameTransitionsToPrimaryMenu(t *testing.T) {
	e := newTestEngine(EngineOptions{})
	for _, name := range []string{"alice", "  Bob  ", "mary-jane o'neil", "李", "x"} {
		t.Run(name, func(t *testing.T) {
			s := e.NewSession("s1")
			resp, next := send(t, e, s, name)

			assert.Same(t, s, next)
			assert.Equal(t, StageMenuPrimary, resp.Stage)
			assert.Equal(t, primaryOptions, resp.Options)
			assert.Len(t, s.History(), 3)
		})
	}
}

func TestEngine_NameIsTitleCased(t *testing.T) {
	e := newTestEngine(EngineOptions{Formatter: PlainText})
	s := e.NewSession("s1")

	resp, _ := send(t, e, s, "  mary-jane o'neil ")
	assert.Equal(t, "Mary-Jane O'Neil", s.VisitorName())
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, "Nice to meet you, Mary-Jane O'Neil! Choose what you’d like to explore:", resp.Messages[0].Content)

	history := s.History()
	assert.Equal(t, Message{Role: RoleUser, Content: "mary-jane o'neil"}, history[1])
}

func TestEngine_FullMenuWalk(t *testing.T) {
	e := newTestEngine(EngineOptions{})
	s := e.NewSession("s1")

	send(t, e, s, "Alice")
	resp, _ := send(t, e, s, "VC & Funding Insights")
	assert.Equal(t, StageMenuSecondary, resp.Stage)
	assert.Equal(t, []string{"Headline metrics", "Deep Tech & AI", "Using the Index"}, resp.Options)
	assert.Equal(t, "Great! Let’s drill into VC &amp; Funding Insights. Pick a specific topic:", resp.Messages[0].Content)
	assert.Equal(t, "VC & Funding Insights", s.PrimaryChoice())

	resp, _ = send(t, e, s, "Headline metrics")
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, FormatBotMessage(DefaultMenu().Answers["Headline metrics"]), resp.Messages[0].Content)
	assert.Contains(t, resp.Messages[0].Content, "€5.76B raised by female-founded startups")
	assert.Equal(t, "Anything else you&#x27;d like to explore?", resp.Messages[1].Content)
	assert.Equal(t, StageMenuPrimary, resp.Stage)
	assert.Equal(t, primaryOptions, resp.Options)
	assert.Empty(t, s.PrimaryChoice())

	// greeting, Alice, ack, primary pick, drill-in, leaf pick, answer, closing
	assert.Len(t, s.History(), 8)
}

func TestEngine_PlainClosingPrompt(t *testing.T) {
	e := newTestEngine(EngineOptions{Formatter: PlainText})
	s := e.NewSession("s1")
	send(t, e, s, "Alice")
	send(t, e, s, "vc & funding insights")
	resp, _ := send(t, e, s, "HEADLINE METRICS")

	assert.Equal(t, "Anything else you'd like to explore?", resp.Messages[1].Content)
}

func TestEngine_PrimaryMismatchKeepsState(t *testing.T) {
	e := newTestEngine(EngineOptions{})
	s := e.NewSession("s1")
	send(t, e, s, "Alice")
	before := len(s.History())

	for _, input := range []string{"VC", "funding", "Female Foundry", "Headline metrics", "VC & Funding Insights!"} {
		resp, _ := send(t, e, s, input)
		assert.Equal(t, StageMenuPrimary, resp.Stage, input)
		assert.Equal(t, primaryOptions, resp.Options)
		assert.Equal(t, FormatBotMessage(PrimaryRepromptMessage), resp.Messages[0].Content)
		assert.Len(t, s.History(), before, input)
	}
}

func TestEngine_SecondaryMismatchRepromptsSameList(t *testing.T) {
	e := newTestEngine(EngineOptions{})
	s := e.NewSession("s1")
	send(t, e, s, "Alice")
	send(t, e, s, "Contact & Partners")
	before := len(s.History())

	resp, _ := send(t, e, s, "Headline metrics")
	assert.Equal(t, StageMenuSecondary, resp.Stage)
	assert.Equal(t, []string{"Contact", "Partners", "Media coverage"}, resp.Options)
	assert.Equal(t, FormatBotMessage(SecondaryRepromptMessage), resp.Messages[0].Content)
	assert.Len(t, s.History(), before)
}

func TestEngine_EmptyInputDoesNotTouchHistory(t *testing.T) {
	e := newTestEngine(EngineOptions{})
	s := e.NewSession("s1")

	resp, _ := send(t, e, s, "   ")
	assert.Equal(t, StageAwaitName, resp.Stage)
	assert.Empty(t, resp.Options)
	assert.Equal(t, EmptyInputMessage, resp.Messages[0].Content)
	assert.Len(t, s.History(), 1)

	send(t, e, s, "Alice")
	send(t, e, s, "Female Foundry Programs")
	resp, _ = send(t, e, s, "")
	assert.Equal(t, []string{"AI Visionaries", "AI Hustle", "Sunday Newsletter"}, resp.Options)
	assert.Len(t, s.History(), 5)
}

func TestEngine_ResetFromAnyStage(t *testing.T) {
	e := newTestEngine(EngineOptions{})
	walks := [][]string{
		{},
		{"Alice"},
		{"Alice", "Community & Stories"},
		{"Alice", "Community & Stories", "Shop"},
	}
	for i, walk := range walks {
		for _, cmd := range []string{"reset", "  START OVER ", "Reset"} {
			t.Run(fmt.Sprintf("walk%d/%s", i, cmd), func(t *testing.T) {
				s := e.NewSession("s1")
				for _, input := range walk {
					send(t, e, s, input)
				}
				resp, next := send(t, e, s, cmd)

				assert.NotSame(t, s, next)
				assert.Equal(t, "s1", next.ID())
				assert.Equal(t, StageAwaitName, resp.Stage)
				assert.Empty(t, resp.Options)
				assert.NotNil(t, resp.Options)
				assert.Equal(t, []Message{{Role: RoleBot, Content: FormatBotMessage(GreetingMessage)}}, resp.Messages)
				assert.Equal(t, resp.Messages, next.History())
				assert.Empty(t, next.VisitorName())
			})
		}
	}
}

func TestEngine_RecoversFromInconsistentState(t *testing.T) {
	var buf bytes.Buffer
	e := newTestEngine(EngineOptions{Logger: logging.NewWithWriter("debug", &buf)})

	s := e.NewSession("s1")
	s.stage = StageMenuSecondary
	resp, _ := send(t, e, s, "Contact")
	assert.Equal(t, StageMenuPrimary, resp.Stage)
	assert.Equal(t, primaryOptions, resp.Options)
	assert.Equal(t, FormatBotMessage(RecoveryMessage), resp.Messages[0].Content)
	assert.Contains(t, buf.String(), "inconsistent session state")

	s = e.NewSession("s2")
	s.stage = StageShowInfo
	resp, _ = send(t, e, s, "anything")
	assert.Equal(t, StageMenuPrimary, resp.Stage)
}

func TestEngine_MissingSnippet(t *testing.T) {
	menu := &Menu{
		Primary:   []string{"Programs"},
		Secondary: map[string][]string{"Programs": {"Office hours"}},
	}
	e := newTestEngine(EngineOptions{Menu: menu})
	s := e.NewSession("s1")
	send(t, e, s, "Alice")
	send(t, e, s, "Programs")
	resp, _ := send(t, e, s, "office hours")

	require.Len(t, resp.Messages, 1)
	assert.Equal(t, FormatBotMessage(MissingSnippetMessage), resp.Messages[0].Content)
	assert.Equal(t, StageMenuPrimary, resp.Stage)
	assert.Equal(t, []string{"Programs"}, resp.Options)
}

func TestEngine_CannedModeAsksOnlyWithoutCannedText(t *testing.T) {
	menu := &Menu{
		Primary:   []string{"Programs"},
		Secondary: map[string][]string{"Programs": {"AI Hustle", "Office hours"}},
		Answers:   map[string]string{"AI Hustle": "Canned hustle."},
	}
	answerer := &stubAnswerer{answers: map[string]answer.Answer{
		"Office hours": {Text: "Tuesdays at 10.", Source: answer.SourceFAQ},
	}}
	e := newTestEngine(EngineOptions{Menu: menu, Answerer: answerer, Formatter: PlainText})

	s := e.NewSession("s1")
	send(t, e, s, "Alice")
	send(t, e, s, "Programs")
	resp, _ := send(t, e, s, "AI Hustle")
	assert.Equal(t, "Canned hustle.", resp.Messages[0].Content)
	assert.Empty(t, answerer.asked)

	send(t, e, s, "Programs")
	resp, _ = send(t, e, s, "Office hours")
	assert.Equal(t, "Tuesdays at 10.", resp.Messages[0].Content)
	assert.Equal(t, []string{"s1:Office hours"}, answerer.asked)
}

func TestEngine_KnowledgeMode(t *testing.T) {
	answerer := &stubAnswerer{answers: map[string]answer.Answer{
		"Headline metrics": {Text: "From the index.", Source: answer.SourceLLM},
	}}
	e := newTestEngine(EngineOptions{Mode: AnswerModeKnowledge, Answerer: answerer, Formatter: PlainText})

	s := e.NewSession("s1")
	send(t, e, s, "Alice")
	send(t, e, s, "VC & Funding Insights")
	resp, _ := send(t, e, s, "Headline metrics")
	assert.Equal(t, "From the index.", resp.Messages[0].Content)

	// Nothing matched: canned text wins.
	send(t, e, s, "VC & Funding Insights")
	resp, _ = send(t, e, s, "Using the Index")
	assert.Equal(t, PlainText(DefaultMenu().Answers["Using the Index"]), resp.Messages[0].Content)
	assert.Len(t, answerer.asked, 2)
}

func TestIsResetCommand(t *testing.T) {
	assert.True(t, IsResetCommand("reset"))
	assert.True(t, IsResetCommand(" Start Over "))
	assert.False(t, IsResetCommand("start"))
	assert.False(t, IsResetCommand("reset please"))
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Alice Smith", titleCase("alice smith"))
	assert.Equal(t, "Élodie", titleCase("ÉLODIE"))
	assert.Equal(t, "O'Neil", titleCase("o'neil"))
	assert.Equal(t, "3Rd", titleCase("3rd"))
}
