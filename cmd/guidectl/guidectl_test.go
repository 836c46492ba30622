package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/wolfman30/foundry-guide/internal/config"
)

const testIndex = `[
  {"id": "ff_site_ai_hustle", "title": "AI Hustle", "question": "What is AI Hustle?",
   "answer": "A free monthly clinic for AI founders.", "tags": ["programs"]},
  {"id": "ff_site_contact", "title": "Contact", "question": "How do I reach the team?",
   "answer": "Write to hello@femalefoundry.org.", "tags": ["contact"]}
]`

func runGuidectl(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	index := filepath.Join(t.TempDir(), "index.json")
	require.NoError(t, os.WriteFile(index, []byte(testIndex), 0o600))

	cfg := &appconfig.Config{
		ContentSource:  index,
		MenuAnswerMode: "canned",
		LLMProvider:    "none",
	}
	root := newRootCmd(&env{cfg: cfg})

	var out bytes.Buffer
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.ExecuteContext(t.Context())
	return out.String(), err
}

func TestChatWalksTheMenu(t *testing.T) {
	out, err := runGuidectl(t, "ada lovelace\n1\n1\nquit\n", "chat")
	require.NoError(t, err)

	assert.Contains(t, out, "What’s your name?")
	assert.Contains(t, out, "Nice to meet you, Ada Lovelace!")
	assert.Contains(t, out, "  1) VC & Funding Insights")
	assert.Contains(t, out, "Let’s drill into VC & Funding Insights.")
	assert.Contains(t, out, "Anything else you'd like to explore?")
	assert.NotContains(t, out, "<ul", "terminal output must be plain text")
}

func TestChatEndsOnEOF(t *testing.T) {
	out, err := runGuidectl(t, "", "chat")
	require.NoError(t, err)
	assert.Contains(t, out, "What’s your name?")
}

func TestResolveOption(t *testing.T) {
	opts := []string{"Contact", "Partners"}
	assert.Equal(t, "Partners", resolveOption("2", opts))
	assert.Equal(t, "3", resolveOption("3", opts))
	assert.Equal(t, "contact", resolveOption("contact", opts))
}

func TestAskPrintsAnswerAndMatches(t *testing.T) {
	out, err := runGuidectl(t, "", "ask", "what", "is", "ai", "hustle")
	require.NoError(t, err)

	assert.Contains(t, out, "A free monthly clinic for AI founders.")
	assert.Contains(t, out, "source: faq")
	assert.Contains(t, out, "ff_site_ai_hustle")
}

func TestScorePrintsEveryEntry(t *testing.T) {
	out, err := runGuidectl(t, "", "score", "--sort", "ai hustle")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "SCORE"))
	assert.True(t, strings.HasPrefix(lines[1], "1.000"))
	assert.Contains(t, lines[1], "ff_site_ai_hustle")
	assert.Contains(t, lines[2], "ff_site_contact")
}

func TestCompleteRequiresProvider(t *testing.T) {
	_, err := runGuidectl(t, "", "complete", "hello")
	require.ErrorContains(t, err, "no completion provider configured")

	_, err = runGuidectl(t, "", "--provider", "llama", "complete", "hello")
	require.ErrorContains(t, err, "unknown completion provider")
}
