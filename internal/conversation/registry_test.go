package conversation

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/foundry-guide/internal/observability/metrics"
	"github.com/wolfman30/foundry-guide/pkg/logging"
)

func newTestRegistry(opts RegistryOptions) *Registry {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	return NewRegistry(NewEngine(EngineOptions{Logger: opts.Logger, Metrics: opts.Metrics}), opts)
}

func TestRegistry_CreateReturnsGreeting(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := newTestRegistry(RegistryOptions{Metrics: metrics.NewChatMetrics(reg)})

	resp := r.Create(context.Background())
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{32}$`), resp.SessionID)
	assert.Equal(t, StageAwaitName, resp.Stage)
	assert.Equal(t, []string{}, resp.Options)
	assert.Equal(t, []Message{{Role: RoleBot, Content: FormatBotMessage(GreetingMessage)}}, resp.Messages)

	other := r.Create(context.Background())
	assert.NotEqual(t, resp.SessionID, other.SessionID)
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, float64(2), counterValue(t, reg, "guide_chat_sessions_created_total"))
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			return mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func TestRegistry_UnknownSession(t *testing.T) {
	r := newTestRegistry(RegistryOptions{})

	_, err := r.Handle(context.Background(), "missing", "hi")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = r.Reset(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = r.Get("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_AliceWalk(t *testing.T) {
	r := newTestRegistry(RegistryOptions{})
	ctx := context.Background()
	id := r.Create(ctx).SessionID

	_, err := r.Handle(ctx, id, "Alice")
	require.NoError(t, err)
	_, err = r.Handle(ctx, id, "VC & Funding Insights")
	require.NoError(t, err)
	resp, err := r.Handle(ctx, id, "Headline metrics")
	require.NoError(t, err)

	require.Len(t, resp.Messages, 2)
	assert.Equal(t, FormatBotMessage(DefaultMenu().Answers["Headline metrics"]), resp.Messages[0].Content)
	assert.Equal(t, FormatBotMessage(ClosingMessage), resp.Messages[1].Content)
	assert.Equal(t, StageMenuPrimary, resp.Stage)
	assert.Equal(t, primaryOptions, resp.Options)

	s, err := r.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "Alice", s.VisitorName())
	assert.Len(t, s.History(), 8)
}

func TestRegistry_ResetReplacesSession(t *testing.T) {
	r := newTestRegistry(RegistryOptions{})
	ctx := context.Background()
	id := r.Create(ctx).SessionID
	_, _ = r.Handle(ctx, id, "Alice")
	before, err := r.Get(id)
	require.NoError(t, err)

	resp, err := r.Reset(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, resp.SessionID)
	assert.Equal(t, StageAwaitName, resp.Stage)
	assert.Empty(t, resp.Options)

	after, err := r.Get(id)
	require.NoError(t, err)
	assert.Len(t, after.History(), 1)
	assert.Len(t, before.History(), 3)

	// Typed reset goes through the same path.
	_, _ = r.Handle(ctx, id, "Bob")
	resp, err = r.Handle(ctx, id, "start over")
	require.NoError(t, err)
	assert.Equal(t, StageAwaitName, resp.Stage)
	after, _ = r.Get(id)
	assert.Len(t, after.History(), 1)
	assert.Empty(t, after.VisitorName())
}

func TestRegistry_GetReturnsCopy(t *testing.T) {
	r := newTestRegistry(RegistryOptions{})
	id := r.Create(context.Background()).SessionID

	s, err := r.Get(id)
	require.NoError(t, err)
	s.appendUser("tampered")

	fresh, _ := r.Get(id)
	assert.Len(t, fresh.History(), 1)
}

func TestRegistry_SerializesEventsPerSession(t *testing.T) {
	r := newTestRegistry(RegistryOptions{})
	ctx := context.Background()
	id := r.Create(ctx).SessionID

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Handle(ctx, id, "Alice")
			assert.NoError(t, err)
		}()
	}
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			other := r.Create(ctx).SessionID
			resp, err := r.Handle(ctx, other, "Bob")
			assert.NoError(t, err)
			assert.Equal(t, StageMenuPrimary, resp.Stage)
		}()
	}
	wg.Wait()

	s, err := r.Get(id)
	require.NoError(t, err)
	// Only the first "Alice" is accepted as a name; the rest are rejected
	// menu picks that leave history alone.
	assert.Len(t, s.History(), 3)
	assert.Equal(t, 21, r.Len())
}

func TestRegistry_SessionsExpireWithTTL(t *testing.T) {
	r := newTestRegistry(RegistryOptions{TTL: 20 * time.Millisecond, CleanupInterval: 5 * time.Millisecond})
	id := r.Create(context.Background()).SessionID

	_, err := r.Get(id)
	require.NoError(t, err)

	time.Sleep(60 * time.Millisecond)
	_, err = r.Get(id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRegistry_NoTTLKeepsSessions(t *testing.T) {
	r := newTestRegistry(RegistryOptions{})
	id := r.Create(context.Background()).SessionID
	time.Sleep(10 * time.Millisecond)

	_, err := r.Get(id)
	assert.NoError(t, err)
}

func TestRegistry_ExpiryKeepsEventsSerialized(t *testing.T) {
	r := newTestRegistry(RegistryOptions{TTL: 30 * time.Millisecond, CleanupInterval: 5 * time.Millisecond})
	ctx := context.Background()
	id := r.Create(ctx).SessionID

	// An event is in flight while the janitor expires the session.
	slot, err := r.load(id)
	require.NoError(t, err)
	slot.mu.Lock()
	time.Sleep(60 * time.Millisecond)
	_, err = r.load(id)
	require.ErrorIs(t, err, ErrSessionNotFound)

	// The in-flight event stores the session back, as Handle does.
	r.sessions.Set(id, slot, time.Minute)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := r.Handle(ctx, id, "Ada")
		assert.NoError(t, err)
	}()

	select {
	case <-done:
		t.Fatal("second event ran while the first still held the session")
	case <-time.After(50 * time.Millisecond):
	}
	slot.mu.Unlock()
	<-done

	s, err := r.Get(id)
	require.NoError(t, err)
	assert.Equal(t, StageMenuPrimary, s.Stage())
}

func TestRegistry_ResetKeepsSessionSlot(t *testing.T) {
	r := newTestRegistry(RegistryOptions{})
	ctx := context.Background()
	id := r.Create(ctx).SessionID

	before, err := r.load(id)
	require.NoError(t, err)
	_, err = r.Reset(ctx, id)
	require.NoError(t, err)
	after, err := r.load(id)
	require.NoError(t, err)
	assert.Same(t, before, after)
}
