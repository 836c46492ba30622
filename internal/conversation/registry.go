package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/wolfman30/foundry-guide/internal/observability/metrics"
	"github.com/wolfman30/foundry-guide/pkg/logging"
)

// ErrSessionNotFound is returned for ids the registry does not hold.
var ErrSessionNotFound = errors.New("conversation: session not found")

// RegistryOptions configure session storage. A zero TTL keeps sessions
// until reset or process exit.
type RegistryOptions struct {
	TTL             time.Duration
	CleanupInterval time.Duration
	Logger          *logging.Logger
	Metrics         *metrics.ChatMetrics
}

// Registry owns every live session, keyed by an opaque id. Events for one
// id are handled one at a time; different ids proceed independently.
type Registry struct {
	engine   *Engine
	sessions *cache.Cache // id -> *sessionSlot
	ttl      time.Duration
	logger   *logging.Logger
	events   *EventLogger
	metrics  *metrics.ChatMetrics
}

func NewRegistry(engine *Engine, opts RegistryOptions) *Registry {
	if engine == nil {
		engine = NewEngine(EngineOptions{Logger: opts.Logger, Metrics: opts.Metrics})
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}

	expiration := cache.NoExpiration
	cleanup := time.Duration(0)
	if opts.TTL > 0 {
		expiration = opts.TTL
		cleanup = opts.CleanupInterval
		if cleanup <= 0 {
			cleanup = 10 * time.Minute
		}
	}

	r := &Registry{
		engine:   engine,
		sessions: cache.New(expiration, cleanup),
		ttl:      opts.TTL,
		logger:   logger,
		events:   NewEventLogger(logger),
		metrics:  opts.Metrics,
	}
	r.sessions.OnEvicted(func(id string, _ interface{}) {
		r.logger.Debug("conversation: session expired", "session_id", id)
	})
	return r
}

// Engine returns the engine sessions are handled with.
func (r *Registry) Engine() *Engine { return r.engine }

// sessionSlot pairs a session with the mutex serializing its events. The
// mutex lives as long as the slot, so an expiry never hands a second
// mutex to a caller while the first is held.
type sessionSlot struct {
	mu      sync.Mutex
	session *Session
}

// Create allocates a new session and returns its greeting.
func (r *Registry) Create(ctx context.Context) Response {
	id := newSessionID()
	s := r.engine.NewSession(id)
	r.sessions.Set(id, &sessionSlot{session: s}, cache.DefaultExpiration)

	r.events.SessionCreated(ctx, id)
	r.metrics.ObserveSessionCreated()
	return s.InitialResponse()
}

// Get returns a copy of the session stored under id.
func (r *Registry) Get(id string) (*Session, error) {
	slot, err := r.load(id)
	if err != nil {
		return nil, err
	}
	slot.mu.Lock()
	defer slot.mu.Unlock()
	return slot.session.clone(), nil
}

// Reset replaces the session under id with a fresh one.
func (r *Registry) Reset(ctx context.Context, id string) (Response, error) {
	slot, err := r.load(id)
	if err != nil {
		return Response{}, err
	}
	slot.mu.Lock()
	defer slot.mu.Unlock()

	old := slot.session
	slot.session = r.engine.NewSession(id)
	r.sessions.Set(id, slot, cache.DefaultExpiration)
	r.events.SessionReset(ctx, id, old.Stage())
	r.metrics.ObserveEvent(old.Stage().String(), "reset")
	return slot.session.InitialResponse(), nil
}

// Handle runs one event against the session under id.
func (r *Registry) Handle(ctx context.Context, id, message string) (Response, error) {
	slot, err := r.load(id)
	if err != nil {
		return Response{}, err
	}
	slot.mu.Lock()
	defer slot.mu.Unlock()

	resp, next := r.engine.Handle(ctx, slot.session, message)
	slot.session = next
	// Store on every event so a TTL slides with activity.
	r.sessions.Set(id, slot, cache.DefaultExpiration)
	return resp, nil
}

// Len reports how many sessions are held, expired ones included until the
// next cleanup.
func (r *Registry) Len() int {
	return r.sessions.ItemCount()
}

func (r *Registry) load(id string) (*sessionSlot, error) {
	v, ok := r.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return v.(*sessionSlot), nil
}

// newSessionID returns 32 lowercase hex characters.
func newSessionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
