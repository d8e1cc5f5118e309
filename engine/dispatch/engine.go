package dispatch

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/pokus-ai/taskpanel/engine/contract"
	statex "github.com/pokus-ai/taskpanel/engine/state"
)

const defaultQueueSize = 128

// Subscriber receives a snapshot of the unified state after every applied
// event. Callbacks run on the engine goroutine and must not block.
type Subscriber func(statex.UnifiedState)

// Engine routes tool-call events to reducers and persists the folded state.
// All mutation happens on the single goroutine running Run, so reducers never
// observe concurrent writes.
type Engine struct {
	container *statex.Container[statex.UnifiedState]
	reducers  map[string]Reducer
	events    chan contract.ToolCallEvent

	mu          sync.Mutex
	subscribers []Subscriber
}

type Option func(*options)

type options struct {
	stateKey  string
	queueSize int
	reducers  map[string]Reducer
}

// WithStateKey overrides the document key the folded state is persisted under.
func WithStateKey(key string) Option {
	return func(o *options) { o.stateKey = key }
}

// WithReducer registers or replaces the reducer for a tool name.
func WithReducer(tool string, r Reducer) Option {
	return func(o *options) { o.reducers[tool] = r }
}

// WithQueueSize sets the event buffer length.
func WithQueueSize(n int) Option {
	return func(o *options) { o.queueSize = n }
}

func New(store statex.DocumentStore, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, errors.New("document store is required")
	}

	o := options{
		stateKey:  statex.KeyUnifiedState,
		queueSize: defaultQueueSize,
		reducers:  defaultReducers(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if strings.TrimSpace(o.stateKey) == "" {
		return nil, statex.ErrInvalidKey
	}
	if o.queueSize <= 0 {
		o.queueSize = defaultQueueSize
	}

	container, err := statex.NewContainer(store, o.stateKey, statex.NewUnifiedState())
	if err != nil {
		return nil, err
	}

	return &Engine{
		container: container,
		reducers:  o.reducers,
		events:    make(chan contract.ToolCallEvent, o.queueSize),
	}, nil
}

// Dispatch enqueues an event for the engine goroutine. It never blocks; if
// the queue is full the event is dropped and logged.
func (e *Engine) Dispatch(ev contract.ToolCallEvent) {
	select {
	case e.events <- ev:
	default:
		log.Warn().
			Str("tool", ev.Tool).
			Str("phase", string(ev.Phase)).
			Msg("engine: event queue full, dropping event")
	}
}

// Subscribe registers a callback invoked after every applied event with a
// snapshot of the new state.
func (e *Engine) Subscribe(fn Subscriber) {
	if fn == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subscribers = append(e.subscribers, fn)
}

// Snapshot returns a deep copy of the current unified state.
func (e *Engine) Snapshot() statex.UnifiedState {
	return e.container.Get().Clone()
}

// Reset clears the persisted state and notifies subscribers with the fresh
// default.
func (e *Engine) Reset(ctx context.Context) {
	e.container.Clear(ctx)
	e.notify(e.container.Get())
}

// Run hydrates the persisted state and consumes events until ctx is done.
func (e *Engine) Run(ctx context.Context) {
	e.container.Hydrate(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-e.events:
			e.apply(ctx, ev)
		}
	}
}

func (e *Engine) apply(ctx context.Context, ev contract.ToolCallEvent) {
	reduce, ok := e.reducers[ev.Tool]
	if !ok {
		log.Debug().Str("tool", ev.Tool).Msg("engine: no reducer registered, ignoring event")
		return
	}

	next := reduce(e.container.Get().Clone(), ev)
	e.container.Set(ctx, next)

	log.Debug().
		Str("tool", ev.Tool).
		Str("phase", string(ev.Phase)).
		Str("active_task", string(next.ActiveTask)).
		Msg("engine: event applied")

	e.notify(next)
}

func (e *Engine) notify(s statex.UnifiedState) {
	e.mu.Lock()
	subs := make([]Subscriber, len(e.subscribers))
	copy(subs, e.subscribers)
	e.mu.Unlock()

	for _, fn := range subs {
		fn(s.Clone())
	}
}
