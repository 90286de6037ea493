package queue

import (
	"context"
	"errors"
	"sort"
	"sync"
)

var (
	// ErrNoHandler is reported when a job's key has no registered handler at dispatch time.
	ErrNoHandler = errors.New("queue: no handler registered for key")
	// ErrClosed is reported for jobs added after shutdown began.
	ErrClosed = errors.New("queue: closed")
)

// Queue accepts jobs for asynchronous execution. Add returns immediately and
// never fails the caller; encoding and backend errors go to the queue's reporter.
type Queue interface {
	Add(ctx context.Context, key string, payload any, opts ...Option)
}

// Handler executes one job. The payload is the JSON encoding of what was passed to Add.
type Handler interface {
	Handle(ctx context.Context, payload []byte) error
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx context.Context, payload []byte) error

func (f HandlerFunc) Handle(ctx context.Context, payload []byte) error { return f(ctx, payload) }

// Option tunes a single Add call.
type Option func(*addOptions)

type addOptions struct {
	uniqueID string
}

// WithUniqueID drops the job when another job with the same id is still
// pending or running.
func WithUniqueID(id string) Option {
	return func(o *addOptions) { o.uniqueID = id }
}

// UniqueIDOf returns the id set through WithUniqueID, for Queue
// implementations living outside this package.
func UniqueIDOf(opts ...Option) string {
	return collectOptions(opts).uniqueID
}

func collectOptions(opts []Option) addOptions {
	var o addOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Registry maps job keys to handlers. Lookups happen when a job is dispatched,
// so handlers registered after a job was added still receive it.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register binds key to h, replacing any previous handler.
func (r *Registry) Register(key string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[key] = h
}

func (r *Registry) Lookup(key string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[key]
	return h, ok
}

// Keys lists the registered keys in sorted order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.handlers))
	for k := range r.handlers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
