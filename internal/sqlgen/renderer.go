// Package sqlgen lowers sqldsl nodes to IRIS SQL.
//
// The Renderer dispatches explicitly over the closed set of node kinds. Each
// kind has one rule, and every rule receives the context it is rendered in:
// predicate context (WHERE, HAVING, JOIN ... ON) or scalar context (select
// list, ORDER BY, function arguments, comparison operands). IRIS has no
// boolean value type, so predicates reached in scalar context are folded to
// CASE WHEN p THEN 1 ELSE 0 END.
//
// Statement lowering lives in lower.go and the LIMIT/OFFSET emulation in
// paginate.go.
package sqlgen

import (
	"io"
	"log/slog"

	"github.com/pthm/irisql/internal/codec"
	"github.com/pthm/irisql/internal/dialect"
)

// Renderer renders nodes for one dialect configuration. It holds no mutable
// state and is safe for concurrent use.
type Renderer struct {
	cfg        dialect.Config
	codec      codec.Options
	log        *slog.Logger
	onFallback func(error)
	colAliases bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.log = l
		}
	}
}

// WithFallbackHook registers a function called whenever the pagination
// rewrite fails and standard rendering is substituted. The error passed to fn
// wraps irisql.ErrRenderFallback and the underlying cause.
func WithFallbackHook(fn func(error)) Option {
	return func(r *Renderer) {
		r.onFallback = fn
	}
}

// WithColAliases labels unaliased select items "col1", "col2", ...
func WithColAliases(on bool) Option {
	return func(r *Renderer) {
		r.colAliases = on
	}
}

// New creates a Renderer for cfg.
func New(cfg dialect.Config, opts ...Option) *Renderer {
	r := &Renderer{
		cfg:   cfg,
		codec: codec.OptionsFrom(cfg),
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Config returns the dialect configuration the renderer was built with.
func (r *Renderer) Config() dialect.Config {
	return r.cfg
}
