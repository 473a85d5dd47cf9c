package ksi

import (
	"sync"

	"go.uber.org/zap"
)

// Context is the error-stack sink that every fallible operation in this
// package reports against, in addition to returning a Go error. It is the
// external contract described by the surrounding SDK: "report an error kind
// plus optional message against a caller-supplied context handle". This
// package never inspects errors it pushes; Context exists so a caller can
// correlate a batch of codec operations (e.g. all the nodes parsed out of one
// signature) against a single diagnostic trail.
type Context interface {
	// PushError records a failure of the given kind, with an optional
	// human-readable message.
	PushError(kind ErrorKind, msg string)
	// ClearErrors discards any previously pushed errors.
	ClearErrors()
}

// diagnosable is implemented by Context values that also want structured,
// development-time diagnostics (buffer growth, non-canonical input accepted,
// clone structural checks). It is intentionally not part of the Context
// interface: the codec never requires a logger, only an error sink.
type diagnosable interface {
	Debugf(format string, args ...any)
}

// payloadLimiter is implemented by Context values that want to enforce a
// payload bound stricter than the protocol maximum (e.g. a transport with a
// smaller frame size than 65535 bytes). See [WithMaxPayload].
type payloadLimiter interface {
	MaxPayload() int
}

func maxPayloadFor(ctx Context) int {
	if pl, ok := ctx.(payloadLimiter); ok {
		return pl.MaxPayload()
	}
	return maxPayloadLength
}

func debugf(ctx Context, format string, args ...any) {
	if d, ok := ctx.(diagnosable); ok {
		d.Debugf(format, args...)
	}
}

// ctxFail builds an [*Error] of the given kind and pushes it onto ctx, if
// ctx is non-nil. It is used by package-level functions (those not attached
// to an existing [Node]) that still need to honor the Context contract, such
// as [ParseBlob] failing before a node exists to own the failure.
func ctxFail(ctx Context, kind ErrorKind, op string, err error) error {
	e := newError(kind, op, err)
	if ctx != nil {
		ctx.PushError(kind, e.Error())
	}
	return e
}

// pushedError is one entry in a [*defaultContext]'s error stack.
type pushedError struct {
	Kind ErrorKind
	Msg  string
}

// defaultContext is the Context implementation returned by [NewContext]. It
// keeps every pushed error until [Context.ClearErrors] and, if configured with
// [WithLogger], mirrors every pushed error as a structured warning.
type defaultContext struct {
	mu         sync.Mutex
	log        *zap.Logger
	maxPayload int
	errs       []pushedError
}

// NewContext creates a [Context] suitable for driving this package's
// operations. With no options, it records pushed errors (retrievable via
// defaultContext.Errors) and performs no logging.
func NewContext(opts ...ContextOption) Context {
	c := &defaultContext{
		log:        zap.NewNop(),
		maxPayload: maxPayloadLength,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *defaultContext) PushError(kind ErrorKind, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, pushedError{Kind: kind, Msg: msg})
	c.log.Warn("ksi: operation failed", zap.Stringer("kind", kind), zap.String("msg", msg))
}

func (c *defaultContext) ClearErrors() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = c.errs[:0]
}

// Errors returns a copy of the errors pushed onto c since the last
// [Context.ClearErrors].
func (c *defaultContext) Errors() []pushedError {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]pushedError, len(c.errs))
	copy(out, c.errs)
	return out
}

func (c *defaultContext) Debugf(format string, args ...any) {
	c.log.Sugar().Debugf(format, args...)
}

func (c *defaultContext) MaxPayload() int { return c.maxPayload }
