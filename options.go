package ksi

import "go.uber.org/zap"

// ContextOption configures a [Context] returned by [NewContext], in the
// functional-options style. There is no configuration file or environment
// surface, since this package is a library, not a service.
type ContextOption func(*defaultContext)

// WithLogger attaches a structured logger to a [Context]. Every pushed error
// is mirrored to l at Warn level; l is also consulted for development-time
// diagnostics such as accepting non-canonical TLV16 encodings. A nil logger
// (the default) discards all logging.
func WithLogger(l *zap.Logger) ContextOption {
	return func(c *defaultContext) {
		if l == nil {
			l = zap.NewNop()
		}
		c.log = l
	}
}

// WithMaxPayload overrides the payload-length bound enforced by operations
// such as [SetRawValue] and [CastToRaw]. It can only tighten the bound: values
// above the protocol maximum of 65535 are clamped back down to it.
func WithMaxPayload(n int) ContextOption {
	return func(c *defaultContext) {
		if n > maxPayloadLength || n < 0 {
			n = maxPayloadLength
		}
		c.maxPayload = n
	}
}
