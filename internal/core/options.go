package core

import (
	"github.com/coregx/quill/internal/dialects"
	"github.com/coregx/quill/internal/logger"
	"github.com/coregx/quill/internal/security"
	"github.com/coregx/quill/internal/tracer"
)

// Option is a functional option for configuring a Builder.
type Option func(*Builder)

// WithDialect sets the SQL dialect. The default is ClickHouse, which
// renders typed placeholders of the form {paramN:Tag}.
func WithDialect(d dialects.Dialect) Option {
	return func(b *Builder) {
		if d != nil {
			b.dialect = d
		}
	}
}

// WithLogger sets the logger for built statements and rejected input.
// The default logger discards everything.
func WithLogger(l logger.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithSanitizer sets the sanitizer used to mask parameters in log output.
func WithSanitizer(s *logger.Sanitizer) Option {
	return func(b *Builder) {
		if s != nil {
			b.sanitizer = s
		}
	}
}

// WithTracer sets the tracer used by BuildContext.
func WithTracer(t tracer.Tracer) Option {
	return func(b *Builder) {
		if t != nil {
			b.tracer = t
		}
	}
}

// WithRawValidator screens every Raw fragment and Expr text with v before
// it is emitted. Without it raw text is trusted as is.
func WithRawValidator(v *security.Validator) Option {
	return func(b *Builder) {
		b.validator = v
	}
}
