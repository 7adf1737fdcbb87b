package executor

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"field-assembler/internal/handler"
	"field-assembler/internal/operation"
	"field-assembler/internal/property"
)

const tracerName = "field-assembler/executor"

type options struct {
	accessor    property.Accessor
	policy      ConversionPolicy
	parallelism int
	tracer      trace.Tracer
	handler     operation.AssembleHandler
}

func newOptions(opts []Option) options {
	o := options{
		accessor:    property.Default(),
		policy:      ConversionAbort,
		parallelism: 1,
		tracer:      otel.Tracer(tracerName),
		handler:     handler.OneToOne,
	}

	for _, opt := range opts {
		opt(&o)
	}

	if o.parallelism < 1 {
		o.parallelism = 1
	}

	return o
}

// Option configures an executor.
type Option func(*options)

// WithAccessor sets the property accessor used to read keys and write values.
func WithAccessor(acc property.Accessor) Option {
	return func(o *options) {
		if acc != nil {
			o.accessor = acc
		}
	}
}

// WithConversionPolicy sets how conversion failures are handled.
func WithConversionPolicy(p ConversionPolicy) Option {
	return func(o *options) { o.policy = p }
}

// WithParallelism bounds concurrent container calls of the unordered
// executor. Values below 1 mean sequential.
func WithParallelism(n int) Option {
	return func(o *options) { o.parallelism = n }
}

// WithTracer sets the tracer recording execution spans.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) {
		if t != nil {
			o.tracer = t
		}
	}
}

// WithDefaultHandler sets the handler of assemble operations without one.
func WithDefaultHandler(h operation.AssembleHandler) Option {
	return func(o *options) {
		if h != nil {
			o.handler = h
		}
	}
}
