package executor

import (
	"context"

	"github.com/hashicorp/go-multierror"
	"go.opentelemetry.io/otel/attribute"

	"field-assembler/internal/container"
	"field-assembler/internal/operation"
)

// Unordered batches every assemble operation of an execution at once. No
// order is promised between operations; container calls of different
// namespaces may run in parallel.
type Unordered struct {
	engine
}

// NewUnordered creates an unordered executor resolving containers from registry.
func NewUnordered(registry *container.Registry, opts ...Option) *Unordered {
	return &Unordered{engine: engine{registry: registry, opts: newOptions(opts)}}
}

func (u *Unordered) Execute(ctx context.Context, targets any, ops *operation.BeanOperations, filter operation.Filter) (err error) {
	roots := Targets(targets)
	if len(roots) == 0 || ops.IsEmpty() {
		return nil
	}

	ctx, span := u.start(ctx, "unordered", len(roots))
	defer func() { finish(span, err) }()

	entries, err := u.expand(roots, ops, filter)
	if err != nil {
		return err
	}

	batches := group(u.extract(u.candidates(entries, filter)))
	span.SetAttributes(
		attribute.Int("executor.instances", len(entries)),
		attribute.Int("executor.namespaces", len(batches)),
	)

	results, err := u.fetch(ctx, batches, u.opts.parallelism)
	if err != nil {
		return err
	}

	collected, err := u.merge(batches, results)
	if err != nil {
		return err
	}

	return multierror.Append(nil, collected...).ErrorOrNil()
}
