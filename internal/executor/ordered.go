package executor

import (
	"cmp"
	"context"
	"slices"

	"github.com/hashicorp/go-multierror"
	"go.opentelemetry.io/otel/attribute"

	"field-assembler/internal/container"
	"field-assembler/internal/log"
	"field-assembler/internal/operation"
)

// Ordered runs assemble operations in stages of ascending Sort. Keys are read
// when their stage starts, so an operation may depend on a property written
// by an operation of a lower Sort. Within a stage, pairs are still batched
// by namespace across all instances. Container calls run sequentially.
type Ordered struct {
	engine
}

// NewOrdered creates an ordered executor resolving containers from registry.
func NewOrdered(registry *container.Registry, opts ...Option) *Ordered {
	return &Ordered{engine: engine{registry: registry, opts: newOptions(opts)}}
}

func (o *Ordered) Execute(ctx context.Context, targets any, ops *operation.BeanOperations, filter operation.Filter) (err error) {
	roots := Targets(targets)
	if len(roots) == 0 || ops.IsEmpty() {
		return nil
	}

	ctx, span := o.start(ctx, "ordered", len(roots))
	defer func() { finish(span, err) }()

	entries, err := o.expand(roots, ops, filter)
	if err != nil {
		return err
	}

	stages := stages(o.candidates(entries, filter))
	span.SetAttributes(
		attribute.Int("executor.instances", len(entries)),
		attribute.Int("executor.stages", len(stages)),
	)

	var collected []error

	for _, stage := range stages {
		batches := group(o.extract(stage))
		log.Debug(log.CatExecutor, "stage", "sort", stage[0].op.Sort(), "pairs", len(stage), "namespaces", len(batches))

		results, err := o.fetch(ctx, batches, 1)
		if err != nil {
			return err
		}

		failures, err := o.merge(batches, results)
		collected = append(collected, failures...)

		if err != nil {
			return err
		}
	}

	return multierror.Append(nil, collected...).ErrorOrNil()
}

// stages splits pairs into runs of equal Sort, in ascending order. The
// relative order of pairs within a stage is kept.
func stages(pairs []*pair) [][]*pair {
	sorted := slices.Clone(pairs)
	slices.SortStableFunc(sorted, func(a, b *pair) int { return cmp.Compare(a.op.Sort(), b.op.Sort()) })

	var out [][]*pair

	for i := 0; i < len(sorted); {
		j := i + 1
		for j < len(sorted) && sorted[j].op.Sort() == sorted[i].op.Sort() {
			j++
		}

		out = append(out, sorted[i:j])
		i = j
	}

	return out
}
