package executor

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"field-assembler/internal/container"
	"field-assembler/internal/log"
	"field-assembler/internal/operation"
	"field-assembler/internal/property"
)

// Executor runs operations against targets. targets may be nil, a single
// object, or a slice or array of objects. A nil filter accepts every
// operation.
type Executor interface {
	Execute(ctx context.Context, targets any, ops *operation.BeanOperations, filter operation.Filter) error
}

// entry is an instance reached during expansion with the operations governing it.
type entry struct {
	target any
	ops    *operation.BeanOperations
}

// pair is one assemble operation declared by one target.
type pair struct {
	target  any
	op      *operation.AssembleOperation
	handler operation.AssembleHandler
	keys    []any
}

// batch holds the pairs sharing a namespace and their distinct keys.
type batch struct {
	namespace string
	keys      []any
	pairs     []*pair
}

type engine struct {
	registry *container.Registry
	opts     options
}

// expand walks disassemble operations breadth first from roots.
func (e *engine) expand(roots []any, ops *operation.BeanOperations, filter operation.Filter) ([]entry, error) {
	visited := make(map[visitKey]struct{})
	queue := make([]entry, 0, len(roots))

	enqueue := func(target any, ops *operation.BeanOperations) {
		if id, ok := identity(target); ok {
			if _, seen := visited[id]; seen {
				log.Debug(log.CatExecutor, "instance already visited", "type", typeOf(target))
				return
			}

			visited[id] = struct{}{}
		}

		queue = append(queue, entry{target: target, ops: ops})
	}

	for _, r := range roots {
		enqueue(r, ops)
	}

	for i := 0; i < len(queue); i++ {
		cur := queue[i]

		for _, dop := range cur.ops.DisassembleOperations() {
			if !filter.Accept(dop) {
				continue
			}

			nested, err := dop.Handler().Process(e.opts.accessor, cur.target, dop)
			if err != nil {
				log.Warn(log.CatExecutor, "skip disassemble", "operation", dop.String(),
					"type", typeOf(cur.target), "error", err)

				continue
			}

			for _, n := range nested {
				nops, err := dop.InternalBeanOperations(n)
				if err != nil {
					return nil, fmt.Errorf("%s: resolve %s: %w", dop, typeOf(n), err)
				}

				if nops.IsEmpty() {
					continue
				}

				enqueue(n, nops)
			}
		}
	}

	return queue, nil
}

// candidates lists the accepted assemble operations of every entry.
func (e *engine) candidates(entries []entry, filter operation.Filter) []*pair {
	var out []*pair

	for _, en := range entries {
		for _, op := range en.ops.AssembleOperations() {
			if !filter.Accept(op) {
				continue
			}

			h := op.Handler()
			if h == nil {
				h = e.opts.handler
			}

			out = append(out, &pair{target: en.target, op: op, handler: h})
		}
	}

	return out
}

// extract reads the keys of every pair, dropping pairs without usable keys.
func (e *engine) extract(pairs []*pair) []*pair {
	out := make([]*pair, 0, len(pairs))

	for _, p := range pairs {
		keys, err := p.handler.Keys(e.opts.accessor, p.target, p.op)
		if err != nil {
			log.Debug(log.CatExecutor, "skip key extraction", "operation", p.op.String(),
				"type", typeOf(p.target), "error", err)

			continue
		}

		if len(keys) == 0 {
			continue
		}

		p.keys = keys
		out = append(out, p)
	}

	return out
}

// group batches pairs by namespace, in namespace order.
func group(pairs []*pair) []*batch {
	byNamespace := make(map[string]*batch)
	seen := make(map[string]map[any]struct{})

	for _, p := range pairs {
		ns := p.op.Namespace()

		b, ok := byNamespace[ns]
		if !ok {
			b = &batch{namespace: ns}
			byNamespace[ns] = b
			seen[ns] = make(map[any]struct{})
		}

		b.pairs = append(b.pairs, p)

		for _, k := range p.keys {
			if _, dup := seen[ns][k]; dup {
				continue
			}

			seen[ns][k] = struct{}{}
			b.keys = append(b.keys, k)
		}
	}

	out := make([]*batch, 0, len(byNamespace))
	for _, b := range byNamespace {
		out = append(out, b)
	}

	slices.SortFunc(out, func(a, b *batch) int { return cmp.Compare(a.namespace, b.namespace) })

	return out
}

// fetch issues one container call per batch, at most parallelism at a time.
// The empty namespace is never called.
func (e *engine) fetch(ctx context.Context, batches []*batch, parallelism int) ([]map[any]any, error) {
	results := make([]map[any]any, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	for i, b := range batches {
		if b.namespace == container.EmptyNamespace {
			continue
		}

		g.Go(func() error {
			r, err := e.call(gctx, b)
			results[i] = r

			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func (e *engine) call(ctx context.Context, b *batch) (result map[any]any, err error) {
	ctx, span := e.opts.tracer.Start(ctx, "container.Get", trace.WithAttributes(
		attribute.String("container.namespace", b.namespace),
		attribute.Int("container.keys", len(b.keys)),
	))
	defer func() { finish(span, err) }()

	c, err := e.registry.Container(ctx, b.namespace)
	if err != nil {
		return nil, err
	}

	result, err = c.Get(ctx, b.keys)
	if err != nil {
		return nil, &ContainerError{Namespace: b.namespace, Err: err}
	}

	if result == nil {
		result = map[any]any{}
	}

	log.Debug(log.CatExecutor, "container called", "namespace", b.namespace,
		"keys", len(b.keys), "found", len(result))

	return result, nil
}

// merge writes results into the pairs of every batch. Conversion failures
// follow the conversion policy; collected ones are returned separately from
// a fatal error.
func (e *engine) merge(batches []*batch, results []map[any]any) ([]error, error) {
	var collected []error

	for i, b := range batches {
		for _, p := range b.pairs {
			result := results[i]
			if b.namespace == container.EmptyNamespace {
				result = self(p)
			}

			err := p.handler.Merge(e.opts.accessor, p.target, p.op, p.keys, result)
			if err == nil {
				continue
			}

			merr := &MergeError{Operation: p.op.String(), Target: typeOf(p.target), Err: err}

			if !errors.Is(err, property.ErrConversion) {
				return collected, merr
			}

			switch e.opts.policy {
			case ConversionCollect:
				collected = append(collected, merr)
			case ConversionIgnore:
				log.Warn(log.CatExecutor, "conversion failure ignored", "operation", p.op.String(),
					"type", typeOf(p.target), "error", err)
			default:
				return collected, merr
			}
		}
	}

	return collected, nil
}

// self maps every key of p to the target itself.
func self(p *pair) map[any]any {
	out := make(map[any]any, len(p.keys))
	for _, k := range p.keys {
		out[k] = p.target
	}

	return out
}

func (e *engine) start(ctx context.Context, variant string, roots int) (context.Context, trace.Span) {
	return e.opts.tracer.Start(ctx, "executor.Execute", trace.WithAttributes(
		attribute.String("executor.variant", variant),
		attribute.Int("executor.targets", roots),
	))
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	span.End()
}
