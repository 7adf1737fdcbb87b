package executor

import (
	"context"
	"fmt"
	"reflect"

	"field-assembler/internal/common"
	"field-assembler/internal/operation"
)

// Template is the convenience entry point of the engine: it resolves the
// operations of the targets from a catalog and hands them to an executor.
type Template struct {
	catalog  *operation.Catalog
	executor Executor
}

// NewTemplate creates a template over catalog and executor.
func NewTemplate(catalog *operation.Catalog, executor Executor) *Template {
	return &Template{catalog: catalog, executor: executor}
}

// Execute runs every operation of the targets' type, taken from the first
// non-nil target.
func (t *Template) Execute(ctx context.Context, targets any) error {
	return t.ExecuteFiltered(ctx, targets, nil)
}

// ExecuteFiltered runs the operations of the targets' type accepted by filter.
func (t *Template) ExecuteFiltered(ctx context.Context, targets any, filter operation.Filter) error {
	first, ok := common.First(Targets(targets))
	if !ok {
		return nil
	}

	ops, err := t.catalog.ResolveValue(first)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNoOperations, err)
	}

	return t.executor.Execute(ctx, targets, ops, filter)
}

// ExecuteType runs every operation of type typ.
func (t *Template) ExecuteType(ctx context.Context, targets any, typ reflect.Type) error {
	if len(Targets(targets)) == 0 {
		return nil
	}

	ops, err := t.catalog.Resolve(typ)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNoOperations, err)
	}

	return t.executor.Execute(ctx, targets, ops, nil)
}

// ExecuteOperations runs ops accepted by filter.
func (t *Template) ExecuteOperations(ctx context.Context, targets any, ops *operation.BeanOperations, filter operation.Filter) error {
	return t.executor.Execute(ctx, targets, ops, filter)
}

// ExecuteIfMatchAnyGroups runs operations tagged with any of groups.
func (t *Template) ExecuteIfMatchAnyGroups(ctx context.Context, targets any, groups ...string) error {
	return t.ExecuteFiltered(ctx, targets, operation.MatchAnyGroup(groups...))
}

// ExecuteIfMatchAllGroups runs operations tagged with all of groups.
func (t *Template) ExecuteIfMatchAllGroups(ctx context.Context, targets any, groups ...string) error {
	return t.ExecuteFiltered(ctx, targets, operation.MatchAllGroups(groups...))
}

// ExecuteIfNoneMatchAnyGroups runs operations tagged with none of groups.
func (t *Template) ExecuteIfNoneMatchAnyGroups(ctx context.Context, targets any, groups ...string) error {
	return t.ExecuteFiltered(ctx, targets, operation.MatchNoneOfGroups(groups...))
}
