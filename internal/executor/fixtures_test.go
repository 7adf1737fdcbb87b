package executor

import (
	"context"
	"reflect"
	"sync"

	"field-assembler/internal/container"
	"field-assembler/internal/handler"
	"field-assembler/internal/operation"
)

type Foo struct {
	ID        string
	Name      string
	NestedFoo any
}

type NestedFoo struct {
	ID    string
	Name  string
	Key   string
	Value string
}

var identityData = map[string]string{"1": "1", "2": "2", "3": "3"}

// fooCatalog declares the operations of Foo and NestedFoo.
func fooCatalog() *operation.Catalog {
	return operation.NewCatalog(operation.ParserFunc(func(t reflect.Type, c *operation.Catalog) (*operation.BeanOperations, error) {
		switch t {
		case reflect.TypeOf(Foo{}):
			return operation.NewBeanOperations(t,
				[]*operation.AssembleOperation{
					operation.NewAssemble("ID", "test", operation.WithGroups("id"), operation.WithRef("Name")),
				},
				[]*operation.DisassembleOperation{
					operation.NewDisassemble("NestedFoo", t, handler.Disassemble, operation.DynamicResolver(c),
						operation.WithGroups("nested", "nestedFoo")),
				},
			), nil
		case reflect.TypeOf(NestedFoo{}):
			return operation.NewBeanOperations(t,
				[]*operation.AssembleOperation{
					operation.NewAssemble("ID", "test", operation.WithGroups("nested", "id"),
						operation.WithRef("Name"), operation.WithSort(1)),
					operation.NewAssemble("Key", "test", operation.WithGroups("nested", "key"),
						operation.WithRef("Value"), operation.WithSort(2)),
				}, nil,
			), nil
		default:
			return nil, nil
		}
	}))
}

func fooList() []*Foo {
	return []*Foo{
		{ID: "1", NestedFoo: &NestedFoo{ID: "1", Key: "1"}},
		{ID: "2", NestedFoo: &NestedFoo{ID: "2", Key: "2"}},
	}
}

// counter records the keys every namespace was asked for.
type counter struct {
	mu    sync.Mutex
	calls map[string]int
	keys  map[string][]any
}

func newCounter() *counter {
	return &counter{calls: map[string]int{}, keys: map[string][]any{}}
}

func (c *counter) wrap(inner container.Container) container.Container {
	return container.ForFunc(inner.Namespace(), func(ctx context.Context, keys []any) (map[any]any, error) {
		c.mu.Lock()
		c.calls[inner.Namespace()]++
		c.keys[inner.Namespace()] = append(c.keys[inner.Namespace()], keys...)
		c.mu.Unlock()

		return inner.Get(ctx, keys)
	})
}

func (c *counter) callsOf(ns string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.calls[ns]
}

func (c *counter) keysOf(ns string) []any {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.keys[ns]
}
