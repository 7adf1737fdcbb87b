// Package container defines the keyed, batched data sources that assemble
// operations read from, the Registry resolving them by namespace, and the
// Cacheable decorator.
//
// A Container answers one batched call per namespace and execution:
//
//	c := container.ForMap("users", map[int]*User{1: ann, 2: bob})
//	values, err := c.Get(ctx, []any{1, 3}) // {1: ann}
//
// Get never returns a nil map, and keys without a value are simply omitted.
package container
