// Package assembler wires the engine together: configuration, container
// registry with caching, descriptor files, operation catalog and executor.
//
//	eng, err := assembler.New(cfg, assembler.WithTypes(types))
//	...
//	eng.Register(container.ForMap("status", statuses))
//	err = eng.Execute(ctx, orders)
package assembler
