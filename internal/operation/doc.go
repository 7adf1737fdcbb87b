// Package operation holds the immutable descriptor model consumed by the
// executor.
//
// A BeanOperations value describes, for one Go type, which properties are
// assembled from a container (AssembleOperation) and which properties hold
// nested objects that must be expanded and enriched in the same pass
// (DisassembleOperation). Values are built once, by a Parser, and cached per
// type in a Catalog. They are never mutated afterwards: registering new
// operations for a type replaces the whole value.
//
// # Filters
//
// A Filter selects the operations that take part in one execution:
//
//	operation.MatchAnyGroup("nested")   // tagged with at least one group
//	operation.MatchAllGroups("id")      // tagged with every group
//	operation.MatchNoneOfGroups("id")   // tagged with none of the groups
//	operation.OnlyAssemble              // assemble operations only
package operation
