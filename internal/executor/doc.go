// Package executor runs BeanOperations against live objects.
//
// An execution has three phases:
//
//  1. Expansion walks disassemble operations from the root targets and
//     produces every reachable (instance, operations) pair. Instances already
//     visited in the same execution are not expanded again, which bounds the
//     walk over cyclic object graphs.
//  2. Batching extracts the lookup keys of every assemble operation across
//     all pairs and groups them by container namespace, so one container call
//     serves every nesting level.
//  3. Merge hands each container result to the operation's cardinality
//     handler, which writes through the operation's mapping strategy.
//
// Two variants exist. Unordered makes no ordering promise and may fetch
// namespaces in parallel. Ordered runs assemble operations in ascending Sort
// stages, reading keys at stage time, so later operations see the fields
// earlier ones wrote.
package executor
