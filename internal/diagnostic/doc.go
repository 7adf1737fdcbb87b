// Package diagnostic provides structured errors, warnings and notes
// reported while validating operation descriptors.
//
// Key capabilities:
//   - Unknown types, handlers and strategies
//   - Property paths that do not resolve
//   - Undeclared or duplicate containers
package diagnostic
