// Package property reads and writes named properties on live objects.
//
// The engine treats property paths as opaque strings handed to an Accessor.
// The default Accessor is composed from explicit decorators:
//
//	acc := property.Chain(property.NewReflective(property.NewConverter()), property.Paths)
//
// # Path Syntax
//
// Paths are dot-separated segments resolved one at a time:
//   - Simple fields: "Name"
//   - Nested fields: "Address.Street"
//   - Map keys on map[string]T values: "Attrs.color"
//
// A segment on a struct matches the exact field name first, then the name in
// the field's json tag, then a case-insensitive field name.
//
// # Errors
//
// Missing properties report ErrPropertyNotFound, targets that cannot be
// assigned report ErrNotWritable and failed coercions report a
// *ConversionError, which also matches ErrConversion.
package property
