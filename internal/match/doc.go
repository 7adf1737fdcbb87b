// Package match ranks known names by similarity to an unknown one, for
// "did you mean" hints in descriptor diagnostics.
//
// Key functions:
//   - Normalize: case-folds identifiers and strips separators
//   - Levenshtein: edit distance between strings
//   - Suggest: the closest candidates to a name
package match
