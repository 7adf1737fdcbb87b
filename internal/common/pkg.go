package common

import (
	"path"
	"reflect"
)

// PkgAlias returns the package alias (last element of path) for a given package path.
// Returns empty string if pkgPath is empty.
func PkgAlias(pkgPath string) string {
	if pkgPath == "" {
		return ""
	}

	return path.Base(pkgPath)
}

// TypeName returns a short "alias.Name" form of t with pointers stripped,
// e.g. "orders.Order" for *orders.Order. Unnamed types use reflect's notation.
func TypeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t.Name() == "" {
		return t.String()
	}

	if alias := PkgAlias(t.PkgPath()); alias != "" {
		return alias + "." + t.Name()
	}

	return t.Name()
}

// Indirect strips all pointer levels from t.
func Indirect(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return t
}
