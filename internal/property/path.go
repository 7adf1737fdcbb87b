package property

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"
)

// FieldPath is a parsed dot-separated property path.
type FieldPath struct {
	Segments []string
}

// String returns the dot-joined form of the path.
func (p FieldPath) String() string {
	return strings.Join(p.Segments, ".")
}

// IsNested returns true if the path has more than one segment.
func (p FieldPath) IsNested() bool {
	return len(p.Segments) > 1
}

// ParsePath parses a property path string into a FieldPath.
// Supports: "Field", "Nested.Field", "Attrs.some-key".
func ParsePath(path string) (FieldPath, error) {
	if path == "" {
		return FieldPath{}, errors.New("empty path")
	}

	var segments []string

	for part := range strings.SplitSeq(path, ".") {
		if part == "" {
			return FieldPath{}, fmt.Errorf("invalid path %q: empty segment", path)
		}

		if !isValidSegment(part) {
			return FieldPath{}, fmt.Errorf("invalid path %q: invalid segment %q", path, part)
		}

		segments = append(segments, part)
	}

	return FieldPath{Segments: segments}, nil
}

// isValidSegment accepts identifiers and map keys: any non-empty run of
// printable characters without whitespace.
func isValidSegment(s string) bool {
	for _, r := range s {
		if unicode.IsSpace(r) || !unicode.IsPrint(r) {
			return false
		}
	}

	return s != ""
}

// Paths decorates next with dot-path interpretation. Each segment is handed
// to next separately; a nil value met on the way reads as nil.
func Paths(next Accessor) Accessor {
	return &pathAccessor{next: next}
}

type pathAccessor struct {
	next   Accessor
	parsed sync.Map // string -> FieldPath
}

func (p *pathAccessor) parse(path string) (FieldPath, error) {
	if fp, ok := p.parsed.Load(path); ok {
		return fp.(FieldPath), nil
	}

	fp, err := ParsePath(path)
	if err != nil {
		return FieldPath{}, fmt.Errorf("%w: %v", ErrPropertyNotFound, err)
	}

	p.parsed.Store(path, fp)

	return fp, nil
}

func (p *pathAccessor) Read(target any, path string) (any, error) {
	fp, err := p.parse(path)
	if err != nil {
		return nil, err
	}

	cur := target

	for _, seg := range fp.Segments {
		if IsNil(cur) {
			return nil, nil
		}

		cur, err = p.next.Read(cur, seg)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	return cur, nil
}

func (p *pathAccessor) Write(target any, path string, value any) error {
	fp, err := p.parse(path)
	if err != nil {
		return err
	}

	parent := target
	last := len(fp.Segments) - 1

	for _, seg := range fp.Segments[:last] {
		parent, err = p.step(parent, seg)
		if err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}

		if IsNil(parent) {
			return fmt.Errorf("write %s: %w: %s is nil", path, ErrNotWritable, seg)
		}
	}

	if err := p.next.Write(parent, fp.Segments[last], value); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}

func (p *pathAccessor) step(target any, seg string) (any, error) {
	if nav, ok := p.next.(Navigator); ok {
		return nav.Navigate(target, seg)
	}

	return p.next.Read(target, seg)
}

// Navigate lets path accessors be decorated again without losing addressability.
func (p *pathAccessor) Navigate(target any, path string) (any, error) {
	fp, err := p.parse(path)
	if err != nil {
		return nil, err
	}

	cur := target
	for _, seg := range fp.Segments {
		if IsNil(cur) {
			return nil, nil
		}

		cur, err = p.step(cur, seg)
		if err != nil {
			return nil, err
		}
	}

	return cur, nil
}
