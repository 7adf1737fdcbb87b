package diagnostic

import (
	"errors"
	"strings"

	"field-assembler/internal/common"
)

// Severity ranks a finding.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return common.UnknownStr
	}
}

// Diagnostic is one finding about a descriptor file.
type Diagnostic struct {
	Severity Severity
	// Code identifies the kind of finding, e.g. "unknown_handler".
	Code    string
	Message string
	// Type is the descriptor type name the finding belongs to, if any.
	Type string
	// Path is the property path or namespace the finding belongs to, if any.
	Path string
	// Suggestions are close known names for an unknown one.
	Suggestions []string
}

// String renders "[type] path: [code] message (did you mean ...?)".
func (d Diagnostic) String() string {
	var b strings.Builder

	if d.Type != "" {
		b.WriteString("[" + d.Type + "]")
	}

	if d.Path != "" {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}

		b.WriteString(d.Path)
	}

	if b.Len() > 0 {
		b.WriteString(": ")
	}

	if d.Code != "" {
		b.WriteString("[" + d.Code + "] ")
	}

	b.WriteString(d.Message)

	if len(d.Suggestions) > 0 {
		b.WriteString(" (did you mean " + strings.Join(d.Suggestions, ", ") + "?)")
	}

	return b.String()
}

// Diagnostics collects the findings of one validation, split by severity.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

func (d *Diagnostics) add(s Severity, code, message, typeName, path string, suggestions []string) {
	diag := Diagnostic{
		Severity:    s,
		Code:        code,
		Message:     message,
		Type:        typeName,
		Path:        path,
		Suggestions: suggestions,
	}

	switch s {
	case SeverityError:
		d.Errors = append(d.Errors, diag)
	case SeverityWarning:
		d.Warnings = append(d.Warnings, diag)
	default:
		d.Infos = append(d.Infos, diag)
	}
}

func (d *Diagnostics) AddError(code, message, typeName, path string) {
	d.add(SeverityError, code, message, typeName, path, nil)
}

// AddErrorWithSuggestions adds an error listing close known names.
func (d *Diagnostics) AddErrorWithSuggestions(code, message, typeName, path string, suggestions []string) {
	d.add(SeverityError, code, message, typeName, path, suggestions)
}

func (d *Diagnostics) AddWarning(code, message, typeName, path string) {
	d.add(SeverityWarning, code, message, typeName, path, nil)
}

func (d *Diagnostics) AddInfo(code, message, typeName, path string) {
	d.add(SeverityInfo, code, message, typeName, path, nil)
}

// HasErrors reports whether any error was found.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// IsValid is the negation of HasErrors.
func (d *Diagnostics) IsValid() bool {
	return !d.HasErrors()
}

// Merge appends the findings of other.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Infos = append(d.Infos, other.Infos...)
}

// All returns errors, then warnings, then infos.
func (d *Diagnostics) All() []Diagnostic {
	out := make([]Diagnostic, 0, len(d.Errors)+len(d.Warnings)+len(d.Infos))
	out = append(out, d.Errors...)
	out = append(out, d.Warnings...)

	return append(out, d.Infos...)
}

// Error joins the errors into one, or returns nil when valid.
func (d *Diagnostics) Error() error {
	if d.IsValid() {
		return nil
	}

	parts := make([]string, 0, len(d.Errors))
	for _, e := range d.Errors {
		parts = append(parts, e.String())
	}

	return errors.New(strings.Join(parts, "; "))
}
