// Package output provides output formatting interfaces.
// This package produces human and machine-readable area reports.
package output

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"memarea/core/types"
	"memarea/internal/errors"
)

// Format represents output format type
type Format string

const (
	// FormatText is a human-readable breakdown table per configuration
	FormatText Format = "text"

	// FormatCSV is one row per report entry
	FormatCSV Format = "csv"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"

	// FormatYAML is machine-readable YAML
	FormatYAML Format = "yaml"

	// FormatArea prints only the total area of each configuration
	FormatArea Format = "area"
)

// ParseFormat parses a format name
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "text", "direct", "table":
		return FormatText, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "area":
		return FormatArea, nil
	}
	return "", errors.Newf(errors.TypeNotSupported, "unknown output format: %s", s)
}

// FormatFromPath infers the format from an output file extension
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render writes reports in input order
	Render(w io.Writer, result *Result) error
}

// Result is the set of reports rendered together
type Result struct {
	// RunID identifies the batch that produced the reports
	RunID string `json:"run_id,omitempty" yaml:"run_id,omitempty"`

	Reports []*types.Report `json:"reports" yaml:"reports"`
}

// Registry manages formatter registration
type Registry struct {
	mu         sync.RWMutex
	formatters map[Format]Formatter
}

// NewRegistry creates a registry holding the built-in formatters
func NewRegistry() *Registry {
	r := &Registry{formatters: make(map[Format]Formatter)}
	for _, f := range []Formatter{TextFormatter{}, CSVFormatter{}, JSONFormatter{}, YAMLFormatter{}, AreaFormatter{}} {
		_ = r.Register(f)
	}
	return r
}

// Register adds a formatter to the registry
func (r *Registry) Register(f Formatter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.formatters[f.Format()]; exists {
		return fmt.Errorf("formatter already registered: %s", f.Format())
	}
	r.formatters[f.Format()] = f
	return nil
}

// GetFormatter returns a formatter for a format type
func (r *Registry) GetFormatter(format Format) (Formatter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.formatters[format]
	return f, ok
}

// GetAll returns all registered formatters sorted by format
func (r *Registry) GetAll() []Formatter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]Formatter, 0, len(r.formatters))
	for _, f := range r.formatters {
		all = append(all, f)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Format() < all[j].Format() })
	return all
}

// Render writes result using the registered formatter for format
func (r *Registry) Render(w io.Writer, format Format, result *Result) error {
	f, ok := r.GetFormatter(format)
	if !ok {
		return errors.Newf(errors.TypeNotSupported, "no formatter for %s", format)
	}
	return f.Render(w, result)
}
