// Package catalogfile - Catalog file adapter
// Reads component catalogs from YAML, JSON, HCL or the legacy block text
// format and writes them back as YAML or JSON.
package catalogfile

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"memarea/core/catalog"
	"memarea/internal/errors"
)

// Format is a catalog file encoding
type Format string

const (
	FormatYAML   Format = "yaml"
	FormatJSON   Format = "json"
	FormatHCL    Format = "hcl"
	FormatLegacy Format = "text"
)

// ParseFormat parses a format name
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	case "hcl":
		return FormatHCL, nil
	case "text", "txt", "db", "legacy":
		return FormatLegacy, nil
	}
	return "", errors.Newf(errors.TypeNotSupported, "unknown catalog format: %s", s)
}

// FormatFromPath infers the format from a file extension
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", errors.Newf(errors.TypeNotSupported, "cannot infer catalog format of %s", path)
	}
	return ParseFormat(ext)
}

// Loader reads and writes catalog files
type Loader struct {
	log *zap.Logger
}

// NewLoader creates a loader
func NewLoader(log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{log: log}
}

// Load reads the catalog at path, choosing the decoder by extension
func (l *Loader) Load(path string) (*catalog.Catalog, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(errors.TypeInput, err, "failed to open catalog %s", path)
	}
	defer f.Close()

	cat, err := l.Decode(f, format, path)
	if err != nil {
		return nil, err
	}
	stats := cat.Stats()
	l.log.Debug("loaded catalog",
		zap.String("path", path),
		zap.String("format", string(format)),
		zap.Int("components", stats.Total),
	)
	return cat, nil
}

// Decode reads a catalog in the given format; name is used in messages
func (l *Loader) Decode(r io.Reader, format Format, name string) (*catalog.Catalog, error) {
	var (
		cat *catalog.Catalog
		err error
	)

	switch format {
	case FormatYAML:
		var doc document
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil && err != io.EOF {
			return nil, errors.Parsing("invalid YAML catalog "+name, err)
		}
		cat, err = doc.build()
	case FormatJSON:
		var doc document
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, errors.Parsing("invalid JSON catalog "+name, err)
		}
		cat, err = doc.build()
	case FormatHCL:
		src, rerr := io.ReadAll(r)
		if rerr != nil {
			return nil, errors.Parsing("failed to read catalog "+name, rerr)
		}
		cat, err = decodeHCL(src, name)
	case FormatLegacy:
		cat, err = decodeLegacy(r, l.log.With(zap.String("catalog", name)))
	default:
		return nil, errors.NotSupported("decode catalog format " + string(format))
	}

	if err != nil {
		if _, typed := errors.As(err); typed {
			return nil, err
		}
		return nil, errors.Parsing("invalid catalog "+name, err)
	}
	return cat, nil
}

// Encode writes cat in format. Only YAML and JSON are writable.
func (l *Loader) Encode(w io.Writer, cat *catalog.Catalog, format Format) error {
	doc, err := toDocument(cat)
	if err != nil {
		return errors.Internal("failed to convert catalog", err)
	}

	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return errors.Internal("failed to encode YAML catalog", err)
		}
		return enc.Close()
	case FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return errors.Internal("failed to encode JSON catalog", err)
		}
		_, err = w.Write(append(data, '\n'))
		return err
	}
	return errors.NotSupported("encode catalog format " + string(format))
}

// Save writes cat to path, choosing the encoder by extension
func (l *Loader) Save(cat *catalog.Catalog, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := l.Encode(&buf, cat, format); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrapf(errors.TypeInternal, err, "failed to write catalog %s", path)
	}
	l.log.Debug("saved catalog", zap.String("path", path), zap.String("format", string(format)))
	return nil
}
