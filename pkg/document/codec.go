package document

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Format is a serialization syntax for documents.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Extensions lists the file extensions recognised as documents.
var Extensions = []string{".yaml", ".yml", ".json"}

// FormatFor returns the format implied by a file name.
func FormatFor(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	}
	return "", false
}

// Parse decodes a document. Data starting with '{' is read as JSON,
// anything else as YAML. Unknown fields are rejected in both syntaxes.
func Parse(data []byte) (*Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty document")
	}
	if trimmed[0] == '{' {
		return ParseAs(data, FormatJSON)
	}
	return ParseAs(data, FormatYAML)
}

// ParseAs decodes a document in the given format.
func ParseAs(data []byte, format Format) (*Document, error) {
	var doc Document
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode json document: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode yaml document: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
	return &doc, nil
}

// ParseFile reads and decodes a document file. The document name defaults to
// the file name without extension.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc *Document
	if format, ok := FormatFor(path); ok {
		doc, err = ParseAs(data, format)
	} else {
		doc, err = Parse(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if doc.Name == "" {
		doc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return doc, nil
}

// Marshal encodes a document.
func Marshal(doc *Document, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(doc, "", "  ")
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unsupported format: %s", format)
}

// FromMap decodes a loosely typed map (front matter, JSON objects decoded
// into map[string]any) into a Document. Numbers and booleans are accepted
// wherever a textual value is expected.
func FromMap(raw map[string]any) (*Document, error) {
	var doc Document
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(scalarHook, enumValueHook),
		Result:     &doc,
		TagName:    "mapstructure",
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return &doc, nil
}

var (
	scalarType    = reflect.TypeOf(Scalar(""))
	scalarPtrType = reflect.TypeOf((*Scalar)(nil))
	enumValueType = reflect.TypeOf(EnumValue{})
)

func scalarHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != scalarType && to != scalarPtrType {
		return data, nil
	}
	if data == nil {
		return data, nil
	}
	s, ok := scalarString(data)
	if !ok {
		return nil, fmt.Errorf("expected string, number or boolean, got %T", data)
	}
	return s, nil
}

func enumValueHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != enumValueType {
		return data, nil
	}
	if s, ok := scalarString(data); ok {
		return map[string]any{"text": s}, nil
	}
	return data, nil
}
