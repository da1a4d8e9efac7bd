// Package schemas validates step scripts and CV documents against embedded JSON Schemas.
package schemas

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed *.schema.json
var schemaFiles embed.FS

// Embedded schema names
const (
	StepScript = "step_script.schema.json"
	Document   = "cv_document.schema.json"
)

// Schema is a compiled embedded schema
type Schema struct {
	Name   string
	schema *gojsonschema.Schema
}

// FieldError is one violation, located by its JSON path
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every violation found in a document
type ValidationError struct {
	Schema string
	Errors []FieldError
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s validation failed:", ve.Schema)
	for i, err := range ve.Errors {
		fmt.Fprintf(&sb, "\n  %d. %s: %s", i+1, err.Field, err.Message)
	}
	return sb.String()
}

// SchemaLoadError means an embedded schema is missing or does not compile
type SchemaLoadError struct {
	Name  string
	Cause error
}

func (e *SchemaLoadError) Error() string {
	return fmt.Sprintf("failed to load schema %s: %v", e.Name, e.Cause)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

var (
	compiled   = make(map[string]*Schema)
	compiledMu sync.Mutex
)

// Get returns the raw content of an embedded schema
func Get(name string) (string, error) {
	data, err := schemaFiles.ReadFile(name)
	if err != nil {
		return "", &SchemaLoadError{Name: name, Cause: err}
	}
	return string(data), nil
}

// Lookup compiles the named schema on first use and caches it
func Lookup(name string) (*Schema, error) {
	compiledMu.Lock()
	defer compiledMu.Unlock()

	if s, ok := compiled[name]; ok {
		return s, nil
	}

	content, err := Get(name)
	if err != nil {
		return nil, err
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(content))
	if err != nil {
		return nil, &SchemaLoadError{Name: name, Cause: err}
	}

	s := &Schema{Name: name, schema: schema}
	compiled[name] = s
	return s, nil
}

// Validate checks data against the named embedded schema
func Validate(name string, data []byte) error {
	s, err := Lookup(name)
	if err != nil {
		return err
	}
	return s.Validate(data)
}

// Validate checks data against s. Malformed JSON is reported as an error, not as
// a ValidationError.
func (s *Schema) Validate(data []byte) error {
	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("failed to read JSON document: %w", err)
	}
	if result.Valid() {
		return nil
	}

	ve := &ValidationError{Schema: s.Name, Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		ve.Errors = append(ve.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return ve
}
