// Package document loads, normalizes and saves StructuredDocument JSON files.
package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/jonathan/cv-builder/internal/schemas"
	"github.com/jonathan/cv-builder/internal/types"
)

// Load reads a CV document from a JSON file
func Load(path string) (*types.StructuredDocument, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Message: "failed to read file", Cause: err}
	}

	doc, err := Parse(content)
	var loadErr *LoadError
	if errors.As(err, &loadErr) && loadErr.Path == "" {
		loadErr.Path = path
	}
	return doc, err
}

// Parse validates content against the document schema, unmarshals and normalizes it
func Parse(content []byte) (*types.StructuredDocument, error) {
	if err := schemas.Validate(schemas.Document, content); err != nil {
		return nil, &LoadError{
			Message: "document does not match schema",
			Cause:   err,
		}
	}

	doc := types.NewStructuredDocument()
	if err := json.Unmarshal(content, doc); err != nil {
		return nil, &LoadError{
			Message: "failed to unmarshal JSON",
			Cause:   err,
		}
	}

	if err := Normalize(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Marshal encodes doc as indented JSON
func Marshal(doc *types.StructuredDocument) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	return append(data, '\n'), nil
}

// Save writes doc to path as indented JSON
func Save(path string, doc *types.StructuredDocument) error {
	data, err := Marshal(doc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
