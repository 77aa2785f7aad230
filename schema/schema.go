// Package schema holds the JSON schema of the fused document, the contract
// downstream training jobs read against.
package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed document.schema.json
var documentSchema []byte

const documentURL = "document.schema.json"

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// Document returns the raw schema.
func Document() []byte {
	out := make([]byte, len(documentSchema))
	copy(out, documentSchema)
	return out
}

func load() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(documentURL, bytes.NewReader(documentSchema)); err != nil {
			compileErr = fmt.Errorf("failed to load document schema: %w", err)
			return
		}
		compiled, compileErr = compiler.Compile(documentURL)
		if compileErr != nil {
			compileErr = fmt.Errorf("failed to compile document schema: %w", compileErr)
		}
	})
	return compiled, compileErr
}

// Validate checks encoded document JSON against the schema.
func Validate(data []byte) error {
	s, err := load()
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to decode document for validation: %w", err)
	}
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("document does not match schema: %w", err)
	}
	return nil
}
