// Package schema validates YAML and JSON documents against JSON Schemas
// embedded in the binary. Schemas may be authored in YAML; they are
// converted to JSON before compilation.
package schema

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"sync"

	"github.com/fulmenhq/cratebump/internal/assets"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// Result captures the outcome of a validation run.
type Result struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// ValidationError describes a single schema violation.
type ValidationError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Validator validates documents against a compiled schema.
type Validator struct {
	schema *gojsonschema.Schema
}

var (
	registryOnce sync.Once
	registry     map[string]*Validator
	registryErr  error
)

// compileSchemaBytes parses schema bytes (YAML first, JSON fallback) and
// compiles them into a gojsonschema schema.
func compileSchemaBytes(schemaBytes []byte) (*gojsonschema.Schema, error) {
	var doc interface{}
	if yerr := yaml.Unmarshal(schemaBytes, &doc); yerr != nil {
		if jerr := json.Unmarshal(schemaBytes, &doc); jerr != nil {
			return nil, fmt.Errorf("parse schema: %w", yerr)
		}
	}
	jsonBytes, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("convert schema to JSON: %w", err)
	}
	sch, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(jsonBytes))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return sch, nil
}

// NewValidatorFromBytes builds a validator from raw schema bytes.
func NewValidatorFromBytes(schemaBytes []byte) (*Validator, error) {
	sch, err := compileSchemaBytes(schemaBytes)
	if err != nil {
		return nil, err
	}
	return &Validator{schema: sch}, nil
}

// NewValidatorFromFS builds a validator from a schema file in fsys.
func NewValidatorFromFS(fsys fs.FS, path string) (*Validator, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", path, err)
	}
	return NewValidatorFromBytes(data)
}

// GetEmbeddedValidator returns a cached validator for a named embedded
// schema (e.g., "cratebump-config-v1.0.0").
func GetEmbeddedValidator(name string) (*Validator, error) {
	registryOnce.Do(func() {
		registry = make(map[string]*Validator)
		for _, info := range assets.GetSchemaNames() {
			data, ok := assets.GetSchema(info.Path)
			if !ok {
				continue
			}
			v, err := NewValidatorFromBytes(data)
			if err != nil {
				registryErr = fmt.Errorf("embedded schema %s: %w", info.Name, err)
				return
			}
			registry[info.Name] = v
		}
	})
	if registryErr != nil {
		return nil, registryErr
	}
	v, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown embedded schema: %s", name)
	}
	return v, nil
}

// Validate validates an already-decoded document.
func (v *Validator) Validate(data interface{}) (*Result, error) {
	return v.validateWithCompiled(data)
}

// ValidateBytes validates document bytes, accepting YAML or JSON.
func (v *Validator) ValidateBytes(data []byte) (*Result, error) {
	var doc interface{}
	if yerr := yaml.Unmarshal(data, &doc); yerr != nil {
		if jerr := json.Unmarshal(data, &doc); jerr != nil {
			return nil, fmt.Errorf("parse document: %w", yerr)
		}
	}
	return v.validateWithCompiled(doc)
}

func (v *Validator) validateWithCompiled(data interface{}) (*Result, error) {
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode data to JSON: %w", err)
	}
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(dataJSON))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	res := &Result{Valid: result.Valid()}
	if !result.Valid() {
		for _, verr := range result.Errors() {
			field := verr.Field()
			if field == "" {
				field = "root"
			}
			res.Errors = append(res.Errors, ValidationError{
				Path:    field,
				Message: verr.Description(),
			})
		}
	}
	return res, nil
}
