// Package schemas compiles and caches the JSON Schemas used to check
// persisted snapshots and to classify word store payloads.
package schemas

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Definition is a named JSON Schema document.
type Definition struct {
	Name   string
	Schema map[string]any
}

var cache sync.Map // map[string]*jsonschema.Schema

// Compile returns the compiled schema for def, compiling it on first use.
func Compile(def Definition) (*jsonschema.Schema, error) {
	if cached, ok := cache.Load(def.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The compiler wants a plain decoded value, not Go map literals with
	// typed slices inside.
	raw, err := json.Marshal(def.Schema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema %q: %w", def.Name, err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse schema %q: %w", def.Name, err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", def.Name)
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add schema %q: %w", def.Name, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %q: %w", def.Name, err)
	}

	actual, _ := cache.LoadOrStore(def.Name, compiled)
	return actual.(*jsonschema.Schema), nil
}

// Validate checks an already decoded JSON value against def.
func Validate(def Definition, v any) error {
	compiled, err := Compile(def)
	if err != nil {
		return err
	}
	if err := compiled.Validate(v); err != nil {
		return fmt.Errorf("%s: %w", def.Name, err)
	}
	return nil
}

// ValidateBytes decodes raw and validates it against def.
func ValidateBytes(def Definition, raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("%s: invalid JSON: %w", def.Name, err)
	}
	return Validate(def, v)
}

// Matches reports whether v satisfies def. A schema that fails to compile
// never matches.
func Matches(def Definition, v any) bool {
	return Validate(def, v) == nil
}
