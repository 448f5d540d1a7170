package tutorkit

import (
	"errors"
	"fmt"
	"sort"
)

// ParamType is the JSON Schema type of a tool parameter.
type ParamType string

const (
	ParamString  ParamType = "string"
	ParamNumber  ParamType = "number"
	ParamInteger ParamType = "integer"
	ParamBoolean ParamType = "boolean"
	ParamArray   ParamType = "array"
	ParamObject  ParamType = "object"
)

func (t ParamType) valid() bool {
	switch t {
	case ParamString, ParamNumber, ParamInteger, ParamBoolean, ParamArray, ParamObject:
		return true
	}
	return false
}

// Param describes one named tool parameter.
type Param struct {
	Type        ParamType
	Description string
	Required    bool
	// Enum restricts a string parameter to a fixed set of values.
	Enum []string
	// Items describes array elements. Only used when Type is ParamArray.
	Items *Param
}

// ToolSpec is the declaration of a tool the reasoning backend may call.
// Specs are immutable once a resolution starts.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]Param
}

// Schema renders the parameters as a closed JSON Schema object:
// additionalProperties is false and required names are sorted.
func (t ToolSpec) Schema() map[string]any {
	props := make(map[string]any, len(t.Parameters))
	required := []string{}
	for name, p := range t.Parameters {
		props[name] = p.schema()
		if p.Required {
			required = append(required, name)
		}
	}
	sort.Strings(required)

	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

func (p Param) schema() map[string]any {
	s := map[string]any{"type": string(p.Type)}
	if p.Description != "" {
		s["description"] = p.Description
	}
	if len(p.Enum) > 0 {
		enum := make([]any, len(p.Enum))
		for i, v := range p.Enum {
			enum[i] = v
		}
		s["enum"] = enum
	}
	if p.Type == ParamArray {
		items := Param{Type: ParamString}
		if p.Items != nil {
			items = *p.Items
		}
		s["items"] = items.schema()
	}
	if p.Type == ParamObject {
		s["properties"] = map[string]any{}
		s["additionalProperties"] = true
	}
	return s
}

// RequiredParams returns the sorted names of the required parameters.
func (t ToolSpec) RequiredParams() []string {
	var names []string
	for name, p := range t.Parameters {
		if p.Required {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Validate reports malformed specs: an empty name, an empty parameter name,
// or an unknown parameter type.
func (t ToolSpec) Validate() error {
	if t.Name == "" {
		return errors.New("tool spec: empty name")
	}
	for name, p := range t.Parameters {
		if name == "" {
			return fmt.Errorf("tool spec %s: empty parameter name", t.Name)
		}
		if !p.Type.valid() {
			return fmt.Errorf("tool spec %s: parameter %s has unknown type %q", t.Name, name, p.Type)
		}
		if p.Items != nil && !p.Items.Type.valid() {
			return fmt.Errorf("tool spec %s: parameter %s has unknown item type %q", t.Name, name, p.Items.Type)
		}
	}
	return nil
}

// ResponseSchema asks the backend for structured output matching Schema.
type ResponseSchema struct {
	Name        string
	Description string
	Schema      map[string]any
}
