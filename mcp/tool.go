// Package mcp connects tool registries to the Model Context Protocol.
//
// [NewServer] exposes a [tool.Registry] to MCP clients, so a realtime
// front-line agent can call the tutor and catalog tools directly.
// [RemoteTools] goes the other way and imports the tools of an MCP server
// into a registry the supervisor resolves against.
//
//	reg := tutor.Registry()
//	if err := mcp.ServeStdio(reg, mcp.WithName("tutorkit")); err != nil {
//		log.Fatal(err)
//	}
package mcp

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	ai "github.com/englify/tutorkit"
	"github.com/englify/tutorkit/tool"
)

// ToMCPTool converts a tool spec to an MCP tool carrying its JSON schema.
func ToMCPTool(spec ai.ToolSpec) mcp.Tool {
	schema, err := json.Marshal(spec.Schema())
	if err != nil {
		schema = json.RawMessage(`{"type":"object","properties":{}}`)
	}
	return mcp.NewToolWithRawSchema(spec.Name, spec.Description, schema)
}

type schemaDoc struct {
	Type        string               `json:"type"`
	Description string               `json:"description"`
	Enum        []any                `json:"enum"`
	Items       *schemaDoc           `json:"items"`
	Properties  map[string]schemaDoc `json:"properties"`
	Required    []string             `json:"required"`
}

// FromMCPTool converts an MCP tool to a tool spec. Parameters without a
// supported type are treated as strings.
func FromMCPTool(t mcp.Tool) (ai.ToolSpec, error) {
	raw := t.RawInputSchema
	if len(raw) == 0 {
		data, err := json.Marshal(t.InputSchema)
		if err != nil {
			return ai.ToolSpec{}, fmt.Errorf("tool %s: %w", t.Name, err)
		}
		raw = data
	}

	var doc schemaDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return ai.ToolSpec{}, fmt.Errorf("tool %s: invalid input schema: %w", t.Name, err)
	}

	spec := ai.ToolSpec{Name: t.Name, Description: t.Description}
	if len(doc.Properties) > 0 {
		required := make(map[string]bool, len(doc.Required))
		for _, name := range doc.Required {
			required[name] = true
		}
		spec.Parameters = make(map[string]ai.Param, len(doc.Properties))
		for name, prop := range doc.Properties {
			p := paramOf(prop)
			p.Required = required[name]
			spec.Parameters[name] = p
		}
	}
	return spec, spec.Validate()
}

func paramOf(d schemaDoc) ai.Param {
	p := ai.Param{Type: ai.ParamType(d.Type), Description: d.Description}
	switch p.Type {
	case ai.ParamString, ai.ParamNumber, ai.ParamInteger, ai.ParamBoolean, ai.ParamArray, ai.ParamObject:
	default:
		p.Type = ai.ParamString
	}
	for _, e := range d.Enum {
		p.Enum = append(p.Enum, fmt.Sprint(e))
	}
	if p.Type == ai.ParamArray && d.Items != nil {
		items := paramOf(*d.Items)
		p.Items = &items
	}
	return p
}

// ToMCPCallToolResult converts a registry result. String values are sent
// as is; anything else is sent as JSON. Handler failures are flagged as
// tool errors.
func ToMCPCallToolResult(res tool.Result) *mcp.CallToolResult {
	text, ok := res.Value.(string)
	if !ok {
		data, err := json.Marshal(res.Value)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("result not serializable: %v", err))
		}
		text = string(data)
	}
	if res.Err != nil {
		return mcp.NewToolResultError(text)
	}
	return mcp.NewToolResultText(text)
}

// ResultText joins the text content of an MCP result. Non-text content
// and structured content are included as JSON.
func ResultText(result *mcp.CallToolResult) string {
	if result == nil {
		return ""
	}
	var parts []string
	for _, c := range result.Content {
		switch content := c.(type) {
		case mcp.TextContent:
			parts = append(parts, content.Text)
		case *mcp.TextContent:
			parts = append(parts, content.Text)
		default:
			if data, err := json.Marshal(content); err == nil {
				parts = append(parts, string(data))
			}
		}
	}
	if result.StructuredContent != nil {
		if data, err := json.Marshal(result.StructuredContent); err == nil {
			parts = append(parts, string(data))
		}
	}
	return strings.Join(parts, "\n")
}

func sortedNames(specs map[string]ai.ToolSpec) []string {
	names := make([]string, 0, len(specs))
	for name := range specs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
