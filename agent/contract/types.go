package contract

import "encoding/json"

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one turn of conversation context handed to a backend.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall is a backend's request to invoke a named tool.
type ToolCall struct {
	ID   string         `json:"id"`
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

// CompletionRequest carries everything a reasoning backend needs to decide
// the next step of a turn: persona, conversation so far, and the tools it
// may invoke.
type CompletionRequest struct {
	System   string
	Messages []Message
	Tools    []ToolSpec
}

// CompletionResponse is either a set of tool calls (turn continues) or a
// final assistant message (turn ends). ToolCalls takes precedence when both
// are present.
type CompletionResponse struct {
	Content   string
	ToolCalls []ToolCall
}

// DataType mirrors the JSON schema primitive set used in tool parameter
// declarations.
type DataType string

const (
	String  DataType = "string"
	Number  DataType = "number"
	Integer DataType = "integer"
	Boolean DataType = "boolean"
	Array   DataType = "array"
	Object  DataType = "object"
)

// ParameterInfo declares one tool parameter.
type ParameterInfo struct {
	Type      DataType
	Desc      string
	Required  bool
	Enum      []string
	ElemType  DataType                  // for Array
	SubParams map[string]*ParameterInfo // for Object
}

// ToolSpec declares a named tool and its parameter schema.
type ToolSpec struct {
	Name   string
	Desc   string
	Params map[string]*ParameterInfo
}

// JSONSchema renders the parameter declaration as a JSON-schema object
// suitable for function-calling APIs.
func (s ToolSpec) JSONSchema() map[string]any {
	return schemaForObject(s.Params)
}

func schemaForObject(params map[string]*ParameterInfo) map[string]any {
	properties := make(map[string]any, len(params))
	required := make([]string, 0, len(params))
	for name, p := range params {
		if p == nil {
			continue
		}
		properties[name] = schemaForParam(p)
		if p.Required {
			required = append(required, name)
		}
	}
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func schemaForParam(p *ParameterInfo) map[string]any {
	out := map[string]any{"type": string(p.Type)}
	if p.Desc != "" {
		out["description"] = p.Desc
	}
	if len(p.Enum) > 0 {
		out["enum"] = p.Enum
	}
	switch p.Type {
	case Array:
		if len(p.SubParams) > 0 {
			out["items"] = schemaForObject(p.SubParams)
		} else {
			elem := p.ElemType
			if elem == "" {
				elem = String
			}
			out["items"] = map[string]any{"type": string(elem)}
		}
	case Object:
		if len(p.SubParams) > 0 {
			for k, v := range schemaForObject(p.SubParams) {
				out[k] = v
			}
		}
	}
	return out
}

// Ack is the uniform result of every tool execution. Success reflects the
// tool's own logic; a failed external read still acknowledges with a
// user-facing message instead of aborting the turn.
type Ack struct {
	Success bool
	Message string
	Payload map[string]any
}

// MarshalJSON flattens Payload into the top-level object so the wire shape
// is {"success":..., "message":..., <payload fields>}.
func (a Ack) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(a.Payload)+2)
	for k, v := range a.Payload {
		out[k] = v
	}
	out["success"] = a.Success
	out["message"] = a.Message
	return json.Marshal(out)
}

func OK(message string) Ack {
	return Ack{Success: true, Message: message}
}

func Fail(message string) Ack {
	return Ack{Success: false, Message: message}
}
