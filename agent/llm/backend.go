package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go/v2"

	contractx "github.com/gtmquest/gtm-advisor/agent/contract"
	openrouterx "github.com/gtmquest/gtm-advisor/pkg/openrouter"
)

// Backend adapts the OpenAI-compatible chat completions API to the
// contract's ReasoningBackend and TextBackend interfaces.
type Backend struct {
	client      *openaisdk.Client
	model       string
	maxTokens   int
	temperature float64
}

var (
	_ contractx.ReasoningBackend = (*Backend)(nil)
	_ contractx.TextBackend      = (*Backend)(nil)
)

// NewBackend builds a backend for one path's resolved config. Returns nil
// when no client is available so callers can degrade.
func NewBackend(cfg openrouterx.Config) *Backend {
	client := openrouterx.NewClient(cfg)
	if client == nil {
		return nil
	}
	return &Backend{
		client:      client,
		model:       cfg.Model,
		maxTokens:   cfg.MaxCompletionToken,
		temperature: cfg.Temperature,
	}
}

// Complete runs one reasoning step: the backend either asks for tool calls
// or produces the turn's final message.
func (b *Backend) Complete(ctx context.Context, req contractx.CompletionRequest) (contractx.CompletionResponse, error) {
	params := b.baseParams()
	if strings.TrimSpace(req.System) != "" {
		params.Messages = append(params.Messages, openaisdk.SystemMessage(req.System))
	}
	for _, m := range req.Messages {
		converted, err := toParamMessage(m)
		if err != nil {
			return contractx.CompletionResponse{}, err
		}
		params.Messages = append(params.Messages, converted)
	}
	for _, spec := range req.Tools {
		params.Tools = append(params.Tools, openaisdk.ChatCompletionFunctionTool(openaisdk.FunctionDefinitionParam{
			Name:        spec.Name,
			Description: openaisdk.String(spec.Desc),
			Parameters:  openaisdk.FunctionParameters(spec.JSONSchema()),
		}))
	}

	resp, err := b.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return contractx.CompletionResponse{}, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}
	if len(resp.Choices) == 0 {
		return contractx.CompletionResponse{}, fmt.Errorf("%w: completion has no choices", contractx.ErrSchemaViolation)
	}

	msg := resp.Choices[0].Message
	out := contractx.CompletionResponse{Content: strings.TrimSpace(msg.Content)}
	for _, tc := range msg.ToolCalls {
		name := strings.TrimSpace(tc.Function.Name)
		if name == "" {
			continue
		}
		args := map[string]any{}
		if raw := strings.TrimSpace(tc.Function.Arguments); raw != "" {
			if err := json.Unmarshal([]byte(raw), &args); err != nil {
				return contractx.CompletionResponse{}, fmt.Errorf("%w: invalid tool args for tool=%s: %v", contractx.ErrSchemaViolation, name, err)
			}
		}
		out.ToolCalls = append(out.ToolCalls, contractx.ToolCall{
			ID:   tc.ID,
			Tool: name,
			Args: args,
		})
	}
	if len(out.ToolCalls) == 0 && out.Content == "" {
		return contractx.CompletionResponse{}, fmt.Errorf("%w: completion is empty", contractx.ErrSchemaViolation)
	}
	return out, nil
}

// Generate produces one plain reply from replayed context. No tools.
func (b *Backend) Generate(ctx context.Context, system string, history []contractx.Message, userMessage string) (string, error) {
	params := b.baseParams()
	if strings.TrimSpace(system) != "" {
		params.Messages = append(params.Messages, openaisdk.SystemMessage(system))
	}
	for _, m := range history {
		switch m.Role {
		case contractx.RoleUser:
			params.Messages = append(params.Messages, openaisdk.UserMessage(m.Content))
		case contractx.RoleAssistant:
			params.Messages = append(params.Messages, openaisdk.AssistantMessage(m.Content))
		}
	}
	params.Messages = append(params.Messages, openaisdk.UserMessage(userMessage))

	resp, err := b.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: completion has no choices", contractx.ErrSchemaViolation)
	}
	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", fmt.Errorf("%w: completion is empty", contractx.ErrSchemaViolation)
	}
	return reply, nil
}

func (b *Backend) baseParams() openaisdk.ChatCompletionNewParams {
	params := openaisdk.ChatCompletionNewParams{
		Model:       openaisdk.ChatModel(b.model),
		Temperature: openaisdk.Float(b.temperature),
	}
	if b.maxTokens > 0 {
		params.MaxTokens = openaisdk.Int(int64(b.maxTokens))
	}
	return params
}

func toParamMessage(m contractx.Message) (openaisdk.ChatCompletionMessageParamUnion, error) {
	switch m.Role {
	case contractx.RoleSystem:
		return openaisdk.SystemMessage(m.Content), nil
	case contractx.RoleUser:
		return openaisdk.UserMessage(m.Content), nil
	case contractx.RoleTool:
		return openaisdk.ToolMessage(m.Content, m.ToolCallID), nil
	case contractx.RoleAssistant:
		if len(m.ToolCalls) == 0 {
			return openaisdk.AssistantMessage(m.Content), nil
		}
		asst := openaisdk.ChatCompletionAssistantMessageParam{}
		if m.Content != "" {
			asst.Content.OfString = openaisdk.String(m.Content)
		}
		for _, tc := range m.ToolCalls {
			rawArgs, err := json.Marshal(tc.Args)
			if err != nil {
				return openaisdk.ChatCompletionMessageParamUnion{}, fmt.Errorf("%w: marshal tool args: %v", contractx.ErrValidation, err)
			}
			asst.ToolCalls = append(asst.ToolCalls, openaisdk.ChatCompletionMessageToolCallUnionParam{
				OfFunction: &openaisdk.ChatCompletionMessageFunctionToolCallParam{
					ID: tc.ID,
					Function: openaisdk.ChatCompletionMessageFunctionToolCallFunctionParam{
						Name:      tc.Tool,
						Arguments: string(rawArgs),
					},
				},
			})
		}
		return openaisdk.ChatCompletionMessageParamUnion{OfAssistant: &asst}, nil
	default:
		return openaisdk.ChatCompletionMessageParamUnion{}, fmt.Errorf("%w: unsupported role %q", contractx.ErrValidation, m.Role)
	}
}
