package tool

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	contractx "github.com/gtmquest/gtm-advisor/agent/contract"
	reportx "github.com/gtmquest/gtm-advisor/agent/report"
)

// Registry executes tool calls against a session's report state. Every call
// is a single atomic mutation: argument validation happens before any field
// is written, so a failed call leaves the state untouched.
type Registry struct {
	catalog contractx.Catalog
	newID   func() string
}

type Option func(*Registry)

// WithIDGenerator overrides provider/contact id generation. Used in tests.
func WithIDGenerator(gen func() string) Option {
	return func(r *Registry) {
		if gen != nil {
			r.newID = gen
		}
	}
}

// NewRegistry builds a registry. catalog may be nil; catalog-backed tools
// then answer with a structured failure ack instead of crashing the turn.
func NewRegistry(catalog contractx.Catalog, opts ...Option) *Registry {
	r := &Registry{
		catalog: catalog,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Specs lists the tool descriptors handed to the reasoning backend.
func (r *Registry) Specs() []contractx.ToolSpec {
	return Specs()
}

// Execute runs one tool call and returns its acknowledgment. Failures are
// always expressed in the ack, never as a Go error: the conversation turn
// continues regardless of what a single tool did.
func (r *Registry) Execute(ctx context.Context, st *reportx.State, call contractx.ToolCall) contractx.Ack {
	if st == nil {
		return contractx.Fail("no report state for this session")
	}

	var ack contractx.Ack
	switch call.Tool {
	case ToolSetStrategy:
		ack = r.setStrategy(st, call.Args)
	case ToolAddProvider:
		ack = r.addProvider(st, call.Args)
	case ToolSetROI:
		ack = r.setROI(st, call.Args)
	case ToolAddUseCase:
		ack = r.addUseCase(st, call.Args)
	case ToolUpdateCompanyInfo:
		ack = r.updateCompanyInfo(st, call.Args)
	case ToolSetBudgetBreakdown:
		ack = r.setBudgetBreakdown(st, call.Args)
	case ToolSetTimeline:
		ack = r.setTimeline(st, call.Args)
	case ToolSearchProviders:
		ack = r.searchProviders(ctx, st, call.Args)
	case ToolProviderDetails:
		ack = r.providerDetails(ctx, call.Args)
	case ToolTopProviders:
		ack = r.topProviders(ctx, call.Args)
	case ToolSaveContactRequest:
		ack = r.saveContactRequest(ctx, call.Args)
	default:
		ack = contractx.Fail("unknown tool: " + call.Tool)
	}

	log.Debug().
		Str("tool", call.Tool).
		Bool("success", ack.Success).
		Msg("tool executed")
	return ack
}
