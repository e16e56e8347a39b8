package contract

import "context"

// ReasoningBackend decides the next step of a conversation turn: either a
// set of tool invocations or a final natural-language message.
type ReasoningBackend interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
}

// TextBackend produces a single short reply from replayed context. Used by
// the voice bridge; no tool awareness.
type TextBackend interface {
	Generate(ctx context.Context, system string, history []Message, userMessage string) (string, error)
}

// CatalogQuery narrows a provider catalog search. Empty fields are ignored.
type CatalogQuery struct {
	Location       string
	Specialization string
	Limit          int
}

// CatalogRecord is one provider/agency row as stored in the external
// catalog.
type CatalogRecord struct {
	Slug            string
	Name            string
	Description     string
	Headquarters    string
	Website         string
	LogoURL         string
	Specializations []string
	ServiceAreas    []string
	MinBudget       *float64
	AvgRating       *float64
	GlobalRank      *int
}

// ContactRequest is a consultation request persisted through the catalog
// collaborator.
type ContactRequest struct {
	FullName    string
	Email       string
	CompanyName string
	Message     string
}

// Catalog is the narrow interface to the external provider catalog and
// contact persistence. All methods may fail with ErrCatalogUnavailable;
// callers convert failures to structured acks, never crash the turn.
type Catalog interface {
	Search(ctx context.Context, q CatalogQuery) ([]CatalogRecord, error)
	BySlug(ctx context.Context, slug string) (*CatalogRecord, error)
	TopRanked(ctx context.Context, limit int) ([]CatalogRecord, error)
	SaveContact(ctx context.Context, req ContactRequest) (string, error)
}
