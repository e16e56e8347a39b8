package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	contractx "github.com/gtmquest/gtm-advisor/agent/contract"
	reportx "github.com/gtmquest/gtm-advisor/agent/report"
)

type fakeCatalog struct {
	records    []contractx.CatalogRecord
	searchErr  error
	lookupErr  error
	contactErr error

	savedContacts []contractx.ContactRequest
	lastQuery     contractx.CatalogQuery
}

func (f *fakeCatalog) Search(_ context.Context, q contractx.CatalogQuery) ([]contractx.CatalogRecord, error) {
	f.lastQuery = q
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if q.Limit > 0 && len(f.records) > q.Limit {
		return f.records[:q.Limit], nil
	}
	return f.records, nil
}

func (f *fakeCatalog) BySlug(_ context.Context, slug string) (*contractx.CatalogRecord, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	for i := range f.records {
		if f.records[i].Slug == slug {
			return &f.records[i], nil
		}
	}
	return nil, contractx.ErrNotFound
}

func (f *fakeCatalog) TopRanked(_ context.Context, limit int) ([]contractx.CatalogRecord, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if limit > 0 && len(f.records) > limit {
		return f.records[:limit], nil
	}
	return f.records, nil
}

func (f *fakeCatalog) SaveContact(_ context.Context, req contractx.ContactRequest) (string, error) {
	if f.contactErr != nil {
		return "", f.contactErr
	}
	f.savedContacts = append(f.savedContacts, req)
	return fmt.Sprintf("req-%d", len(f.savedContacts)), nil
}

func budget(v float64) *float64 { return &v }

func TestSearchProvidersMapsAndDedups(t *testing.T) {
	t.Parallel()

	cat := &fakeCatalog{records: []contractx.CatalogRecord{
		{Slug: "growth-partners", Name: "Growth Partners", MinBudget: budget(3000), Specializations: []string{"SaaS"}},
		{Slug: "premium-gtm", Name: "Premium GTM", MinBudget: budget(20000)},
	}}
	r := NewRegistry(cat)
	st := reportx.New()

	ack := r.Execute(context.Background(), st, contractx.ToolCall{Tool: ToolSearchProviders, Args: map[string]any{
		"location": "London",
	}})
	if !ack.Success {
		t.Fatalf("unexpected failure: %s", ack.Message)
	}
	if cat.lastQuery.Location != "London" || cat.lastQuery.Limit != 5 {
		t.Fatalf("unexpected query: %+v", cat.lastQuery)
	}
	if !strings.Contains(ack.Message, "2") || !strings.Contains(ack.Message, "London") {
		t.Fatalf("ack must echo count and filters: %s", ack.Message)
	}
	if len(st.RecommendedProviders) != 2 {
		t.Fatalf("expected 2 providers, got %d", len(st.RecommendedProviders))
	}
	if st.RecommendedProviders[0].PricingTier != reportx.TierBudget {
		t.Fatalf("tier derivation wrong: %+v", st.RecommendedProviders[0])
	}
	if st.RecommendedProviders[1].PricingTier != reportx.TierPremium {
		t.Fatalf("tier derivation wrong: %+v", st.RecommendedProviders[1])
	}

	// Second identical search adds nothing.
	r.Execute(context.Background(), st, contractx.ToolCall{Tool: ToolSearchProviders, Args: map[string]any{
		"location": "London",
	}})
	if len(st.RecommendedProviders) != 2 {
		t.Fatalf("catalog path must dedup: got %d", len(st.RecommendedProviders))
	}
}

func TestSearchProvidersCatalogFailureLeavesStateUntouched(t *testing.T) {
	t.Parallel()

	cat := &fakeCatalog{searchErr: errors.New("connection refused")}
	r := NewRegistry(cat)
	st := reportx.New()

	ack := r.Execute(context.Background(), st, contractx.ToolCall{Tool: ToolSearchProviders, Args: map[string]any{}})
	if ack.Success {
		t.Fatal("catalog failure must yield success=false")
	}
	if ack.Message == "" {
		t.Fatal("failure ack needs a user-facing message")
	}
	if len(st.RecommendedProviders) != 0 {
		t.Fatalf("no partial writes allowed: %+v", st.RecommendedProviders)
	}
}

func TestSearchProvidersWithoutCatalog(t *testing.T) {
	t.Parallel()

	r := NewRegistry(nil)
	ack := r.Execute(context.Background(), reportx.New(), contractx.ToolCall{Tool: ToolSearchProviders, Args: map[string]any{}})
	if ack.Success || ack.Message == "" {
		t.Fatalf("missing catalog must degrade to failure ack: %+v", ack)
	}
}

func TestProviderDetailsFound(t *testing.T) {
	t.Parallel()

	cat := &fakeCatalog{records: []contractx.CatalogRecord{
		{Slug: "growth-partners", Name: "Growth Partners", MinBudget: budget(9000)},
	}}
	r := NewRegistry(cat)

	ack := r.Execute(context.Background(), reportx.New(), contractx.ToolCall{Tool: ToolProviderDetails, Args: map[string]any{
		"identifier": "Growth Partners",
	}})
	if !ack.Success {
		t.Fatalf("unexpected failure: %s", ack.Message)
	}
	provider, ok := ack.Payload["provider"].(reportx.Provider)
	if !ok {
		t.Fatalf("payload missing provider: %+v", ack.Payload)
	}
	if provider.PricingTier != reportx.TierMid {
		t.Fatalf("unexpected tier: %s", provider.PricingTier)
	}
}

func TestProviderDetailsNotFound(t *testing.T) {
	t.Parallel()

	r := NewRegistry(&fakeCatalog{})
	ack := r.Execute(context.Background(), reportx.New(), contractx.ToolCall{Tool: ToolProviderDetails, Args: map[string]any{
		"identifier": "nobody",
	}})
	if ack.Success {
		t.Fatal("missing provider must fail")
	}
	if !strings.Contains(ack.Message, "nobody") {
		t.Fatalf("ack should echo the identifier: %s", ack.Message)
	}
}

func TestTopProvidersDefaultLimit(t *testing.T) {
	t.Parallel()

	var records []contractx.CatalogRecord
	for i := 0; i < 15; i++ {
		records = append(records, contractx.CatalogRecord{
			Slug: fmt.Sprintf("agency-%d", i),
			Name: fmt.Sprintf("Agency %d", i),
		})
	}
	r := NewRegistry(&fakeCatalog{records: records})

	ack := r.Execute(context.Background(), reportx.New(), contractx.ToolCall{Tool: ToolTopProviders, Args: map[string]any{}})
	if !ack.Success {
		t.Fatalf("unexpected failure: %s", ack.Message)
	}
	if ack.Payload["count"] != 10 {
		t.Fatalf("default limit must be 10: %+v", ack.Payload["count"])
	}
}

func TestSaveContactRequest(t *testing.T) {
	t.Parallel()

	cat := &fakeCatalog{}
	r := NewRegistry(cat)

	ack := r.Execute(context.Background(), reportx.New(), contractx.ToolCall{Tool: ToolSaveContactRequest, Args: map[string]any{
		"full_name": "Jordan Smith", "email": "jordan@example.com", "company_name": "Acme",
	}})
	if !ack.Success {
		t.Fatalf("unexpected failure: %s", ack.Message)
	}
	if ack.Payload["request_id"] == "" {
		t.Fatal("ack must carry the opaque request id")
	}
	if len(cat.savedContacts) != 1 || cat.savedContacts[0].Email != "jordan@example.com" {
		t.Fatalf("contact not persisted: %+v", cat.savedContacts)
	}
}

func TestSaveContactRequestFailureIsGeneric(t *testing.T) {
	t.Parallel()

	r := NewRegistry(&fakeCatalog{contactErr: errors.New("duplicate key value violates unique constraint")})
	ack := r.Execute(context.Background(), reportx.New(), contractx.ToolCall{Tool: ToolSaveContactRequest, Args: map[string]any{
		"full_name": "Jordan Smith", "email": "jordan@example.com",
	}})
	if ack.Success {
		t.Fatal("persistence failure must yield success=false")
	}
	if strings.Contains(ack.Message, "duplicate key") {
		t.Fatalf("underlying fault must not leak: %s", ack.Message)
	}
	if !strings.Contains(strings.ToLower(ack.Message), "try again") {
		t.Fatalf("expected retry suggestion: %s", ack.Message)
	}
}

func TestSaveContactRequestRejectsBadEmail(t *testing.T) {
	t.Parallel()

	r := NewRegistry(&fakeCatalog{})
	ack := r.Execute(context.Background(), reportx.New(), contractx.ToolCall{Tool: ToolSaveContactRequest, Args: map[string]any{
		"full_name": "Jordan Smith", "email": "not-an-email",
	}})
	if ack.Success {
		t.Fatal("invalid email must fail")
	}
}
