package report

import (
	"strings"
)

type StrategyType string

const (
	StrategyPLG      StrategyType = "plg"
	StrategySalesLed StrategyType = "sales_led"
	StrategyHybrid   StrategyType = "hybrid"
)

type ProviderType string

const (
	ProviderAgency   ProviderType = "agency"
	ProviderTool     ProviderType = "tool"
	ProviderPlatform ProviderType = "platform"
)

type PricingTier string

const (
	TierBudget  PricingTier = "budget"
	TierMid     PricingTier = "mid"
	TierPremium PricingTier = "premium"
)

type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Strategy is the recommended go-to-market approach. At most one per
// session; replace-on-write.
type Strategy struct {
	Name           string       `json:"name"`
	Type           StrategyType `json:"type"`
	Summary        string       `json:"summary"`
	RecommendedFor []string     `json:"recommended_for"`
	ActionItems    []string     `json:"action_items"`
}

// Provider is one recommended agency, tool, or platform.
type Provider struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Slug            string       `json:"slug"`
	Type            ProviderType `json:"type"`
	Specializations []string     `json:"specializations"`
	Industries      []string     `json:"industries"`
	PricingTier     PricingTier  `json:"pricing_tier"`
	LogoURL         string       `json:"logo_url,omitempty"`
	Website         string       `json:"website,omitempty"`
	Description     string       `json:"description"`
	Rating          *float64     `json:"rating,omitempty"`
	MatchScore      *float64     `json:"match_score,omitempty"`
}

type ROIProjection struct {
	EstimatedCAC  float64    `json:"estimated_cac"`
	EstimatedLTV  float64    `json:"estimated_ltv"`
	PaybackMonths int        `json:"payback_months"`
	Confidence    Confidence `json:"confidence"`
	Notes         string     `json:"notes"`
}

type UseCase struct {
	CompanyName  string            `json:"company_name"`
	Industry     string            `json:"industry"`
	CompanyStage string            `json:"company_stage,omitempty"`
	Challenge    string            `json:"challenge"`
	Solution     string            `json:"solution"`
	Results      map[string]string `json:"results"`
	LogoURL      string            `json:"logo_url,omitempty"`
}

type BudgetCategory struct {
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

type BudgetBreakdown struct {
	Total      float64          `json:"total"`
	Categories []BudgetCategory `json:"categories"`
}

type Phase struct {
	Name       string   `json:"name"`
	Duration   string   `json:"duration"`
	Activities []string `json:"activities"`
	Milestones []string `json:"milestones"`
}

// CompanyPatch carries a partial company-profile update. Empty fields are
// ignored on merge; a zero budget is treated as unset.
type CompanyPatch struct {
	CompanyName  string
	Industry     string
	Stage        string
	TargetMarket string
	Budget       float64
}

// State is the full report a session incrementally builds. It is the single
// unit observed by the sync channel; every mutation goes through a method
// here so a snapshot always reflects whole tool calls.
type State struct {
	CompanyName  string  `json:"company_name,omitempty"`
	Industry     string  `json:"industry,omitempty"`
	Stage        string  `json:"stage,omitempty"`
	TargetMarket string  `json:"target_market,omitempty"`
	Budget       float64 `json:"budget,omitempty"`

	Strategy             *Strategy        `json:"strategy,omitempty"`
	RecommendedProviders []Provider       `json:"recommended_providers"`
	ROIProjection        *ROIProjection   `json:"roi_projection,omitempty"`
	UseCases             []UseCase        `json:"use_cases"`
	BudgetBreakdown      *BudgetBreakdown `json:"budget_breakdown,omitempty"`
	TimelinePhases       []Phase          `json:"timeline_phases"`
}

func New() *State {
	return &State{
		RecommendedProviders: []Provider{},
		UseCases:             []UseCase{},
		TimelinePhases:       []Phase{},
	}
}

// SetStrategy replaces the current strategy.
func (s *State) SetStrategy(st Strategy) {
	copied := st
	s.Strategy = &copied
}

// AppendProvider appends unconditionally. Manually specified providers are
// not deduplicated.
func (s *State) AppendProvider(p Provider) {
	s.RecommendedProviders = append(s.RecommendedProviders, p)
}

// AppendProviderIfAbsent appends a catalog-sourced provider unless one with
// the same id is already present. Falls back to full value equality when the
// id is empty.
func (s *State) AppendProviderIfAbsent(p Provider) bool {
	for i := range s.RecommendedProviders {
		existing := &s.RecommendedProviders[i]
		if p.ID != "" && existing.ID == p.ID {
			return false
		}
		if p.ID == "" && providersEqual(*existing, p) {
			return false
		}
	}
	s.RecommendedProviders = append(s.RecommendedProviders, p)
	return true
}

// SetROI replaces the ROI projection.
func (s *State) SetROI(p ROIProjection) {
	copied := p
	s.ROIProjection = &copied
}

// AppendUseCase appends; no dedup guarantee.
func (s *State) AppendUseCase(u UseCase) {
	if u.Results == nil {
		u.Results = map[string]string{}
	}
	s.UseCases = append(s.UseCases, u)
}

// MergeCompanyInfo merges non-empty patch fields into the profile and
// returns the names of fields that were updated. An omitted field never
// clears a previously set value.
func (s *State) MergeCompanyInfo(patch CompanyPatch) []string {
	var updated []string
	if strings.TrimSpace(patch.CompanyName) != "" {
		s.CompanyName = patch.CompanyName
		updated = append(updated, "company_name")
	}
	if strings.TrimSpace(patch.Industry) != "" {
		s.Industry = patch.Industry
		updated = append(updated, "industry")
	}
	if strings.TrimSpace(patch.Stage) != "" {
		s.Stage = patch.Stage
		updated = append(updated, "stage")
	}
	if strings.TrimSpace(patch.TargetMarket) != "" {
		s.TargetMarket = patch.TargetMarket
		updated = append(updated, "target_market")
	}
	if patch.Budget > 0 {
		s.Budget = patch.Budget
		updated = append(updated, "budget")
	}
	return updated
}

// SetBudgetBreakdown replaces the breakdown and mirrors the total into the
// company profile budget.
func (s *State) SetBudgetBreakdown(b BudgetBreakdown) {
	copied := b
	if copied.Categories == nil {
		copied.Categories = []BudgetCategory{}
	}
	s.BudgetBreakdown = &copied
	s.Budget = b.Total
}

// SwapTimeline atomically replaces the whole phase sequence.
func (s *State) SwapTimeline(phases []Phase) {
	if phases == nil {
		phases = []Phase{}
	}
	s.TimelinePhases = phases
}

// Clone deep-copies the state so published snapshots are immune to later
// mutation.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	out := *s
	if s.Strategy != nil {
		st := *s.Strategy
		st.RecommendedFor = append([]string(nil), s.Strategy.RecommendedFor...)
		st.ActionItems = append([]string(nil), s.Strategy.ActionItems...)
		out.Strategy = &st
	}
	out.RecommendedProviders = make([]Provider, len(s.RecommendedProviders))
	for i, p := range s.RecommendedProviders {
		out.RecommendedProviders[i] = cloneProvider(p)
	}
	if s.ROIProjection != nil {
		roi := *s.ROIProjection
		out.ROIProjection = &roi
	}
	out.UseCases = make([]UseCase, len(s.UseCases))
	for i, u := range s.UseCases {
		copied := u
		copied.Results = make(map[string]string, len(u.Results))
		for k, v := range u.Results {
			copied.Results[k] = v
		}
		out.UseCases[i] = copied
	}
	if s.BudgetBreakdown != nil {
		bb := *s.BudgetBreakdown
		bb.Categories = append([]BudgetCategory(nil), s.BudgetBreakdown.Categories...)
		out.BudgetBreakdown = &bb
	}
	out.TimelinePhases = make([]Phase, len(s.TimelinePhases))
	for i, ph := range s.TimelinePhases {
		copied := ph
		copied.Activities = append([]string(nil), ph.Activities...)
		copied.Milestones = append([]string(nil), ph.Milestones...)
		out.TimelinePhases[i] = copied
	}
	return &out
}

func cloneProvider(p Provider) Provider {
	out := p
	out.Specializations = append([]string(nil), p.Specializations...)
	out.Industries = append([]string(nil), p.Industries...)
	if p.Rating != nil {
		r := *p.Rating
		out.Rating = &r
	}
	if p.MatchScore != nil {
		m := *p.MatchScore
		out.MatchScore = &m
	}
	return out
}

func providersEqual(a, b Provider) bool {
	if a.Name != b.Name || a.Slug != b.Slug || a.Type != b.Type ||
		a.PricingTier != b.PricingTier || a.Description != b.Description ||
		a.Website != b.Website || a.LogoURL != b.LogoURL {
		return false
	}
	if !stringSlicesEqual(a.Specializations, b.Specializations) {
		return false
	}
	if !stringSlicesEqual(a.Industries, b.Industries) {
		return false
	}
	return floatPtrEqual(a.Rating, b.Rating) && floatPtrEqual(a.MatchScore, b.MatchScore)
}

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Slugify derives a URL slug from a provider name: lowercase, spaces to
// hyphens.
func Slugify(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}

// TierForMinBudget derives a pricing tier from a catalog minimum budget.
// Unknown budgets land in the middle tier.
func TierForMinBudget(minBudget *float64) PricingTier {
	if minBudget == nil {
		return TierMid
	}
	switch {
	case *minBudget < 5000:
		return TierBudget
	case *minBudget > 15000:
		return TierPremium
	default:
		return TierMid
	}
}
