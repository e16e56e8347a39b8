package tool

import (
	contractx "github.com/gtmquest/gtm-advisor/agent/contract"
)

const (
	ToolSetStrategy        = "set_strategy"
	ToolAddProvider        = "add_provider"
	ToolSetROI             = "set_roi"
	ToolAddUseCase         = "add_use_case"
	ToolUpdateCompanyInfo  = "update_company_info"
	ToolSetBudgetBreakdown = "set_budget_breakdown"
	ToolSetTimeline        = "set_timeline"
	ToolSearchProviders    = "search_providers"
	ToolProviderDetails    = "get_provider_details"
	ToolTopProviders       = "get_top_providers"
	ToolSaveContactRequest = "save_contact_request"
)

// Specs returns the descriptors of every tool the reasoning backend may
// invoke. The order is stable so prompts and logs stay comparable across
// turns.
func Specs() []contractx.ToolSpec {
	return []contractx.ToolSpec{
		{
			Name: ToolSetStrategy,
			Desc: "Generate the GTM strategy recommendation and add it to the report. Replaces any prior strategy.",
			Params: map[string]*contractx.ParameterInfo{
				"type":            {Type: contractx.String, Desc: "GTM approach", Required: true, Enum: []string{"plg", "sales_led", "hybrid"}},
				"name":            {Type: contractx.String, Desc: "Human-readable name like 'Product-Led Growth'", Required: true},
				"summary":         {Type: contractx.String, Desc: "2-3 sentence summary of the strategy", Required: true},
				"action_items":    {Type: contractx.Array, Desc: "Specific action items to implement", Required: true, ElemType: contractx.String},
				"recommended_for": {Type: contractx.Array, Desc: "Company types this works best for", Required: true, ElemType: contractx.String},
			},
		},
		{
			Name: ToolAddProvider,
			Desc: "Add an agency/tool/platform recommendation to the report.",
			Params: map[string]*contractx.ParameterInfo{
				"name":            {Type: contractx.String, Desc: "Provider name", Required: true},
				"type":            {Type: contractx.String, Desc: "Provider kind", Required: true, Enum: []string{"agency", "tool", "platform"}},
				"description":     {Type: contractx.String, Desc: "Brief description of what they do", Required: true},
				"specializations": {Type: contractx.Array, Desc: "Their specializations", Required: true, ElemType: contractx.String},
				"pricing_tier":    {Type: contractx.String, Desc: "Pricing tier", Required: true, Enum: []string{"budget", "mid", "premium"}},
				"match_score":     {Type: contractx.Number, Desc: "Fit score from 0 to 1", Required: true},
			},
		},
		{
			Name: ToolSetROI,
			Desc: "Generate ROI projections for the GTM strategy. Replaces any prior projection.",
			Params: map[string]*contractx.ParameterInfo{
				"estimated_cac":  {Type: contractx.Number, Desc: "Estimated customer acquisition cost in dollars", Required: true},
				"estimated_ltv":  {Type: contractx.Number, Desc: "Estimated lifetime value in dollars", Required: true},
				"payback_months": {Type: contractx.Integer, Desc: "Months to pay back CAC", Required: true},
				"confidence":     {Type: contractx.String, Desc: "Projection confidence", Required: true, Enum: []string{"low", "medium", "high"}},
				"notes":          {Type: contractx.String, Desc: "Explanatory notes about the projection", Required: true},
			},
		},
		{
			Name: ToolAddUseCase,
			Desc: "Add a similar company success story to the report.",
			Params: map[string]*contractx.ParameterInfo{
				"company_name": {Type: contractx.String, Desc: "Company name (can be anonymized)", Required: true},
				"industry":     {Type: contractx.String, Desc: "Their industry", Required: true},
				"challenge":    {Type: contractx.String, Desc: "What challenge they faced", Required: true},
				"solution":     {Type: contractx.String, Desc: "How they solved it", Required: true},
				"results":      {Type: contractx.Object, Desc: "Results like {\"revenue_increase\": \"150%\"}", Required: true},
			},
		},
		{
			Name: ToolUpdateCompanyInfo,
			Desc: "Update company information in the report. Call when the user shares company details.",
			Params: map[string]*contractx.ParameterInfo{
				"company_name":  {Type: contractx.String, Desc: "Company name"},
				"industry":      {Type: contractx.String, Desc: "Industry or vertical"},
				"stage":         {Type: contractx.String, Desc: "Company stage", Enum: []string{"seed", "series_a", "series_b", "growth", "enterprise"}},
				"target_market": {Type: contractx.String, Desc: "Target market or customer segment"},
				"budget":        {Type: contractx.Number, Desc: "Budget in dollars"},
			},
		},
		{
			Name: ToolSetBudgetBreakdown,
			Desc: "Set the budget allocation breakdown. Replaces any prior breakdown and updates the company budget.",
			Params: map[string]*contractx.ParameterInfo{
				"total": {Type: contractx.Number, Desc: "Total budget in dollars", Required: true},
				"categories": {Type: contractx.Array, Desc: "Allocation per category", Required: true, SubParams: map[string]*contractx.ParameterInfo{
					"name":       {Type: contractx.String, Desc: "Category name", Required: true},
					"amount":     {Type: contractx.Number, Desc: "Dollar amount", Required: true},
					"percentage": {Type: contractx.Number, Desc: "Share of total", Required: true},
				}},
			},
		},
		{
			Name: ToolSetTimeline,
			Desc: "Set the implementation timeline. Replaces the whole phase list.",
			Params: map[string]*contractx.ParameterInfo{
				"phases": {Type: contractx.Array, Desc: "Ordered timeline phases", Required: true, SubParams: map[string]*contractx.ParameterInfo{
					"name":       {Type: contractx.String, Desc: "Phase name", Required: true},
					"duration":   {Type: contractx.String, Desc: "Duration like 'Months 1-2'", Required: true},
					"activities": {Type: contractx.Array, Desc: "Activities in this phase", Required: true, ElemType: contractx.String},
					"milestones": {Type: contractx.Array, Desc: "Milestones for this phase", Required: true, ElemType: contractx.String},
				}},
			},
		},
		{
			Name: ToolSearchProviders,
			Desc: "Search the agency catalog and add matches to the report.",
			Params: map[string]*contractx.ParameterInfo{
				"location":       {Type: contractx.String, Desc: "Filter by location, e.g. 'London'"},
				"specialization": {Type: contractx.String, Desc: "Filter by specialization, e.g. 'SaaS'"},
				"max_results":    {Type: contractx.Integer, Desc: "Maximum results to add (default 5)"},
			},
		},
		{
			Name: ToolProviderDetails,
			Desc: "Look up full details for one catalog provider. Does not modify the report.",
			Params: map[string]*contractx.ParameterInfo{
				"identifier": {Type: contractx.String, Desc: "Provider slug or name", Required: true},
			},
		},
		{
			Name: ToolTopProviders,
			Desc: "List the top-ranked catalog providers. Does not modify the report.",
			Params: map[string]*contractx.ParameterInfo{
				"limit": {Type: contractx.Integer, Desc: "How many to return (default 10)"},
			},
		},
		{
			Name: ToolSaveContactRequest,
			Desc: "Save a consultation request so the team can follow up.",
			Params: map[string]*contractx.ParameterInfo{
				"full_name":    {Type: contractx.String, Desc: "Requester full name", Required: true},
				"email":        {Type: contractx.String, Desc: "Requester email", Required: true},
				"company_name": {Type: contractx.String, Desc: "Company name"},
				"message":      {Type: contractx.String, Desc: "What they need help with"},
			},
		},
	}
}
