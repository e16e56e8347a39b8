package tool

import (
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/gtmquest/gtm-advisor/agent/contract"
	reportx "github.com/gtmquest/gtm-advisor/agent/report"
)

func (r *Registry) setStrategy(st *reportx.State, args map[string]any) contractx.Ack {
	strategyType, err := enumArg(args, "type", "plg", "sales_led", "hybrid")
	if err != nil {
		return contractx.Fail(err.Error())
	}
	name, err := stringArg(args, "name")
	if err != nil {
		return contractx.Fail(err.Error())
	}
	summary, err := stringArg(args, "summary")
	if err != nil {
		return contractx.Fail(err.Error())
	}
	actionItems, err := stringSliceArg(args, "action_items")
	if err != nil {
		return contractx.Fail(err.Error())
	}
	recommendedFor, err := stringSliceArg(args, "recommended_for")
	if err != nil {
		return contractx.Fail(err.Error())
	}

	st.SetStrategy(reportx.Strategy{
		Name:           name,
		Type:           reportx.StrategyType(strategyType),
		Summary:        summary,
		RecommendedFor: recommendedFor,
		ActionItems:    actionItems,
	})

	log.Info().Str("strategy", name).Msg("strategy generated")
	return contractx.OK(fmt.Sprintf("Strategy '%s' has been generated and added to your report.", name))
}

func (r *Registry) addProvider(st *reportx.State, args map[string]any) contractx.Ack {
	name, err := stringArg(args, "name")
	if err != nil {
		return contractx.Fail(err.Error())
	}
	providerType, err := enumArg(args, "type", "agency", "tool", "platform")
	if err != nil {
		return contractx.Fail(err.Error())
	}
	description, err := stringArg(args, "description")
	if err != nil {
		return contractx.Fail(err.Error())
	}
	specializations, err := stringSliceArg(args, "specializations")
	if err != nil {
		return contractx.Fail(err.Error())
	}
	tier, err := enumArg(args, "pricing_tier", "budget", "mid", "premium")
	if err != nil {
		return contractx.Fail(err.Error())
	}
	matchScore, err := floatArg(args, "match_score")
	if err != nil {
		return contractx.Fail(err.Error())
	}
	if matchScore < 0 || matchScore > 1 {
		return contractx.Fail("match_score must be between 0 and 1")
	}

	score := matchScore
	provider := reportx.Provider{
		ID:              r.newID(),
		Name:            name,
		Slug:            reportx.Slugify(name),
		Type:            reportx.ProviderType(providerType),
		Specializations: specializations,
		Industries:      []string{},
		PricingTier:     reportx.PricingTier(tier),
		Description:     description,
		MatchScore:      &score,
	}
	// Manually specified providers are never deduplicated; two suggestions
	// with the same name but different scores both appear.
	st.AppendProvider(provider)

	matchPct := int(math.Round(matchScore * 100))
	log.Info().Str("provider", name).Int("match_pct", matchPct).Msg("provider added")
	return contractx.OK(fmt.Sprintf("Added %s (%d%% match) to your recommended providers.", name, matchPct))
}

func (r *Registry) setROI(st *reportx.State, args map[string]any) contractx.Ack {
	cac, err := floatArg(args, "estimated_cac")
	if err != nil {
		return contractx.Fail(err.Error())
	}
	ltv, err := floatArg(args, "estimated_ltv")
	if err != nil {
		return contractx.Fail(err.Error())
	}
	if cac <= 0 || ltv <= 0 {
		return contractx.Fail("estimated_cac and estimated_ltv must be positive")
	}
	paybackMonths, err := intArg(args, "payback_months")
	if err != nil {
		return contractx.Fail(err.Error())
	}
	if paybackMonths <= 0 {
		return contractx.Fail("payback_months must be positive")
	}
	confidence, err := enumArg(args, "confidence", "low", "medium", "high")
	if err != nil {
		return contractx.Fail(err.Error())
	}
	notes, err := optStringArg(args, "notes")
	if err != nil {
		return contractx.Fail(err.Error())
	}

	st.SetROI(reportx.ROIProjection{
		EstimatedCAC:  cac,
		EstimatedLTV:  ltv,
		PaybackMonths: paybackMonths,
		Confidence:    reportx.Confidence(confidence),
		Notes:         notes,
	})

	log.Info().Float64("cac", cac).Float64("ltv", ltv).Msg("roi projection generated")
	return contractx.OK("ROI projection has been added to your report.")
}

func (r *Registry) addUseCase(st *reportx.State, args map[string]any) contractx.Ack {
	companyName, err := stringArg(args, "company_name")
	if err != nil {
		return contractx.Fail(err.Error())
	}
	industry, err := stringArg(args, "industry")
	if err != nil {
		return contractx.Fail(err.Error())
	}
	challenge, err := stringArg(args, "challenge")
	if err != nil {
		return contractx.Fail(err.Error())
	}
	solution, err := stringArg(args, "solution")
	if err != nil {
		return contractx.Fail(err.Error())
	}
	results, err := stringMapArg(args, "results")
	if err != nil {
		return contractx.Fail(err.Error())
	}

	st.AppendUseCase(reportx.UseCase{
		CompanyName: companyName,
		Industry:    industry,
		Challenge:   challenge,
		Solution:    solution,
		Results:     results,
	})

	log.Info().Str("company", companyName).Msg("use case added")
	return contractx.OK(fmt.Sprintf("Added %s case study to your report.", companyName))
}

func (r *Registry) updateCompanyInfo(st *reportx.State, args map[string]any) contractx.Ack {
	companyName, err := optStringArg(args, "company_name")
	if err != nil {
		return contractx.Fail(err.Error())
	}
	industry, err := optStringArg(args, "industry")
	if err != nil {
		return contractx.Fail(err.Error())
	}
	stage, err := optStringArg(args, "stage")
	if err != nil {
		return contractx.Fail(err.Error())
	}
	targetMarket, err := optStringArg(args, "target_market")
	if err != nil {
		return contractx.Fail(err.Error())
	}
	budget, err := optFloatArg(args, "budget")
	if err != nil {
		return contractx.Fail(err.Error())
	}
	if budget < 0 {
		return contractx.Fail("budget must be positive")
	}

	updated := st.MergeCompanyInfo(reportx.CompanyPatch{
		CompanyName:  companyName,
		Industry:     industry,
		Stage:        stage,
		TargetMarket: targetMarket,
		Budget:       budget,
	})
	if len(updated) == 0 {
		return contractx.Fail("no company fields provided")
	}

	log.Info().Strs("fields", updated).Msg("company info updated")
	return contractx.OK("Updated: " + strings.Join(updated, ", "))
}

func (r *Registry) setBudgetBreakdown(st *reportx.State, args map[string]any) contractx.Ack {
	total, err := floatArg(args, "total")
	if err != nil {
		return contractx.Fail(err.Error())
	}
	if total <= 0 {
		return contractx.Fail("total must be positive")
	}
	rawCategories, err := objSliceArg(args, "categories")
	if err != nil {
		return contractx.Fail(err.Error())
	}

	categories := make([]reportx.BudgetCategory, 0, len(rawCategories))
	for i, obj := range rawCategories {
		name, err := stringArg(obj, "name")
		if err != nil {
			return contractx.Fail(fmt.Sprintf("categories[%d]: %v", i, err))
		}
		amount, err := floatArg(obj, "amount")
		if err != nil {
			return contractx.Fail(fmt.Sprintf("categories[%d]: %v", i, err))
		}
		percentage, err := floatArg(obj, "percentage")
		if err != nil {
			return contractx.Fail(fmt.Sprintf("categories[%d]: %v", i, err))
		}
		categories = append(categories, reportx.BudgetCategory{
			Name:       name,
			Amount:     amount,
			Percentage: percentage,
		})
	}

	st.SetBudgetBreakdown(reportx.BudgetBreakdown{
		Total:      total,
		Categories: categories,
	})

	log.Info().Float64("total", total).Msg("budget breakdown set")
	return contractx.OK(fmt.Sprintf("Budget breakdown for %s has been added to your report.", formatDollars(total)))
}

func (r *Registry) setTimeline(st *reportx.State, args map[string]any) contractx.Ack {
	rawPhases, err := objSliceArg(args, "phases")
	if err != nil {
		return contractx.Fail(err.Error())
	}
	if len(rawPhases) == 0 {
		return contractx.Fail("phases must not be empty")
	}

	phases := make([]reportx.Phase, 0, len(rawPhases))
	for i, obj := range rawPhases {
		name, err := stringArg(obj, "name")
		if err != nil {
			return contractx.Fail(fmt.Sprintf("phases[%d]: %v", i, err))
		}
		duration, err := stringArg(obj, "duration")
		if err != nil {
			return contractx.Fail(fmt.Sprintf("phases[%d]: %v", i, err))
		}
		activities, err := stringSliceArg(obj, "activities")
		if err != nil {
			return contractx.Fail(fmt.Sprintf("phases[%d]: %v", i, err))
		}
		milestones, err := stringSliceArg(obj, "milestones")
		if err != nil {
			return contractx.Fail(fmt.Sprintf("phases[%d]: %v", i, err))
		}
		phases = append(phases, reportx.Phase{
			Name:       name,
			Duration:   duration,
			Activities: activities,
			Milestones: milestones,
		})
	}

	// Full list swap: the previous phases never survive, even partially.
	st.SwapTimeline(phases)

	log.Info().Int("phases", len(phases)).Msg("timeline set")
	return contractx.OK(fmt.Sprintf("Timeline with %d phases has been added to your report.", len(phases)))
}

func formatDollars(amount float64) string {
	whole := int64(math.Round(amount))
	s := fmt.Sprintf("%d", whole)
	if whole < 0 {
		return "-" + formatDollars(-amount)
	}
	var b strings.Builder
	b.WriteString("$")
	lead := len(s) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(s[:lead])
	for i := lead; i < len(s); i += 3 {
		b.WriteString(",")
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
