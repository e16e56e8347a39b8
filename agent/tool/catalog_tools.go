package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/gtmquest/gtm-advisor/agent/contract"
	reportx "github.com/gtmquest/gtm-advisor/agent/report"
)

const (
	defaultSearchResults = 5
	defaultTopLimit      = 10

	catalogUnavailableMsg = "Sorry, I couldn't reach the provider catalog right now. I can still help with strategy in the meantime."
	contactRetryMsg       = "Sorry, I couldn't save your request right now. Please try again in a moment."
)

func (r *Registry) searchProviders(ctx context.Context, st *reportx.State, args map[string]any) contractx.Ack {
	location, err := optStringArg(args, "location")
	if err != nil {
		return contractx.Fail(err.Error())
	}
	specialization, err := optStringArg(args, "specialization")
	if err != nil {
		return contractx.Fail(err.Error())
	}
	maxResults, err := optIntArg(args, "max_results", defaultSearchResults)
	if err != nil {
		return contractx.Fail(err.Error())
	}
	if maxResults <= 0 {
		maxResults = defaultSearchResults
	}

	if r.catalog == nil {
		return contractx.Fail(catalogUnavailableMsg)
	}

	records, err := r.catalog.Search(ctx, contractx.CatalogQuery{
		Location:       location,
		Specialization: specialization,
		Limit:          maxResults,
	})
	if err != nil {
		log.Error().Err(err).Str("location", location).Str("specialization", specialization).
			Msg("catalog search failed")
		return contractx.Fail(catalogUnavailableMsg)
	}

	added := 0
	for _, rec := range records {
		if st.AppendProviderIfAbsent(r.providerFromRecord(rec)) {
			added++
		}
	}

	log.Info().Int("matched", len(records)).Int("added", added).Msg("catalog providers searched")
	return contractx.Ack{
		Success: true,
		Message: searchMessage(len(records), location, specialization),
		Payload: map[string]any{
			"count":          len(records),
			"location":       location,
			"specialization": specialization,
		},
	}
}

func (r *Registry) providerDetails(ctx context.Context, args map[string]any) contractx.Ack {
	identifier, err := stringArg(args, "identifier")
	if err != nil {
		return contractx.Fail(err.Error())
	}
	if r.catalog == nil {
		return contractx.Fail(catalogUnavailableMsg)
	}

	rec, err := r.catalog.BySlug(ctx, reportx.Slugify(identifier))
	if err != nil {
		if errors.Is(err, contractx.ErrNotFound) {
			return contractx.Fail(fmt.Sprintf("No provider found matching '%s'.", identifier))
		}
		log.Error().Err(err).Str("identifier", identifier).Msg("catalog lookup failed")
		return contractx.Fail(catalogUnavailableMsg)
	}

	return contractx.Ack{
		Success: true,
		Message: fmt.Sprintf("Here are the details for %s.", rec.Name),
		Payload: map[string]any{"provider": r.providerFromRecord(*rec)},
	}
}

func (r *Registry) topProviders(ctx context.Context, args map[string]any) contractx.Ack {
	limit, err := optIntArg(args, "limit", defaultTopLimit)
	if err != nil {
		return contractx.Fail(err.Error())
	}
	if limit <= 0 {
		limit = defaultTopLimit
	}
	if r.catalog == nil {
		return contractx.Fail(catalogUnavailableMsg)
	}

	records, err := r.catalog.TopRanked(ctx, limit)
	if err != nil {
		log.Error().Err(err).Int("limit", limit).Msg("catalog ranking failed")
		return contractx.Fail(catalogUnavailableMsg)
	}

	providers := make([]reportx.Provider, 0, len(records))
	for _, rec := range records {
		providers = append(providers, r.providerFromRecord(rec))
	}

	return contractx.Ack{
		Success: true,
		Message: fmt.Sprintf("Found the top %d providers by rank.", len(providers)),
		Payload: map[string]any{
			"providers": providers,
			"count":     len(providers),
		},
	}
}

func (r *Registry) saveContactRequest(ctx context.Context, args map[string]any) contractx.Ack {
	fullName, err := stringArg(args, "full_name")
	if err != nil {
		return contractx.Fail(err.Error())
	}
	email, err := stringArg(args, "email")
	if err != nil {
		return contractx.Fail(err.Error())
	}
	if !strings.Contains(email, "@") {
		return contractx.Fail("email must be a valid address")
	}
	companyName, err := optStringArg(args, "company_name")
	if err != nil {
		return contractx.Fail(err.Error())
	}
	message, err := optStringArg(args, "message")
	if err != nil {
		return contractx.Fail(err.Error())
	}

	if r.catalog == nil {
		return contractx.Fail(contactRetryMsg)
	}

	id, err := r.catalog.SaveContact(ctx, contractx.ContactRequest{
		FullName:    fullName,
		Email:       email,
		CompanyName: companyName,
		Message:     message,
	})
	if err != nil {
		// The underlying fault stays in the logs; the conversation only
		// sees a retry suggestion.
		log.Error().Err(err).Str("email", email).Msg("contact request persist failed")
		return contractx.Fail(contactRetryMsg)
	}

	log.Info().Str("request_id", id).Msg("contact request saved")
	return contractx.Ack{
		Success: true,
		Message: fmt.Sprintf("Thanks %s! Your consultation request has been saved and our team will follow up.", fullName),
		Payload: map[string]any{"request_id": id},
	}
}

// providerFromRecord maps an external catalog row into a report provider.
// Dedup is keyed on the catalog slug, so the id is the slug whenever the
// catalog supplies one.
func (r *Registry) providerFromRecord(rec contractx.CatalogRecord) reportx.Provider {
	id := rec.Slug
	if id == "" {
		id = r.newID()
	}
	slug := rec.Slug
	if slug == "" {
		slug = reportx.Slugify(rec.Name)
	}
	p := reportx.Provider{
		ID:              id,
		Name:            rec.Name,
		Slug:            slug,
		Type:            reportx.ProviderAgency,
		Specializations: append([]string{}, rec.Specializations...),
		Industries:      append([]string{}, rec.ServiceAreas...),
		PricingTier:     reportx.TierForMinBudget(rec.MinBudget),
		LogoURL:         rec.LogoURL,
		Website:         rec.Website,
		Description:     rec.Description,
	}
	if rec.AvgRating != nil {
		rating := *rec.AvgRating
		p.Rating = &rating
	}
	return p
}

func searchMessage(count int, location, specialization string) string {
	var filters []string
	if location != "" {
		filters = append(filters, "location="+location)
	}
	if specialization != "" {
		filters = append(filters, "specialization="+specialization)
	}
	suffix := ""
	if len(filters) > 0 {
		suffix = " (" + strings.Join(filters, ", ") + ")"
	}
	if count == 0 {
		return "No providers matched your criteria" + suffix + "."
	}
	return fmt.Sprintf("Found %d matching providers%s and added them to your report.", count, suffix)
}
