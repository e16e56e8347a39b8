package catalog

import (
	"testing"
	"time"
)

func TestConfigured(t *testing.T) {
	t.Parallel()

	if (Config{}).Configured() {
		t.Fatal("empty DSN must not count as configured")
	}
	if (Config{DSN: "   "}).Configured() {
		t.Fatal("blank DSN must not count as configured")
	}
	if !(Config{DSN: "postgres://localhost/gtm"}).Configured() {
		t.Fatal("non-empty DSN must count as configured")
	}
}

func TestNewStoreRequiresDSN(t *testing.T) {
	t.Parallel()

	if _, err := NewStore(Config{}); err == nil {
		t.Fatal("expected an error for a missing DSN")
	}
}

func TestNewStoreDefaults(t *testing.T) {
	t.Parallel()

	s, err := NewStore(Config{DSN: "postgres://localhost/gtm"})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer s.Close()

	if s.timeout != 10*time.Second {
		t.Fatalf("default timeout = %v", s.timeout)
	}
	if s.slugCache == nil {
		t.Fatal("slug cache must be initialized")
	}
}

func TestRecordFromRow(t *testing.T) {
	t.Parallel()

	budget := 5000.0
	rating := 4.7
	rank := 3
	row := companyRow{
		Slug:            "growth-partners",
		Name:            "Growth Partners",
		Description:     "Full-funnel GTM agency",
		Headquarters:    "London, UK",
		Website:         "https://growthpartners.example.com",
		Specializations: []string{"SaaS", "PLG"},
		ServiceAreas:    []string{"EMEA"},
		MinBudget:       &budget,
		AvgRating:       &rating,
		GlobalRank:      &rank,
	}

	rec := recordFromRow(row)
	if rec.Slug != row.Slug || rec.Name != row.Name {
		t.Fatalf("identity fields wrong: %+v", rec)
	}
	if rec.MinBudget == nil || *rec.MinBudget != 5000 {
		t.Fatalf("min budget wrong: %+v", rec.MinBudget)
	}
	if rec.GlobalRank == nil || *rec.GlobalRank != 3 {
		t.Fatalf("global rank wrong: %+v", rec.GlobalRank)
	}
	if len(rec.Specializations) != 2 || len(rec.ServiceAreas) != 1 {
		t.Fatalf("array columns wrong: %+v", rec)
	}
}
