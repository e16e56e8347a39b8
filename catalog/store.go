// Package catalog implements the provider catalog and contact persistence
// against Postgres. One pooled bun.DB serves the process lifetime; every
// query runs under the caller's context plus a store-level timeout.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	contractx "github.com/gtmquest/gtm-advisor/agent/contract"
)

const (
	appFilter    = "gtm"
	statusFilter = "published"
)

type Config struct {
	DSN          string        `envconfig:"DATABASE_URL"`
	MaxOpenConns int           `envconfig:"DATABASE_MAX_OPEN_CONNS" default:"8"`
	QueryTimeout time.Duration `envconfig:"DATABASE_QUERY_TIMEOUT" default:"10s"`
	CacheSize    int           `envconfig:"DATABASE_SLUG_CACHE_SIZE" default:"256"`
}

// Configured reports whether a connection string is present.
func (c Config) Configured() bool {
	return strings.TrimSpace(c.DSN) != ""
}

type companyRow struct {
	bun.BaseModel `bun:"table:companies,alias:c"`

	ID              int64    `bun:"id,pk,autoincrement"`
	Slug            string   `bun:"slug"`
	Name            string   `bun:"name"`
	Description     string   `bun:"description,nullzero"`
	Headquarters    string   `bun:"headquarters,nullzero"`
	Website         string   `bun:"website,nullzero"`
	LogoURL         string   `bun:"logo_url,nullzero"`
	Specializations []string `bun:"specializations,array"`
	ServiceAreas    []string `bun:"service_areas,array"`
	MinBudget       *float64 `bun:"min_budget"`
	AvgRating       *float64 `bun:"avg_rating"`
	GlobalRank      *int     `bun:"global_rank"`
	Status          string   `bun:"status"`
	App             string   `bun:"app"`
}

type contactRow struct {
	bun.BaseModel `bun:"table:contact_requests"`

	ID          string    `bun:"id,pk"`
	FullName    string    `bun:"full_name"`
	Email       string    `bun:"email"`
	CompanyName string    `bun:"company_name,nullzero"`
	Message     string    `bun:"message,nullzero"`
	CreatedAt   time.Time `bun:"created_at"`
}

// Store implements contract.Catalog on Postgres.
type Store struct {
	db        *bun.DB
	timeout   time.Duration
	slugCache *lru.Cache[string, contractx.CatalogRecord]
	now       func() time.Time
	newID     func() string
}

var _ contractx.Catalog = (*Store)(nil)

func NewStore(cfg Config) (*Store, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("database url is required")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	if cfg.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
		sqldb.SetMaxIdleConns(cfg.MaxOpenConns)
	}
	db := bun.NewDB(sqldb, pgdialect.New())

	cacheSize := cfg.CacheSize
	if cacheSize <= 0 {
		cacheSize = 256
	}
	cache, err := lru.New[string, contractx.CatalogRecord](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("build slug cache: %w", err)
	}

	timeout := cfg.QueryTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Store{
		db:        db,
		timeout:   timeout,
		slugCache: cache,
		now:       time.Now,
		newID:     uuid.NewString,
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Search(ctx context.Context, q contractx.CatalogQuery) ([]contractx.CatalogRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	limit := q.Limit
	if limit <= 0 {
		limit = 5
	}

	var rows []companyRow
	sel := s.baseSelect(&rows)
	if loc := strings.TrimSpace(q.Location); loc != "" {
		sel = sel.Where("(headquarters ILIKE ? OR ? ILIKE ANY (service_areas))", "%"+loc+"%", loc)
	}
	if spec := strings.TrimSpace(q.Specialization); spec != "" {
		sel = sel.Where("? ILIKE ANY (specializations)", spec)
	}
	if err := sel.Limit(limit).Scan(ctx); err != nil {
		return nil, fmt.Errorf("%w: search: %v", contractx.ErrCatalogUnavailable, err)
	}

	records := make([]contractx.CatalogRecord, 0, len(rows))
	for _, row := range rows {
		rec := recordFromRow(row)
		s.slugCache.Add(rec.Slug, rec)
		records = append(records, rec)
	}
	return records, nil
}

func (s *Store) BySlug(ctx context.Context, slug string) (*contractx.CatalogRecord, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, contractx.ErrNotFound
	}
	if rec, ok := s.slugCache.Get(slug); ok {
		return &rec, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var row companyRow
	err := s.baseSelect(&row).Where("slug = ?", slug).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, contractx.ErrNotFound
		}
		return nil, fmt.Errorf("%w: lookup slug=%s: %v", contractx.ErrCatalogUnavailable, slug, err)
	}

	rec := recordFromRow(row)
	s.slugCache.Add(rec.Slug, rec)
	return &rec, nil
}

func (s *Store) TopRanked(ctx context.Context, limit int) ([]contractx.CatalogRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if limit <= 0 {
		limit = 10
	}

	var rows []companyRow
	if err := s.baseSelect(&rows).Limit(limit).Scan(ctx); err != nil {
		return nil, fmt.Errorf("%w: top ranked: %v", contractx.ErrCatalogUnavailable, err)
	}

	records := make([]contractx.CatalogRecord, 0, len(rows))
	for _, row := range rows {
		rec := recordFromRow(row)
		s.slugCache.Add(rec.Slug, rec)
		records = append(records, rec)
	}
	return records, nil
}

func (s *Store) SaveContact(ctx context.Context, req contractx.ContactRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	row := contactRow{
		ID:          s.newID(),
		FullName:    req.FullName,
		Email:       req.Email,
		CompanyName: req.CompanyName,
		Message:     req.Message,
		CreatedAt:   s.now().UTC(),
	}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return "", fmt.Errorf("%w: save contact: %v", contractx.ErrCatalogUnavailable, err)
	}

	log.Debug().Str("request_id", row.ID).Msg("contact request inserted")
	return row.ID, nil
}

func (s *Store) baseSelect(model any) *bun.SelectQuery {
	return s.db.NewSelect().
		Model(model).
		Where("app = ?", appFilter).
		Where("status = ?", statusFilter).
		OrderExpr("global_rank ASC NULLS LAST")
}

func recordFromRow(row companyRow) contractx.CatalogRecord {
	return contractx.CatalogRecord{
		Slug:            row.Slug,
		Name:            row.Name,
		Description:     row.Description,
		Headquarters:    row.Headquarters,
		Website:         row.Website,
		LogoURL:         row.LogoURL,
		Specializations: row.Specializations,
		ServiceAreas:    row.ServiceAreas,
		MinBudget:       row.MinBudget,
		AvgRating:       row.AvgRating,
		GlobalRank:      row.GlobalRank,
	}
}
