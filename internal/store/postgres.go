package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/KvizadSaderah/bg-real-estate-finder-sub001/internal/parser"
)

var (
	ErrSiteNotFound  = errors.New("parser site not found")
	ErrDuplicateName = errors.New("parser site with this name already exists")
)

// SiteStore persists parser site configurations in PostgreSQL. The config
// body is stored as JSONB; identity, name and enabled flag are columns so
// listing and toggling do not touch the document.
type SiteStore struct {
	db *pgxpool.Pool
}

func NewSiteStore(connStr string) (*SiteStore, error) {
	db, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	s := &SiteStore{db: db}
	if err := s.initSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SiteStore) initSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS parser_sites (
			id         UUID PRIMARY KEY,
			name       TEXT NOT NULL UNIQUE,
			enabled    BOOLEAN NOT NULL DEFAULT TRUE,
			config     JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	return err
}

func (s *SiteStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *SiteStore) Close() {
	s.db.Close()
}

// List returns all site configs ordered by name.
func (s *SiteStore) List(ctx context.Context) ([]*parser.SiteConfig, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, name, enabled, config, created_at, updated_at
		 FROM parser_sites ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sites := []*parser.SiteConfig{}
	for rows.Next() {
		site, err := scanSite(rows)
		if err != nil {
			return nil, err
		}
		sites = append(sites, site)
	}
	return sites, rows.Err()
}

// Get returns a single site config by ID.
func (s *SiteStore) Get(ctx context.Context, id string) (*parser.SiteConfig, error) {
	row := s.db.QueryRow(ctx,
		`SELECT id, name, enabled, config, created_at, updated_at
		 FROM parser_sites WHERE id = $1`, id)
	site, err := scanSite(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSiteNotFound
	}
	return site, err
}

// Create stores a new site config and assigns its ID.
func (s *SiteStore) Create(ctx context.Context, site *parser.SiteConfig) (*parser.SiteConfig, error) {
	site.ID = uuid.NewString()
	now := time.Now().UTC()
	site.CreatedAt = now
	site.UpdatedAt = now

	body, err := marshalConfig(site)
	if err != nil {
		return nil, err
	}
	_, err = s.db.Exec(ctx,
		`INSERT INTO parser_sites (id, name, enabled, config, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		site.ID, site.Name, site.Enabled, body, site.CreatedAt, site.UpdatedAt)
	if isUniqueViolation(err) {
		return nil, ErrDuplicateName
	}
	if err != nil {
		return nil, err
	}
	return site, nil
}

// Update replaces the config of an existing site.
func (s *SiteStore) Update(ctx context.Context, id string, site *parser.SiteConfig) (*parser.SiteConfig, error) {
	site.ID = id
	site.UpdatedAt = time.Now().UTC()

	body, err := marshalConfig(site)
	if err != nil {
		return nil, err
	}
	tag, err := s.db.Exec(ctx,
		`UPDATE parser_sites
		 SET name = $2, enabled = $3, config = $4, updated_at = $5
		 WHERE id = $1`,
		id, site.Name, site.Enabled, body, site.UpdatedAt)
	if isUniqueViolation(err) {
		return nil, ErrDuplicateName
	}
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrSiteNotFound
	}
	return site, nil
}

// Delete removes a site config.
func (s *SiteStore) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM parser_sites WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSiteNotFound
	}
	return nil
}

// Toggle flips the enabled flag and returns the new state.
func (s *SiteStore) Toggle(ctx context.Context, id string) (bool, error) {
	var enabled bool
	err := s.db.QueryRow(ctx,
		`UPDATE parser_sites
		 SET enabled = NOT enabled,
		     config = jsonb_set(config, '{enabled}', to_jsonb(NOT enabled)),
		     updated_at = NOW()
		 WHERE id = $1
		 RETURNING enabled`, id).Scan(&enabled)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, ErrSiteNotFound
	}
	return enabled, err
}

// Upsert inserts a site keeping its ID if one is set, or matches an
// existing site by name. Used by configuration import.
func (s *SiteStore) Upsert(ctx context.Context, site *parser.SiteConfig) (*parser.SiteConfig, error) {
	if site.ID != "" {
		if _, err := s.Get(ctx, site.ID); err == nil {
			return s.Update(ctx, site.ID, site)
		} else if !errors.Is(err, ErrSiteNotFound) {
			return nil, err
		}
	}
	var existingID string
	err := s.db.QueryRow(ctx,
		`SELECT id FROM parser_sites WHERE name = $1`, site.Name).Scan(&existingID)
	if err == nil {
		return s.Update(ctx, existingID, site)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	return s.Create(ctx, site)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSite(row rowScanner) (*parser.SiteConfig, error) {
	var (
		id, name  string
		enabled   bool
		body      []byte
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&id, &name, &enabled, &body, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var site parser.SiteConfig
	if err := json.Unmarshal(body, &site); err != nil {
		return nil, fmt.Errorf("corrupt config for site %s: %w", id, err)
	}
	// Columns win over whatever the document says.
	site.ID = id
	site.Name = name
	site.Enabled = enabled
	site.CreatedAt = createdAt
	site.UpdatedAt = updatedAt
	return &site, nil
}

func marshalConfig(site *parser.SiteConfig) ([]byte, error) {
	body, err := json.Marshal(site)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal site config: %w", err)
	}
	return body, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
