package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"rental-intel/models"
	"rental-intel/utils"
)

// Store is the PostgreSQL-backed implementation of ListingSource,
// ListingWriter, OwnerStore and RiskScorer.
type Store struct {
	db     *sql.DB
	logger *utils.Logger
}

// NewStore opens a connection to PostgreSQL, runs schema migrations and
// returns a ready-to-use Store.
func NewStore(dsn string, logger *utils.Logger) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	retry := &utils.RetryConfig{MaxAttempts: 5, BaseDelay: 2 * time.Second, Logger: logger}
	if err := retry.Do("postgres-ping", db.Ping); err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}

	s := &Store{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS listings (
			id          SERIAL PRIMARY KEY,
			platform    VARCHAR(50)   NOT NULL,
			title       TEXT          NOT NULL DEFAULT '',
			price       NUMERIC(10,2) NOT NULL DEFAULT 0,
			url         TEXT          UNIQUE NOT NULL,
			host_id     TEXT          NOT NULL DEFAULT '',
			host_name   TEXT          NOT NULL DEFAULT '',
			raw_data    JSONB         NOT NULL DEFAULT '{}',
			is_active   BOOLEAN       NOT NULL DEFAULT TRUE,
			scraped_at  TIMESTAMPTZ   NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_listings_platform  ON listings(platform);
		CREATE INDEX IF NOT EXISTS idx_listings_is_active ON listings(is_active);

		CREATE TABLE IF NOT EXISTS owners (
			id                        SERIAL PRIMARY KEY,
			primary_phone             TEXT,
			primary_host_id           TEXT,
			names                     TEXT[]        NOT NULL DEFAULT '{}',
			host_ids                  TEXT[]        NOT NULL DEFAULT '{}',
			platforms                 TEXT[]        NOT NULL DEFAULT '{}',
			listing_count             INT           NOT NULL DEFAULT 0,
			avg_price_per_night       NUMERIC(10,2) NOT NULL DEFAULT 0,
			estimated_monthly_revenue NUMERIC(14,2) NOT NULL DEFAULT 0,
			risk_score                NUMERIC(5,2)  NOT NULL DEFAULT 0,
			first_seen_at             TIMESTAMPTZ   NOT NULL DEFAULT NOW(),
			last_seen_at              TIMESTAMPTZ   NOT NULL DEFAULT NOW()
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_owners_primary_phone
			ON owners(primary_phone) WHERE primary_phone IS NOT NULL;
		CREATE UNIQUE INDEX IF NOT EXISTS idx_owners_primary_host_id
			ON owners(primary_host_id) WHERE primary_host_id IS NOT NULL;
		CREATE INDEX IF NOT EXISTS idx_owners_risk_score ON owners(risk_score DESC);

		CREATE TABLE IF NOT EXISTS owner_listing_links (
			owner_id   INT          NOT NULL REFERENCES owners(id)   ON DELETE CASCADE,
			listing_id INT          NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
			match_type VARCHAR(20)  NOT NULL,
			confidence NUMERIC(3,2) NOT NULL,
			PRIMARY KEY (owner_id, listing_id)
		);

		CREATE OR REPLACE FUNCTION calculate_owner_risk_score(owner_id_param INT)
		RETURNS void AS $$
		BEGIN
			UPDATE owners SET risk_score = LEAST(100,
				listing_count * 10 +
				CASE
					WHEN estimated_monthly_revenue >= 1000000 THEN 30
					WHEN estimated_monthly_revenue >= 500000  THEN 20
					WHEN estimated_monthly_revenue > 0        THEN 10
					ELSE 0
				END)
			WHERE id = owner_id_param;
		END;
		$$ LANGUAGE plpgsql;
	`)
	return err
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ─── ListingSource ───────────────────────────────────────────────────────────

// FetchActiveListings returns every listing with is_active = true.
func (s *Store) FetchActiveListings(ctx context.Context) ([]*models.Listing, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, platform, title, price, host_id, host_name, raw_data, is_active
		FROM listings
		WHERE is_active = TRUE
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch active listings: %w", err)
	}
	defer rows.Close()

	var listings []*models.Listing
	for rows.Next() {
		l := &models.Listing{}
		var rawData []byte
		if err := rows.Scan(
			&l.ID, &l.Platform, &l.Title, &l.Price,
			&l.HostID, &l.HostName, &rawData, &l.IsActive,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan listing: %w", err)
		}
		if len(rawData) > 0 {
			if err := json.Unmarshal(rawData, &l.RawData); err != nil {
				s.logger.Warn("[postgres] Listing %d has malformed raw_data — ignoring: %v", l.ID, err)
				l.RawData = nil
			}
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// CountActiveListings returns the number of active listings.
func (s *Store) CountActiveListings(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM listings WHERE is_active = TRUE`,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("postgres: count active listings: %w", err)
	}
	return count, nil
}

// ─── OwnerStore ──────────────────────────────────────────────────────────────

const ownerColumns = `id, COALESCE(primary_phone, ''), COALESCE(primary_host_id, ''),
	names, host_ids, platforms, listing_count, avg_price_per_night,
	estimated_monthly_revenue, risk_score, first_seen_at, last_seen_at`

// FindOwner looks up an owner by its identity key. Returns (nil, nil) when
// no owner matches.
func (s *Store) FindOwner(ctx context.Context, matchType models.MatchType, identifier string) (*models.Owner, error) {
	column, err := identityColumn(matchType)
	if err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+ownerColumns+` FROM owners WHERE `+column+` = $1`, identifier)

	o, err := scanOwner(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: find owner %s %q: %w", matchType, identifier, err)
	}
	return o, nil
}

// InsertOwner creates a new owner record. The insert upserts on the identity
// key so two concurrent resolution runs cannot create duplicate owners —
// the loser of the race turns into an update of the same row.
func (s *Store) InsertOwner(ctx context.Context, o *models.Owner) (int64, error) {
	column := "primary_phone"
	identifier := o.PrimaryPhone
	if o.PrimaryHostID != "" {
		column = "primary_host_id"
		identifier = o.PrimaryHostID
	}

	var id int64
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(`
		INSERT INTO owners
			(%s, names, host_ids, platforms, listing_count, avg_price_per_night,
			 estimated_monthly_revenue, first_seen_at, last_seen_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (%s) WHERE %s IS NOT NULL DO UPDATE SET
			names                     = EXCLUDED.names,
			host_ids                  = EXCLUDED.host_ids,
			platforms                 = EXCLUDED.platforms,
			listing_count             = EXCLUDED.listing_count,
			avg_price_per_night       = EXCLUDED.avg_price_per_night,
			estimated_monthly_revenue = EXCLUDED.estimated_monthly_revenue,
			last_seen_at              = EXCLUDED.last_seen_at
		RETURNING id
	`, column, column, column),
		identifier,
		pq.Array(o.Names), pq.Array(o.HostIDs), pq.Array(o.Platforms),
		o.ListingCount, o.AvgPricePerNight, o.EstimatedMonthlyRevenue,
		o.FirstSeenAt, o.LastSeenAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("postgres: insert owner %q: %w", identifier, err)
	}
	return id, nil
}

// UpdateOwner overwrites every derived field of an existing owner and
// refreshes last_seen_at. Identity keys and first_seen_at are left alone.
func (s *Store) UpdateOwner(ctx context.Context, o *models.Owner) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE owners SET
			names                     = $1,
			host_ids                  = $2,
			platforms                 = $3,
			listing_count             = $4,
			avg_price_per_night       = $5,
			estimated_monthly_revenue = $6,
			last_seen_at              = $7
		WHERE id = $8
	`,
		pq.Array(o.Names), pq.Array(o.HostIDs), pq.Array(o.Platforms),
		o.ListingCount, o.AvgPricePerNight, o.EstimatedMonthlyRevenue,
		o.LastSeenAt, o.ID,
	)
	if err != nil {
		return fmt.Errorf("postgres: update owner %d: %w", o.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("postgres: update owner %d: no such owner", o.ID)
	}
	return nil
}

// UpsertLink writes one owner-listing link, keyed on (owner_id, listing_id)
// so repeated runs do not duplicate links.
func (s *Store) UpsertLink(ctx context.Context, link models.OwnerListingLink) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO owner_listing_links (owner_id, listing_id, match_type, confidence)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (owner_id, listing_id) DO UPDATE SET
			match_type = EXCLUDED.match_type,
			confidence = EXCLUDED.confidence
	`, link.OwnerID, link.ListingID, string(link.MatchType), link.Confidence)
	if err != nil {
		return fmt.Errorf("postgres: upsert link owner=%d listing=%d: %w",
			link.OwnerID, link.ListingID, err)
	}
	return nil
}

// TopOwnersByRisk returns up to limit owners ordered by risk score descending.
func (s *Store) TopOwnersByRisk(ctx context.Context, limit int) ([]*models.Owner, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+ownerColumns+` FROM owners ORDER BY risk_score DESC, id LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: top owners: %w", err)
	}
	defer rows.Close()

	var owners []*models.Owner
	for rows.Next() {
		o, err := scanOwner(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan owner: %w", err)
		}
		owners = append(owners, o)
	}
	return owners, rows.Err()
}

// ─── RiskScorer ──────────────────────────────────────────────────────────────

// Recalculate invokes the calculate_owner_risk_score procedure for one owner.
func (s *Store) Recalculate(ctx context.Context, ownerID int64) error {
	if _, err := s.db.ExecContext(ctx, `SELECT calculate_owner_risk_score($1)`, ownerID); err != nil {
		return fmt.Errorf("postgres: risk score for owner %d: %w", ownerID, err)
	}
	return nil
}

// ─── ListingWriter ───────────────────────────────────────────────────────────

// UpsertListings writes scraped listings, keyed on url. Reruns refresh the
// mutable fields and reactivate the listing.
func (s *Store) UpsertListings(ctx context.Context, listings []*models.RawListing) error {
	for _, raw := range listings {
		rawData := map[string]string{}
		if raw.Phone != "" {
			rawData["phone"] = raw.Phone
		}
		rawJSON, err := json.Marshal(rawData)
		if err != nil {
			return fmt.Errorf("postgres: marshal raw_data for %q: %w", raw.URL, err)
		}

		_, err = s.db.ExecContext(ctx, `
			INSERT INTO listings (platform, title, price, url, host_id, host_name, raw_data, is_active, scraped_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, TRUE, $8)
			ON CONFLICT (url) DO UPDATE SET
				title      = EXCLUDED.title,
				price      = EXCLUDED.price,
				host_id    = EXCLUDED.host_id,
				host_name  = EXCLUDED.host_name,
				raw_data   = EXCLUDED.raw_data,
				is_active  = TRUE,
				scraped_at = EXCLUDED.scraped_at
		`,
			raw.Platform, raw.Title, parseListingPrice(raw.RawPrice), raw.URL,
			raw.HostID, raw.HostName, string(rawJSON), raw.ScrapedAt,
		)
		if err != nil {
			return fmt.Errorf("postgres: upsert listing %q: %w", raw.URL, err)
		}
	}
	return nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOwner(row rowScanner) (*models.Owner, error) {
	o := &models.Owner{}
	err := row.Scan(
		&o.ID, &o.PrimaryPhone, &o.PrimaryHostID,
		pq.Array(&o.Names), pq.Array(&o.HostIDs), pq.Array(&o.Platforms),
		&o.ListingCount, &o.AvgPricePerNight, &o.EstimatedMonthlyRevenue,
		&o.RiskScore, &o.FirstSeenAt, &o.LastSeenAt,
	)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func identityColumn(matchType models.MatchType) (string, error) {
	switch matchType {
	case models.MatchPhone:
		return "primary_phone", nil
	case models.MatchHostID:
		return "primary_host_id", nil
	default:
		return "", fmt.Errorf("postgres: unknown match type %q", matchType)
	}
}
