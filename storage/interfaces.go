package storage

import (
	"context"

	"rental-intel/models"
)

// ListingSource provides the active listings a resolution run reads.
// The engine never mutates listings.
type ListingSource interface {
	FetchActiveListings(ctx context.Context) ([]*models.Listing, error)
	CountActiveListings(ctx context.Context) (int, error)
}

// OwnerStore persists detected owners and their listing links.
// Every write is an upsert keyed on a unique constraint, so reruns and
// runs resumed after a partial failure are safe.
type OwnerStore interface {
	// FindOwner looks up an owner by its identity key (primary_phone for
	// phone clusters, primary_host_id for host-id clusters). Returns
	// (nil, nil) when no owner matches.
	FindOwner(ctx context.Context, matchType models.MatchType, identifier string) (*models.Owner, error)
	InsertOwner(ctx context.Context, o *models.Owner) (int64, error)
	UpdateOwner(ctx context.Context, o *models.Owner) error
	UpsertLink(ctx context.Context, link models.OwnerListingLink) error
	TopOwnersByRisk(ctx context.Context, limit int) ([]*models.Owner, error)
}

// RiskScorer recomputes the derived risk score for an owner after its
// linkage changed. Failures leave the previous score in place.
type RiskScorer interface {
	Recalculate(ctx context.Context, ownerID int64) error
}

// ListingWriter is the ingest-side sink the scraper writes into.
type ListingWriter interface {
	UpsertListings(ctx context.Context, listings []*models.RawListing) error
}
