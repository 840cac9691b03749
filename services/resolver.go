// Package services implements the owner entity-resolution engine: signal
// extraction, clustering, aggregation and store reconciliation.
//
// Phone identities and host-id identities are two separate namespaces.
// A phone-keyed owner is never merged with a host-id-keyed owner, even when
// later runs reveal shared members — the claimed-listing rule in the cluster
// builder only prevents double-linking, it does not merge owner records.
package services

import (
	"context"
	"fmt"
	"time"

	"rental-intel/models"
	"rental-intel/storage"
	"rental-intel/utils"
)

// Link confidence per signal kind: phone identity is treated as exact,
// host-id identity as strong but platform-scoped.
const (
	phoneConfidence  = 1.0
	hostIDConfidence = 0.9
)

// Resolver runs the full resolution pass: read active listings, build
// clusters, reconcile each cluster into the owner store, trigger risk
// rescoring. One pass is single-threaded and sequential; each cluster is
// reconciled independently, so a failure on one never aborts the rest.
type Resolver struct {
	listings storage.ListingSource
	owners   storage.OwnerStore
	risk     storage.RiskScorer
	logger   *utils.Logger

	now func() time.Time
}

// NewResolver constructs a Resolver over the given collaborators.
func NewResolver(listings storage.ListingSource, owners storage.OwnerStore, risk storage.RiskScorer, logger *utils.Logger) *Resolver {
	return &Resolver{
		listings: listings,
		owners:   owners,
		risk:     risk,
		logger:   logger,
		now:      time.Now,
	}
}

// Run executes one full resolution pass and returns the aggregated stats
// plus the per-cluster results. Only a listing-fetch failure aborts the
// run; per-cluster failures are recorded and skipped.
func (r *Resolver) Run(ctx context.Context) (*models.DetectionStats, []models.ClusterResult, error) {
	listings, err := r.listings.FetchActiveListings(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("resolver: fetch active listings: %w", err)
	}
	r.logger.Info("[resolver] Analyzing %d active listings", len(listings))

	clusters := BuildClusters(listings)
	r.logger.Info("[resolver] Found %d owner clusters", len(clusters))

	stats := &models.DetectionStats{}
	results := make([]models.ClusterResult, 0, len(clusters))

	for _, cluster := range clusters {
		res := r.reconcile(ctx, cluster)
		results = append(results, res)

		if res.Err != nil {
			stats.FailedClusters++
			r.logger.Error("[resolver] Cluster %s %q failed: %v — continuing",
				cluster.MatchType, cluster.Identifier, res.Err)
			continue
		}

		stats.TotalOwners++
		if len(cluster.Listings) > 1 {
			stats.MultiProperty++
		}
		if res.Created {
			stats.NewOwners++
		} else {
			stats.UpdatedOwners++
		}
	}

	r.logger.Info("[resolver] Pass complete — owners=%d multi=%d new=%d updated=%d failed=%d",
		stats.TotalOwners, stats.MultiProperty, stats.NewOwners, stats.UpdatedOwners, stats.FailedClusters)
	return stats, results, nil
}

// reconcile writes one cluster to the owner store: update the existing owner
// matched by identity key or insert a new one, then upsert one link per
// member listing and trigger a risk rescore.
func (r *Resolver) reconcile(ctx context.Context, cluster *models.OwnerCluster) models.ClusterResult {
	res := models.ClusterResult{MatchType: cluster.MatchType, Identifier: cluster.Identifier}

	profile := AggregateCluster(cluster)
	now := r.now()

	existing, err := r.owners.FindOwner(ctx, cluster.MatchType, cluster.Identifier)
	if err != nil {
		res.Err = fmt.Errorf("find owner: %w", err)
		return res
	}

	owner := &models.Owner{
		Names:                   profile.Names,
		HostIDs:                 profile.HostIDs,
		Platforms:               profile.Platforms,
		ListingCount:            profile.ListingCount,
		AvgPricePerNight:        profile.AvgPricePerNight,
		EstimatedMonthlyRevenue: profile.EstimatedMonthlyRevenue,
		LastSeenAt:              now,
	}
	switch cluster.MatchType {
	case models.MatchPhone:
		owner.PrimaryPhone = cluster.Identifier
	case models.MatchHostID:
		owner.PrimaryHostID = cluster.Identifier
	}

	if existing != nil {
		owner.ID = existing.ID
		owner.FirstSeenAt = existing.FirstSeenAt
		if err := r.owners.UpdateOwner(ctx, owner); err != nil {
			res.Err = fmt.Errorf("update owner: %w", err)
			return res
		}
	} else {
		owner.FirstSeenAt = now
		id, err := r.owners.InsertOwner(ctx, owner)
		if err != nil {
			res.Err = fmt.Errorf("insert owner: %w", err)
			return res
		}
		owner.ID = id
		res.Created = true
	}
	res.OwnerID = owner.ID

	confidence := phoneConfidence
	if cluster.MatchType == models.MatchHostID {
		confidence = hostIDConfidence
	}
	for _, l := range cluster.Listings {
		link := models.OwnerListingLink{
			OwnerID:    owner.ID,
			ListingID:  l.ID,
			MatchType:  cluster.MatchType,
			Confidence: confidence,
		}
		if err := r.owners.UpsertLink(ctx, link); err != nil {
			res.Err = fmt.Errorf("upsert link for listing %d: %w", l.ID, err)
			return res
		}
	}

	// Best effort: a stale risk score is corrected on the next successful
	// run, so a scorer failure never blocks link creation.
	if err := r.risk.Recalculate(ctx, owner.ID); err != nil {
		r.logger.Warn("[resolver] Risk rescore for owner %d failed: %v", owner.ID, err)
	}

	return res
}
