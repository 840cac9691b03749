package services

import (
	"sort"

	"rental-intel/models"
)

// BuildClusters groups active listings into owner clusters. Two passes,
// and the order matters: phone groups are built first and claim their
// listings, then the remaining unclaimed listings are grouped by
// platform:host_id. A listing therefore participates in at most one
// cluster per run.
//
// Output is deterministic — phone clusters first, each pass sorted by
// identifier.
func BuildClusters(listings []*models.Listing) []*models.OwnerCluster {
	byPhone := make(map[string][]*models.Listing)
	for _, l := range listings {
		if phone := ExtractPhone(l); phone != "" {
			byPhone[phone] = append(byPhone[phone], l)
		}
	}

	clusters := make([]*models.OwnerCluster, 0, len(byPhone))
	claimed := make(map[int64]struct{})

	// Singleton phone groups are kept: an owner record exists even for a
	// not-yet-confirmed multi-property operator, so later runs can grow
	// the cluster instead of starting from nothing.
	for _, phone := range sortedKeys(byPhone) {
		group := byPhone[phone]
		for _, l := range group {
			claimed[l.ID] = struct{}{}
		}
		clusters = append(clusters, &models.OwnerCluster{
			MatchType:  models.MatchPhone,
			Identifier: phone,
			Listings:   group,
		})
	}

	byHost := make(map[string][]*models.Listing)
	for _, l := range listings {
		if _, taken := claimed[l.ID]; taken {
			continue
		}
		if key := ExtractHostKey(l); key != "" {
			byHost[key] = append(byHost[key], l)
		}
	}

	for _, key := range sortedKeys(byHost) {
		clusters = append(clusters, &models.OwnerCluster{
			MatchType:  models.MatchHostID,
			Identifier: key,
			Listings:   byHost[key],
		})
	}

	return clusters
}

func sortedKeys(groups map[string][]*models.Listing) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
