package services

import (
	"sort"
	"strings"

	"rental-intel/models"
)

// revenueNightsPerMonth stands in for "nights booked per month at roughly
// 50% occupancy over 30 days". The revenue figure it produces is a
// deliberately crude estimate, not a measured quantity.
const revenueNightsPerMonth = 15

// AggregateCluster computes the derived owner attributes for one cluster.
func AggregateCluster(c *models.OwnerCluster) *models.OwnerProfile {
	names := make(map[string]struct{})
	platforms := make(map[string]struct{})
	hostIDs := make(map[string]struct{})

	var priceTotal float64
	var priceCount int

	for _, l := range c.Listings {
		if name := strings.TrimSpace(l.HostName); name != "" {
			names[name] = struct{}{}
		}
		platforms[l.Platform] = struct{}{}
		if l.HostID != "" {
			hostIDs[l.Platform+":"+l.HostID] = struct{}{}
		}
		if l.Price > 0 {
			priceTotal += l.Price
			priceCount++
		}
	}

	avg := 0.0
	if priceCount > 0 {
		avg = priceTotal / float64(priceCount)
	}

	return &models.OwnerProfile{
		Names:                   setToSlice(names),
		HostIDs:                 setToSlice(hostIDs),
		Platforms:               setToSlice(platforms),
		ListingCount:            len(c.Listings),
		AvgPricePerNight:        avg,
		EstimatedMonthlyRevenue: avg * float64(len(c.Listings)) * revenueNightsPerMonth,
	}
}

func setToSlice(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
