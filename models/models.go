package models

import "time"

// RawListing holds unprocessed scraped data directly from the browser.
// This is what the scraper hands to the listing store.
type RawListing struct {
	Platform  string
	Title     string
	RawPrice  string
	URL       string
	HostName  string
	HostID    string
	Phone     string
	ScrapedAt time.Time
}

// Listing is one stored property record as read back from the listing store.
// The resolution engine consumes it read-only.
type Listing struct {
	ID       int64
	Platform string
	Title    string
	HostID   string
	HostName string
	Price    float64
	RawData  map[string]any
	IsActive bool
}

// MatchType identifies which identity signal formed an owner cluster.
type MatchType string

const (
	MatchPhone  MatchType = "phone"
	MatchHostID MatchType = "host_id"
)

// OwnerCluster is an ephemeral grouping of listings sharing one identity
// signal, computed fresh on every resolution run.
type OwnerCluster struct {
	MatchType  MatchType
	Identifier string
	Listings   []*Listing
}

// ListingIDs returns the ids of the cluster's member listings.
func (c *OwnerCluster) ListingIDs() []int64 {
	ids := make([]int64, 0, len(c.Listings))
	for _, l := range c.Listings {
		ids = append(ids, l.ID)
	}
	return ids
}

// OwnerProfile holds the derived attributes computed for one cluster.
// All of these fields are overwritten on the owner record every run.
type OwnerProfile struct {
	Names                   []string
	HostIDs                 []string
	Platforms               []string
	ListingCount            int
	AvgPricePerNight        float64
	EstimatedMonthlyRevenue float64
}

// Owner is a persisted cluster representing one inferred real-world operator.
// Exactly one of PrimaryPhone / PrimaryHostID is set, depending on which
// signal keyed the cluster. Owners are never deleted by the engine.
type Owner struct {
	ID                      int64     `json:"id"`
	PrimaryPhone            string    `json:"primary_phone,omitempty"`
	PrimaryHostID           string    `json:"primary_host_id,omitempty"`
	Names                   []string  `json:"names"`
	HostIDs                 []string  `json:"host_ids"`
	Platforms               []string  `json:"platforms"`
	ListingCount            int       `json:"listing_count"`
	AvgPricePerNight        float64   `json:"avg_price_per_night"`
	EstimatedMonthlyRevenue float64   `json:"estimated_monthly_revenue"`
	RiskScore               float64   `json:"risk_score"`
	FirstSeenAt             time.Time `json:"first_seen_at"`
	LastSeenAt              time.Time `json:"last_seen_at"`
}

// OwnerListingLink joins an owner to one of its listings. Unique on
// (OwnerID, ListingID) so repeated runs never duplicate links.
type OwnerListingLink struct {
	OwnerID    int64
	ListingID  int64
	MatchType  MatchType
	Confidence float64
}

// ClusterResult records the outcome of reconciling a single cluster.
// A failed cluster carries its error here instead of aborting the run.
type ClusterResult struct {
	MatchType  MatchType
	Identifier string
	OwnerID    int64
	Created    bool
	Err        error
}

// DetectionStats summarizes one full resolution run.
type DetectionStats struct {
	TotalOwners    int `json:"total_owners"`
	MultiProperty  int `json:"multi_property"`
	NewOwners      int `json:"new_owners"`
	UpdatedOwners  int `json:"updated_owners"`
	FailedClusters int `json:"failed_clusters"`
}

// TopOperator is one row of the ranked intelligence summary.
type TopOperator struct {
	Phone                   string   `json:"phone,omitempty"`
	Names                   []string `json:"names"`
	Platforms               []string `json:"platforms"`
	ListingCount            int      `json:"listing_count"`
	RiskScore               float64  `json:"risk_score"`
	EstimatedMonthlyRevenue float64  `json:"estimated_monthly_revenue"`
}

// OwnerReport is the read-side projection over persisted owners.
type OwnerReport struct {
	TotalOwners         int           `json:"total_owners"`
	MultiPropertyOwners int           `json:"multi_property_owners"`
	HighRiskOwners      int           `json:"high_risk_owners"`
	TotalListings       int           `json:"total_listings"`
	CoverageRate        float64       `json:"coverage_rate"`
	TopOperators        []TopOperator `json:"top_operators"`
}
