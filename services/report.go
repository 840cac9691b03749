package services

import (
	"context"
	"fmt"
	"strings"

	"rental-intel/models"
	"rental-intel/storage"
	"rental-intel/utils"
)

// highRiskThreshold is the risk score (out of 100) above which an owner is
// counted as high risk in the report.
const highRiskThreshold = 50

// topOperatorCount caps the per-operator detail rows in the report.
const topOperatorCount = 10

// ReportService builds the ranked owner intelligence summary. It is a pure
// read-side projection — no clustering logic lives here.
type ReportService struct {
	owners   storage.OwnerStore
	listings storage.ListingSource
	logger   *utils.Logger
	limit    int
}

// NewReportService creates a ReportService reading up to limit owners.
func NewReportService(owners storage.OwnerStore, listings storage.ListingSource, logger *utils.Logger, limit int) *ReportService {
	return &ReportService{owners: owners, listings: listings, logger: logger, limit: limit}
}

// Generate reads the top owners by risk score and computes the summary.
func (s *ReportService) Generate(ctx context.Context) (*models.OwnerReport, error) {
	owners, err := s.owners.TopOwnersByRisk(ctx, s.limit)
	if err != nil {
		return nil, fmt.Errorf("report: top owners: %w", err)
	}

	totalListings, err := s.listings.CountActiveListings(ctx)
	if err != nil {
		return nil, fmt.Errorf("report: count active listings: %w", err)
	}

	report := &models.OwnerReport{
		TotalOwners:   len(owners),
		TotalListings: totalListings,
		TopOperators:  make([]models.TopOperator, 0, topOperatorCount),
	}

	var linkedListings int
	for _, o := range owners {
		linkedListings += o.ListingCount
		if o.ListingCount > 1 {
			report.MultiPropertyOwners++
		}
		if o.RiskScore >= highRiskThreshold {
			report.HighRiskOwners++
		}
	}
	if totalListings > 0 {
		report.CoverageRate = float64(linkedListings) / float64(totalListings)
	}

	for _, o := range owners {
		if len(report.TopOperators) == topOperatorCount {
			break
		}
		report.TopOperators = append(report.TopOperators, models.TopOperator{
			Phone:                   o.PrimaryPhone,
			Names:                   o.Names,
			Platforms:               o.Platforms,
			ListingCount:            o.ListingCount,
			RiskScore:               o.RiskScore,
			EstimatedMonthlyRevenue: o.EstimatedMonthlyRevenue,
		})
	}

	return report, nil
}

// Print renders the report for terminal consumption.
func (s *ReportService) Print(r *models.OwnerReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  OWNER INTELLIGENCE REPORT\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Total owners detected    : \033[1m%d\033[0m\n", r.TotalOwners)
	fmt.Printf("  Multi-property operators : \033[1m%d\033[0m\n", r.MultiPropertyOwners)
	fmt.Printf("  High risk owners (%d+)   : \033[1m%d\033[0m\n", highRiskThreshold, r.HighRiskOwners)
	fmt.Printf("  Total active listings    : \033[1m%d\033[0m\n", r.TotalListings)
	fmt.Printf("  Owner coverage           : \033[1m%.1f%%\033[0m\n", r.CoverageRate*100)
	fmt.Println()

	fmt.Printf("\033[1;33m  Top Operators by Risk\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.TopOperators) == 0 {
		fmt.Printf("  No owners detected yet — run detect first\n")
	}
	for i, op := range r.TopOperators {
		name := "Unknown"
		if len(op.Names) > 0 {
			name = strings.Join(truncateSlice(op.Names, 2), ", ")
		}
		phone := op.Phone
		if phone == "" {
			phone = "No phone"
		}
		revenue := "N/A"
		if op.EstimatedMonthlyRevenue > 0 {
			revenue = fmt.Sprintf("%.0f XOF/mo", op.EstimatedMonthlyRevenue)
		}

		fmt.Printf("\n  \033[1m%d. %s\033[0m\n", i+1, truncate(name, 44))
		fmt.Printf("     Phone     : %s\n", phone)
		fmt.Printf("     Platforms : %s\n", strings.Join(op.Platforms, ", "))
		fmt.Printf("     Listings  : %d | Risk: \033[1;31m%.0f/100\033[0m\n", op.ListingCount, op.RiskScore)
		fmt.Printf("     Est. rev. : \033[1;32m%s\033[0m\n", revenue)
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

func truncateSlice(s []string, max int) []string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
