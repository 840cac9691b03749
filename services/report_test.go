package services

import (
	"context"
	"testing"

	"rental-intel/models"
	"rental-intel/utils"
)

func reportFixtures() *fakeOwnerStore {
	store := newFakeOwnerStore()
	store.topOwners = []*models.Owner{
		{ID: 1, PrimaryPhone: "+221771111111", Names: []string{"Awa"}, Platforms: []string{"airbnb"},
			ListingCount: 6, RiskScore: 80, EstimatedMonthlyRevenue: 900000},
		{ID: 2, PrimaryPhone: "+221772222222", Names: []string{"Moussa"}, Platforms: []string{"expat-dakar"},
			ListingCount: 3, RiskScore: 55, EstimatedMonthlyRevenue: 300000},
		{ID: 3, PrimaryHostID: "airbnb:h9", Names: []string{"Fatou"}, Platforms: []string{"airbnb"},
			ListingCount: 1, RiskScore: 10},
	}
	return store
}

func TestReportCounts(t *testing.T) {
	source := &fakeListingSource{listings: make([]*models.Listing, 20)}
	svc := NewReportService(reportFixtures(), source, utils.NewLoggerAt(utils.LevelError), 100)

	r, err := svc.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if r.TotalOwners != 3 {
		t.Errorf("TotalOwners: got %d, want 3", r.TotalOwners)
	}
	if r.MultiPropertyOwners != 2 {
		t.Errorf("MultiPropertyOwners: got %d, want 2", r.MultiPropertyOwners)
	}
	if r.HighRiskOwners != 2 {
		t.Errorf("HighRiskOwners: got %d, want 2", r.HighRiskOwners)
	}
	if r.TotalListings != 20 {
		t.Errorf("TotalListings: got %d, want 20", r.TotalListings)
	}
}

func TestReportCoverageRate(t *testing.T) {
	source := &fakeListingSource{listings: make([]*models.Listing, 20)}
	svc := NewReportService(reportFixtures(), source, utils.NewLoggerAt(utils.LevelError), 100)

	r, err := svc.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	// 6 + 3 + 1 linked listings over 20 active.
	if want := 0.5; r.CoverageRate != want {
		t.Errorf("CoverageRate: got %.3f, want %.3f", r.CoverageRate, want)
	}
}

func TestReportNoListings(t *testing.T) {
	svc := NewReportService(newFakeOwnerStore(), &fakeListingSource{}, utils.NewLoggerAt(utils.LevelError), 100)

	r, err := svc.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if r.CoverageRate != 0 {
		t.Errorf("CoverageRate with no listings: got %.3f, want 0", r.CoverageRate)
	}
	if len(r.TopOperators) != 0 {
		t.Errorf("TopOperators: got %d, want 0", len(r.TopOperators))
	}
}

func TestReportTopOperatorsRanked(t *testing.T) {
	source := &fakeListingSource{listings: make([]*models.Listing, 10)}
	svc := NewReportService(reportFixtures(), source, utils.NewLoggerAt(utils.LevelError), 100)

	r, err := svc.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if len(r.TopOperators) != 3 {
		t.Fatalf("TopOperators: got %d, want 3", len(r.TopOperators))
	}
	if r.TopOperators[0].Phone != "+221771111111" || r.TopOperators[0].RiskScore != 80 {
		t.Errorf("top operator: %+v", r.TopOperators[0])
	}
	if r.TopOperators[2].Phone != "" {
		t.Errorf("host-id-keyed operator should have no phone, got %q", r.TopOperators[2].Phone)
	}
}

func TestReportCapsTopOperators(t *testing.T) {
	store := newFakeOwnerStore()
	for i := 0; i < 15; i++ {
		store.topOwners = append(store.topOwners, &models.Owner{
			ID: int64(i + 1), PrimaryPhone: "+22177000000" + string(rune('0'+i%10)), ListingCount: 1,
		})
	}
	source := &fakeListingSource{listings: make([]*models.Listing, 15)}
	svc := NewReportService(store, source, utils.NewLoggerAt(utils.LevelError), 100)

	r, err := svc.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(r.TopOperators) != topOperatorCount {
		t.Errorf("TopOperators: got %d, want %d", len(r.TopOperators), topOperatorCount)
	}
}
