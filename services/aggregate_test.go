package services

import (
	"reflect"
	"testing"

	"rental-intel/models"
)

func TestAggregateClusterRevenueEstimate(t *testing.T) {
	cluster := &models.OwnerCluster{
		MatchType:  models.MatchPhone,
		Identifier: "+221771234567",
		Listings: []*models.Listing{
			{ID: 1, Platform: "airbnb", Price: 100},
			{ID: 2, Platform: "airbnb", Price: 150},
			{ID: 3, Platform: "airbnb", Price: 50},
		},
	}

	p := AggregateCluster(cluster)
	if p.AvgPricePerNight != 100 {
		t.Errorf("AvgPricePerNight: got %.2f, want 100", p.AvgPricePerNight)
	}
	if p.EstimatedMonthlyRevenue != 4500 {
		t.Errorf("EstimatedMonthlyRevenue: got %.2f, want 4500", p.EstimatedMonthlyRevenue)
	}
}

func TestAggregateClusterSkipsNonPositivePrices(t *testing.T) {
	cluster := &models.OwnerCluster{Listings: []*models.Listing{
		{ID: 1, Platform: "airbnb", Price: 0},
		{ID: 2, Platform: "airbnb", Price: -5},
		{ID: 3, Platform: "airbnb", Price: 60},
	}}

	p := AggregateCluster(cluster)
	if p.AvgPricePerNight != 60 {
		t.Errorf("AvgPricePerNight: got %.2f, want 60", p.AvgPricePerNight)
	}
	// Revenue still scales with the full listing count.
	if p.EstimatedMonthlyRevenue != 60*3*15 {
		t.Errorf("EstimatedMonthlyRevenue: got %.2f, want %.2f", p.EstimatedMonthlyRevenue, float64(60*3*15))
	}
}

func TestAggregateClusterNoPrices(t *testing.T) {
	cluster := &models.OwnerCluster{Listings: []*models.Listing{
		{ID: 1, Platform: "airbnb"},
	}}

	p := AggregateCluster(cluster)
	if p.AvgPricePerNight != 0 || p.EstimatedMonthlyRevenue != 0 {
		t.Errorf("expected zero price stats, got avg=%.2f revenue=%.2f",
			p.AvgPricePerNight, p.EstimatedMonthlyRevenue)
	}
}

func TestAggregateClusterSets(t *testing.T) {
	cluster := &models.OwnerCluster{Listings: []*models.Listing{
		{ID: 1, Platform: "airbnb", HostID: "h1", HostName: "  Awa "},
		{ID: 2, Platform: "airbnb", HostID: "h1", HostName: "Awa Diop"},
		{ID: 3, Platform: "booking", HostID: "b1", HostName: "Awa"},
		{ID: 4, Platform: "expat-dakar", HostName: "   "},
	}}

	p := AggregateCluster(cluster)

	if want := []string{"Awa", "Awa Diop"}; !reflect.DeepEqual(p.Names, want) {
		t.Errorf("Names: got %v, want %v", p.Names, want)
	}
	if want := []string{"airbnb", "booking", "expat-dakar"}; !reflect.DeepEqual(p.Platforms, want) {
		t.Errorf("Platforms: got %v, want %v", p.Platforms, want)
	}
	if want := []string{"airbnb:h1", "booking:b1"}; !reflect.DeepEqual(p.HostIDs, want) {
		t.Errorf("HostIDs: got %v, want %v", p.HostIDs, want)
	}
	if p.ListingCount != 4 {
		t.Errorf("ListingCount: got %d, want 4", p.ListingCount)
	}
}
