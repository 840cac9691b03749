package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"rental-intel/models"
	"rental-intel/services"
	"rental-intel/utils"
)

type stubOwnerStore struct {
	owners []*models.Owner
}

func (s *stubOwnerStore) FindOwner(context.Context, models.MatchType, string) (*models.Owner, error) {
	return nil, nil
}
func (s *stubOwnerStore) InsertOwner(context.Context, *models.Owner) (int64, error) { return 0, nil }
func (s *stubOwnerStore) UpdateOwner(context.Context, *models.Owner) error          { return nil }
func (s *stubOwnerStore) UpsertLink(context.Context, models.OwnerListingLink) error { return nil }
func (s *stubOwnerStore) TopOwnersByRisk(_ context.Context, limit int) ([]*models.Owner, error) {
	if len(s.owners) > limit {
		return s.owners[:limit], nil
	}
	return s.owners, nil
}

type stubListingSource struct {
	count int
}

func (s *stubListingSource) FetchActiveListings(context.Context) ([]*models.Listing, error) {
	return nil, nil
}
func (s *stubListingSource) CountActiveListings(context.Context) (int, error) {
	return s.count, nil
}

func testServer() *Server {
	store := &stubOwnerStore{owners: []*models.Owner{
		{ID: 1, PrimaryPhone: "+221771111111", Names: []string{"Awa"}, ListingCount: 4, RiskScore: 70},
		{ID: 2, PrimaryHostID: "airbnb:h1", Names: []string{"Moussa"}, ListingCount: 1, RiskScore: 10},
	}}
	logger := utils.NewLoggerAt(utils.LevelError)
	report := services.NewReportService(store, &stubListingSource{count: 10}, logger, 100)
	return NewServer(report, store, logger)
}

func TestHealthEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	testServer().Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field: got %q, want ok", body["status"])
	}
}

func TestReportEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	testServer().Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/report", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}

	var report models.OwnerReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.TotalOwners != 2 {
		t.Errorf("TotalOwners: got %d, want 2", report.TotalOwners)
	}
	if report.CoverageRate != 0.5 {
		t.Errorf("CoverageRate: got %.3f, want 0.5", report.CoverageRate)
	}
}

func TestOwnersEndpointLimit(t *testing.T) {
	rec := httptest.NewRecorder()
	testServer().Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/owners?limit=1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}

	var owners []models.Owner
	if err := json.Unmarshal(rec.Body.Bytes(), &owners); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(owners) != 1 {
		t.Errorf("owners: got %d, want 1", len(owners))
	}
}

func TestOwnersEndpointRejectsBadLimit(t *testing.T) {
	for _, limit := range []string{"0", "-3", "abc"} {
		rec := httptest.NewRecorder()
		testServer().Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/owners?limit="+limit, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("limit=%s: status got %d, want 400", limit, rec.Code)
		}
	}
}

func TestUnknownMethodRejected(t *testing.T) {
	rec := httptest.NewRecorder()
	testServer().Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/report", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status: got %d, want 405", rec.Code)
	}
}
