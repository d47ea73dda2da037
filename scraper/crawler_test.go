package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"olx_harvester/config"
	"olx_harvester/httputil"
	"olx_harvester/models"
	"olx_harvester/storage"
)

func testClients(timeout time.Duration) *httputil.Clients {
	cfg := &config.Config{
		UserAgent: "harvester-test",
		Crawl:     config.EngineConfig{Timeout: timeout},
		Detail:    config.EngineConfig{Timeout: timeout},
	}
	return httputil.NewClients(cfg)
}

func TestHarvestDistrict_StopsOnEmptyPage(t *testing.T) {
	listing := loadFixture(t, "listing_page.html")
	empty := loadFixture(t, "listing_page_empty.html")

	var maxPageSeen int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		if r.URL.Query().Get("search[district_id]") != "26" {
			t.Errorf("unexpected district in query: %s", r.URL.RawQuery)
		}
		switch page {
		case "1":
			maxPageSeen = 1
			w.Write(listing)
		case "2":
			maxPageSeen = 2
			w.Write(empty)
		default:
			t.Errorf("crawler requested page %s past the empty page", page)
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	outDir := t.TempDir()
	crawler, err := NewCrawler(config.EngineConfig{MaxPages: 10}, testClients(5*time.Second), srv.URL, outDir)
	if err != nil {
		t.Fatalf("new crawler: %v", err)
	}

	stats, err := crawler.HarvestDistrict(context.Background(), models.District{ID: 26, Name: "yakkasarai"})
	if err != nil {
		t.Fatalf("harvest failed: %v", err)
	}
	if maxPageSeen != 2 {
		t.Fatalf("expected crawl to stop after the empty page, last page seen %d", maxPageSeen)
	}
	if stats.PagesSeen != 2 {
		t.Fatalf("expected 2 pages seen, got %d", stats.PagesSeen)
	}
	if stats.Listings != 2 {
		t.Fatalf("expected 2 valid listings, got %d", stats.Listings)
	}
	if stats.Dropped != 1 {
		t.Fatalf("expected 1 dropped card, got %d", stats.Dropped)
	}

	rows, err := storage.ReadSummaries(filepath.Join(outDir, "yakkasarai.csv"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows in output, got %d", len(rows))
	}
	for _, row := range rows {
		if row.DistrictID != 26 || row.DistrictName != "yakkasarai" {
			t.Fatalf("district fields not stamped: %+v", row)
		}
	}
}

func TestHarvestDistrict_HTTPErrorEndsBenignly(t *testing.T) {
	listing := loadFixture(t, "listing_page.html")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			w.Write(listing)
			return
		}
		http.Error(w, "no more pages", http.StatusForbidden)
	}))
	defer srv.Close()

	outDir := t.TempDir()
	crawler, err := NewCrawler(config.EngineConfig{MaxPages: 5}, testClients(5*time.Second), srv.URL, outDir)
	if err != nil {
		t.Fatalf("new crawler: %v", err)
	}

	stats, err := crawler.HarvestDistrict(context.Background(), models.District{ID: 12, Name: "mirzo-ulugbek"})
	if err != nil {
		t.Fatalf("http error must not fail the district: %v", err)
	}
	if stats.PagesSeen != 1 {
		t.Fatalf("expected 1 page seen, got %d", stats.PagesSeen)
	}

	rows, err := storage.ReadSummaries(filepath.Join(outDir, "mirzo-ulugbek.csv"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected the first page's rows kept, got %d", len(rows))
	}
}

func TestHarvestDistrict_RespectsMaxPages(t *testing.T) {
	listing := loadFixture(t, "listing_page.html")

	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write(listing)
	}))
	defer srv.Close()

	crawler, err := NewCrawler(config.EngineConfig{MaxPages: 3}, testClients(5*time.Second), srv.URL, t.TempDir())
	if err != nil {
		t.Fatalf("new crawler: %v", err)
	}

	if _, err := crawler.HarvestDistrict(context.Background(), models.District{ID: 5, Name: "chilanzar"}); err != nil {
		t.Fatalf("harvest failed: %v", err)
	}
	if requests != 3 {
		t.Fatalf("expected exactly 3 page requests, got %d", requests)
	}
}

func TestListingPathTemplate(t *testing.T) {
	got := fmt.Sprintf(listingPathTemplate, "https://www.olx.uz", 26, 2)
	want := "https://www.olx.uz/nedvizhimost/kvartiry/arenda-dolgosrochnaya/tashkent/?search[district_id]=26&currency=UZS&page=2"
	if got != want {
		t.Fatalf("url template mismatch:\n got %s\nwant %s", got, want)
	}
}
