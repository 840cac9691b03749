// Package airbnb collects rental listings with host identity fields — the
// ingest side feeding the listing store the resolution engine reads.
package airbnb

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"rental-intel/config"
	"rental-intel/models"
	"rental-intel/services"
	"rental-intel/utils"
)

const platform = "airbnb"

// hostProfileRegexp extracts the numeric host id from a profile URL.
var hostProfileRegexp = regexp.MustCompile(`/users/show/(\d+)`)

// phoneCandidateRegexp finds digit runs long enough to be a phone number in
// free text (descriptions, "contact host" blurbs).
var phoneCandidateRegexp = regexp.MustCompile(`\+?\d[\d\s./-]{7,}\d`)

// Scraper drives search-result pagination and per-listing detail fetches.
type Scraper struct {
	cfg        *config.Config
	logger     *utils.Logger
	pool       *utils.WorkerPool
	visitedURL *utils.URLSet
	retry      *utils.RetryConfig

	mu       sync.Mutex
	listings []*models.RawListing
}

// New creates a ready-to-use Airbnb Scraper.
func New(cfg *config.Config, logger *utils.Logger) *Scraper {
	return &Scraper{
		cfg:        cfg,
		logger:     logger,
		pool:       utils.NewWorkerPool(cfg.MaxConcurrency, cfg.RateLimitMs),
		visitedURL: utils.NewURLSet(),
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
		listings: make([]*models.RawListing, 0),
	}
}

// Scrape walks the configured search URL page by page and enriches every
// listing with host identity from its detail page.
func (s *Scraper) Scrape() ([]*models.RawListing, error) {
	s.logger.Info("[airbnb] Starting scrape — target: %d pages from %s",
		s.cfg.PagesToScrape, s.cfg.SearchURL)

	chromeBin := findChromeBinary(s.cfg.ChromeBin)
	s.logger.Info("[airbnb] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	defer cancelAlloc()

	silentCtx, cancelSilent := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelSilent()
	allocCtx = silentCtx

	currentURL := s.cfg.SearchURL
	for page := 1; page <= s.cfg.PagesToScrape; page++ {
		s.logger.Info("[airbnb] Scraping page %d — URL: %s", page, currentURL)

		pageListings, nextURL, err := s.scrapePage(allocCtx, currentURL, page)
		if err != nil {
			s.logger.Error("[airbnb] Page %d failed: %v", page, err)
			break
		}
		if len(pageListings) == 0 {
			s.logger.Warn("[airbnb] Page %d returned 0 listings — stopping", page)
			break
		}

		s.enrichHosts(allocCtx, pageListings)

		s.mu.Lock()
		s.listings = append(s.listings, pageListings...)
		s.mu.Unlock()

		s.logger.Info("[airbnb] Page %d done — collected %d listings so far", page, len(s.listings))

		if nextURL == "" {
			break
		}
		currentURL = nextURL
		time.Sleep(time.Duration(s.cfg.RateLimitMs) * time.Millisecond)
	}

	s.logger.Info("[airbnb] Scrape complete — total raw listings: %d", len(s.listings))
	return s.listings, nil
}

// scrapePage loads one search results page and extracts listing cards.
func (s *Scraper) scrapePage(allocCtx context.Context, pageURL string, pageNum int) ([]*models.RawListing, string, error) {
	var rawListings []*models.RawListing
	var nextURL string

	err := s.retry.Do(fmt.Sprintf("scrape-page-%d", pageNum), func() error {
		ctx, cancel := chromedp.NewContext(allocCtx)
		defer cancel()

		ctx, cancelTimeout := context.WithTimeout(ctx, 90*time.Second)
		defer cancelTimeout()

		type cardData struct {
			Title string `json:"title"`
			Price string `json:"price"`
			URL   string `json:"url"`
		}

		var cards []cardData
		var nextPageURL string

		err := chromedp.Run(ctx,
			chromedp.Navigate(pageURL),
			chromedp.Sleep(6*time.Second),

			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
			chromedp.Sleep(2*time.Second),

			chromedp.Evaluate(`
				(function() {
					var results = [];
					var limit = `+fmt.Sprintf("%d", s.cfg.ListingsPerPage)+`;
					var seen = {};

					var cards = document.querySelectorAll('[data-testid="card-container"]');
					if (cards.length === 0) {
						cards = document.querySelectorAll('[itemprop="itemListElement"]');
					}

					for (var i = 0; i < cards.length && results.length < limit; i++) {
						var card = cards[i];

						var linkEl = card.querySelector('a[href*="/rooms/"]');
						var url = linkEl ? linkEl.href : '';
						if (!url || seen[url]) continue;
						seen[url] = true;

						var titleEl = card.querySelector('[data-testid="listing-card-title"]');
						var priceEl = card.querySelector('[data-testid="price-availability-row"]') ||
						              card.querySelector('span[class*="price"]');
						var price = '';
						if (priceEl) {
							var match = priceEl.innerText.match(/(\$|F|CFA|€)\s*[\d,]+/);
							price = match ? match[0] : priceEl.innerText.split('\n')[0];
						}

						results.push({
							title: titleEl ? titleEl.innerText.trim() : '',
							price: price,
							url:   url
						});
					}
					return results;
				})()
			`, &cards),

			chromedp.Evaluate(`
				(function() {
					var next = document.querySelector('a[aria-label="Next"]') ||
					           document.querySelector('[data-testid="pagination-next-button"]');
					return next && next.href ? next.href : '';
				})()
			`, &nextPageURL),
		)
		if err != nil {
			return fmt.Errorf("chromedp page scrape: %w", err)
		}

		s.logger.Debug("[airbnb] Page %d — found %d cards", pageNum, len(cards))

		for _, c := range cards {
			if c.URL == "" || !s.visitedURL.Add(c.URL) {
				continue
			}
			rawListings = append(rawListings, &models.RawListing{
				Platform:  platform,
				Title:     c.Title,
				RawPrice:  c.Price,
				URL:       c.URL,
				ScrapedAt: time.Now(),
			})
		}

		nextURL = nextPageURL
		return nil
	})

	return rawListings, nextURL, err
}

// enrichHosts visits each listing's detail page to pull the host profile
// (name and id) and any contact phone exposed in the description.
func (s *Scraper) enrichHosts(allocCtx context.Context, listings []*models.RawListing) {
	for _, listing := range listings {
		l := listing
		if l.URL == "" {
			continue
		}

		s.pool.Submit(func() {
			if err := s.scrapeHostDetails(allocCtx, l); err != nil {
				s.logger.Warn("[airbnb] Detail page failed for %s: %v", l.URL, err)
				return
			}
			s.logger.Debug("[airbnb] Enriched %s — host %q (%s)", l.URL, l.HostName, l.HostID)
		})
	}
	s.pool.Wait()
}

// scrapeHostDetails fills HostName, HostID and Phone on the listing in place.
func (s *Scraper) scrapeHostDetails(allocCtx context.Context, l *models.RawListing) error {
	return s.retry.Do("detail-page", func() error {
		ctx, cancel := chromedp.NewContext(allocCtx)
		defer cancel()

		ctx, cancelTimeout := context.WithTimeout(ctx, 60*time.Second)
		defer cancelTimeout()

		type hostData struct {
			HostName    string `json:"hostName"`
			HostProfile string `json:"hostProfile"`
			Description string `json:"description"`
		}

		var details hostData

		err := chromedp.Run(ctx,
			chromedp.Navigate(l.URL),
			chromedp.Sleep(4*time.Second),

			chromedp.Evaluate(`
				(function() {
					var result = { hostName: '', hostProfile: '', description: '' };

					var hostLink = document.querySelector('a[href*="/users/show/"]');
					if (hostLink) {
						result.hostProfile = hostLink.href;
					}

					var hostEl = document.querySelector('[data-section-id="HOST_OVERVIEW_DEFAULT"] h2') ||
					             document.querySelector('[data-section-id="MEET_YOUR_HOST"] h2');
					if (hostEl) {
						// Headings read "Hosted by Awa" / "Stay with Awa"
						var m = hostEl.innerText.match(/(?:hosted by|stay with)\s+(.+)/i);
						result.hostName = m ? m[1].trim() : hostEl.innerText.trim();
					}

					var descEl = document.querySelector('[data-section-id="DESCRIPTION_DEFAULT"]');
					if (descEl) {
						result.description = descEl.innerText.substring(0, 1000);
					}

					return result;
				})()
			`, &details),
		)
		if err != nil {
			return fmt.Errorf("chromedp detail extract: %w", err)
		}

		l.HostName = details.HostName
		if m := hostProfileRegexp.FindStringSubmatch(details.HostProfile); len(m) == 2 {
			l.HostID = m[1]
		}
		l.Phone = findPhone(details.Description)

		return nil
	})
}

// findPhone scans free text for the first candidate that normalizes to a
// valid local number.
func findPhone(text string) string {
	for _, candidate := range phoneCandidateRegexp.FindAllString(text, -1) {
		if phone := services.NormalizePhone(candidate); phone != "" {
			return phone
		}
	}
	return ""
}

// findChromeBinary locates the Chrome/Chromium binary, preferring the
// configured path.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
