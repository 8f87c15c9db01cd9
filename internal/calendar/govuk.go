package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/username/leave-planner/pkg/dateutil"
	"go.uber.org/zap"
)

const (
	// DefaultGovUKURL is the public bank holidays feed
	DefaultGovUKURL    = "https://www.gov.uk/bank-holidays.json"
	defaultHTTPTimeout = 10 * time.Second
	defaultCacheTTL    = 24 * time.Hour
)

// GovUKSource fetches bank holidays from the gov.uk JSON feed
type GovUKSource struct {
	url        string
	httpClient *http.Client
	logger     *zap.Logger
	cacheTTL   time.Duration

	cacheMu   sync.RWMutex
	cache     map[Region][]BankHoliday
	fetchedAt time.Time
}

// govukDivision represents one division of the gov.uk feed
type govukDivision struct {
	Division string       `json:"division"`
	Events   []govukEvent `json:"events"`
}

type govukEvent struct {
	Title   string `json:"title"`
	Date    string `json:"date"` // YYYY-MM-DD
	Notes   string `json:"notes"`
	Bunting bool   `json:"bunting"`
}

// NewGovUKSource creates a new GovUKSource instance
func NewGovUKSource(url string, cacheTTL time.Duration, logger *zap.Logger) *GovUKSource {
	if url == "" {
		url = DefaultGovUKURL
	}
	if cacheTTL == 0 {
		cacheTTL = defaultCacheTTL
	}

	return &GovUKSource{
		url: url,
		httpClient: &http.Client{
			Timeout: defaultHTTPTimeout,
		},
		logger:   logger,
		cacheTTL: cacheTTL,
	}
}

// Fetch returns every region's holidays, using the cache while it is fresh
func (s *GovUKSource) Fetch(ctx context.Context) (map[Region][]BankHoliday, error) {
	s.cacheMu.RLock()
	if s.cache != nil && time.Since(s.fetchedAt) < s.cacheTTL {
		cached := s.cache
		s.cacheMu.RUnlock()
		s.logger.Debug("Using cached bank holidays")
		return cached, nil
	}
	s.cacheMu.RUnlock()

	data, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}

	s.cacheMu.Lock()
	s.cache = data
	s.fetchedAt = time.Now()
	s.cacheMu.Unlock()

	return data, nil
}

// Holidays returns the holidays of one region for one year
func (s *GovUKSource) Holidays(ctx context.Context, region Region, year int) ([]BankHoliday, error) {
	data, err := s.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	var out []BankHoliday
	for _, h := range data[region.OrDefault()] {
		if h.Date.Year() == year {
			out = append(out, h)
		}
	}
	return out, nil
}

func (s *GovUKSource) fetch(ctx context.Context) (map[Region][]BankHoliday, error) {
	s.logger.Debug("Fetching bank holidays", zap.String("url", s.url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bank holidays: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var feed map[string]govukDivision
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("failed to parse API response: %w", err)
	}

	data := s.parseFeed(feed)

	s.logger.Info("Bank holidays fetched",
		zap.String("url", s.url),
		zap.Int("regions", len(data)))

	return data, nil
}

func (s *GovUKSource) parseFeed(feed map[string]govukDivision) map[Region][]BankHoliday {
	data := make(map[Region][]BankHoliday)

	for _, region := range Regions() {
		division, ok := feed[region.GovUKDivision()]
		if !ok {
			s.logger.Warn("Division missing from feed", zap.String("division", region.GovUKDivision()))
			continue
		}

		holidays := make([]BankHoliday, 0, len(division.Events))
		for _, event := range division.Events {
			date, err := time.Parse(dateutil.Layout, event.Date)
			if err != nil {
				s.logger.Warn("Failed to parse date",
					zap.String("date", event.Date),
					zap.Error(err))
				continue
			}

			name := event.Title
			if event.Notes == "Substitute day" {
				name += " (Substitute)"
			}
			holidays = append(holidays, BankHoliday{Date: date, Name: name})
		}

		data[region] = NewTable(holidays).Holidays()
	}

	return data
}

// ClearCache clears the cache
func (s *GovUKSource) ClearCache() {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	s.cache = nil
	s.fetchedAt = time.Time{}
	s.logger.Info("Bank holiday cache cleared")
}
