package naver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/plateful/placepipe/place"
)

// ErrNotFound is returned when the platform has no record for a query —
// a missing base record on the summary endpoint, or an empty search.
var ErrNotFound = errors.New("naver: place not found")

// SearchResult is one entry from the search-by-name endpoint. Richer than
// place.Candidate: the search tier of the resolver needs enough fields to
// build a complete detail record.
type SearchResult struct {
	ID          string
	Name        string
	Category    string
	Address     string
	RoadAddress string
	Phone       string
	X           string // longitude, as served (string)
	Y           string // latitude, as served (string)
	Thumbs      []string
}

// Candidate reduces the result to the matcher's view.
func (r SearchResult) Candidate() place.Candidate {
	addr := r.Address
	if addr == "" {
		addr = r.RoadAddress
	}
	return place.Candidate{ExternalID: r.ID, Name: r.Name, Address: addr}
}

// Detail expands the result into a complete detail record with an empty
// menu list.
func (r SearchResult) Detail() *place.Detail {
	lng, _ := strconv.ParseFloat(r.X, 64)
	lat, _ := strconv.ParseFloat(r.Y, 64)
	return &place.Detail{
		ExternalID:  r.ID,
		Name:        r.Name,
		Category:    r.Category,
		Address:     r.Address,
		RoadAddress: r.RoadAddress,
		Phone:       r.Phone,
		Lat:         lat,
		Lng:         lng,
		Images:      place.DedupeImages(r.Thumbs),
	}
}

// ClientConfig configures the platform HTTP client.
type ClientConfig struct {
	// Timeout per request. Default: 15s.
	Timeout time.Duration
	// UserAgent sent with every request. Default: a desktop browser string;
	// the platform rejects obviously non-browser agents.
	UserAgent string
	// BaseURL overrides the API base, for tests. Default: production.
	BaseURL string
}

func (c *ClientConfig) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	if c.UserAgent == "" {
		c.UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	}
	if c.BaseURL == "" {
		c.BaseURL = apiBase
	}
}

// Client queries the platform's JSON endpoints directly, without a browser.
type Client struct {
	http   *http.Client
	config ClientConfig
}

// NewClient creates a platform API client.
func NewClient(cfg ClientConfig) *Client {
	cfg.defaults()
	return &Client{
		http:   &http.Client{Timeout: cfg.Timeout},
		config: cfg,
	}
}

// Detail queries the summary-by-identifier endpoint. Returns ErrNotFound
// when the response carries no base record.
func (c *Client) Detail(ctx context.Context, externalID string) (*place.Detail, error) {
	endpoint := c.config.BaseURL + "/place/summary/" + url.PathEscape(externalID) + "?lang=ko"
	raw, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("naver: detail %s: %w", externalID, err)
	}

	detail := detailFromSummary(raw, externalID)
	if detail == nil {
		return nil, fmt.Errorf("naver: detail %s: %w", externalID, ErrNotFound)
	}
	return detail, nil
}

// Search queries the search-by-name endpoint.
func (c *Client) Search(ctx context.Context, query string) ([]SearchResult, error) {
	endpoint := c.config.BaseURL + "/search/allSearch?query=" + url.QueryEscape(query) +
		"&type=all&page=1&displayCount=20&lang=ko"
	raw, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("naver: search %q: %w", query, err)
	}
	return ExtractSearchResults(raw), nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "ko")
	req.Header.Set("Referer", "https://map.naver.com/")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// detailFromSummary builds a Detail from a summary-endpoint payload. The
// base record has appeared both at the top level and under wrapper keys;
// probe each location and require at least a name.
func detailFromSummary(raw []byte, externalID string) *place.Detail {
	for _, obj := range decodeObjects(raw) {
		for _, base := range summaryBases(obj) {
			name := digString(base, "name", "title")
			if name == "" {
				continue
			}
			lng, _ := strconv.ParseFloat(digString(base, "x", "longitude"), 64)
			lat, _ := strconv.ParseFloat(digString(base, "y", "latitude"), 64)
			d := &place.Detail{
				ExternalID:  externalID,
				Name:        name,
				Category:    digString(base, "category", "businessCategory"),
				Address:     digString(base, "address", "addr"),
				RoadAddress: digString(base, "roadAddress", "roadAddr"),
				Phone:       digString(base, "phone", "tel"),
				Lat:         lat,
				Lng:         lng,
				Images:      place.DedupeImages(ExtractImages(raw)),
				Menu:        place.NormalizeMenu(ExtractMenu(raw)),
			}
			return d
		}
	}
	return nil
}

func summaryBases(obj map[string]any) []map[string]any {
	bases := []map[string]any{obj}
	for _, keys := range [][]string{{"place"}, {"summary"}, {"data", "place"}} {
		cur := obj
		ok := true
		for _, k := range keys {
			next, isMap := cur[k].(map[string]any)
			if !isMap {
				ok = false
				break
			}
			cur = next
		}
		if ok {
			bases = append(bases, cur)
		}
	}
	return bases
}
