package browse

import (
	"sync"

	"github.com/plateful/placepipe/naver"
	"github.com/plateful/placepipe/place"
)

// maxPayloads bounds how many response bodies one session will process.
// Heavy pages fire hundreds of API calls; everything useful shows up early.
const maxPayloads = 256

// Collector accumulates domain entities extracted from intercepted API
// responses during one scraping session. It is created by the caller and
// passed into the session explicitly, so the data flow stays visible and
// the collector is testable without a live browser.
//
// Ingest runs every shape chain over each payload; a payload that matches
// none of them simply contributes nothing. Drain reads return copies.
type Collector struct {
	mu       sync.Mutex
	payloads int

	images     []string
	menu       []place.MenuItem
	candidates []place.Candidate
}

// NewCollector creates an empty Collector for one session.
func NewCollector() *Collector {
	return &Collector{}
}

// Ingest parses one raw response body and accumulates whatever the shape
// chains find. Parse failures are swallowed — the next response may still
// match.
func (c *Collector) Ingest(raw []byte) {
	if len(raw) == 0 {
		return
	}

	images := naver.ExtractImages(raw)
	menu := naver.ExtractMenu(raw)
	candidates := naver.ExtractCandidates(raw)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.payloads >= maxPayloads {
		return
	}
	c.payloads++
	c.images = append(c.images, images...)
	c.menu = append(c.menu, menu...)
	c.candidates = append(c.candidates, candidates...)
}

// Images drains the accumulated image URLs.
func (c *Collector) Images() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.images))
	copy(out, c.images)
	return out
}

// Menu drains the accumulated menu items.
func (c *Collector) Menu() []place.MenuItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]place.MenuItem, len(c.menu))
	copy(out, c.menu)
	return out
}

// Candidates drains the accumulated search candidates.
func (c *Collector) Candidates() []place.Candidate {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]place.Candidate, len(c.candidates))
	copy(out, c.candidates)
	return out
}
