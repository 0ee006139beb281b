package browse

import (
	"fmt"
	"testing"
)

func TestCollectorAccumulates(t *testing.T) {
	// WHAT: Payloads of different shapes land in their respective buckets
	// across multiple ingests within one session.
	c := NewCollector()
	c.Ingest([]byte(`{"images":[{"url":"https://a.pstatic.net/1.jpg"}]}`))
	c.Ingest([]byte(`{"menus":[{"name":"김치찌개","price":"8,000원"}]}`))
	c.Ingest([]byte(`{"items":[{"id":"9","name":"식당","address":"서울"}]}`))
	c.Ingest([]byte(`not json at all`))
	c.Ingest(nil)

	if got := c.Images(); len(got) != 1 {
		t.Errorf("images = %v", got)
	}
	if got := c.Menu(); len(got) != 1 || got[0].Name != "김치찌개" {
		t.Errorf("menu = %v", got)
	}
	if got := c.Candidates(); len(got) != 1 || got[0].ExternalID != "9" {
		t.Errorf("candidates = %v", got)
	}
}

func TestCollectorPayloadBound(t *testing.T) {
	// WHAT: Ingestion stops after maxPayloads bodies so a pathological page
	// cannot grow the collector without bound.
	c := NewCollector()
	for i := 0; i < maxPayloads+50; i++ {
		c.Ingest([]byte(fmt.Sprintf(`{"thumUrls":["https://a.pstatic.net/%d.jpg"]}`, i)))
	}
	if got := len(c.Images()); got != maxPayloads {
		t.Errorf("images = %d, want %d", got, maxPayloads)
	}
}

func TestCollectorReturnsCopies(t *testing.T) {
	c := NewCollector()
	c.Ingest([]byte(`{"thumUrls":["https://a.pstatic.net/1.jpg","https://a.pstatic.net/2.jpg"]}`))

	first := c.Images()
	first[0] = "mutated"
	if again := c.Images(); again[0] == "mutated" {
		t.Error("drain returned internal slice, not a copy")
	}
}
