package browse

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/plateful/placepipe/naver"
)

// SessionConfig tunes per-session timing.
type SessionConfig struct {
	// NavTimeout bounds navigation. Exceeding it fails the record.
	// Default: 30s.
	NavTimeout time.Duration
	// SettleDelay is the fixed wait after load before reading the
	// collector, so late asynchronous traffic can land. Default: 3s.
	SettleDelay time.Duration
}

func (c *SessionConfig) defaults() {
	if c.NavTimeout <= 0 {
		c.NavTimeout = 30 * time.Second
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = 3 * time.Second
	}
}

// Session is one scraping session, scoped to exactly one record: opened at
// the start of processing, closed in a guaranteed-cleanup block, response
// listener detached as part of Close. Never reused across records.
type Session struct {
	page      *rod.Page
	pageURL   string
	cfg       SessionConfig
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// OpenSession opens a stealth page, attaches the collector to the page's
// network traffic, and navigates. The collector only sees responses from
// the platform's API origins with a JSON-ish content type; everything else
// is ignored at the listener.
func OpenSession(ctx context.Context, mgr *Manager, pageURL string, col *Collector, cfg SessionConfig) (*Session, error) {
	cfg.defaults()

	b := mgr.Browser()
	if b == nil {
		return nil, fmt.Errorf("browse: no active browser")
	}

	page, err := stealth.Page(b)
	if err != nil {
		return nil, fmt.Errorf("browse: create page: %w", err)
	}

	// Session context: cancelling it detaches every event listener.
	sctx, cancel := context.WithCancel(ctx)
	page = page.Context(sctx)

	s := &Session{page: page, pageURL: pageURL, cfg: cfg, cancel: cancel}

	if col != nil {
		if err := (proto.NetworkEnable{}).Call(page); err != nil {
			s.Close()
			return nil, fmt.Errorf("browse: enable network domain: %w", err)
		}
		s.listen(col)
	}

	navCtx, navCancel := context.WithTimeout(sctx, cfg.NavTimeout)
	defer navCancel()

	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		s.Close()
		return nil, fmt.Errorf("browse: navigate %s: %w", pageURL, err)
	}

	return s, nil
}

// listen subscribes to network events and feeds qualifying response bodies
// to the collector. Bodies are fetched on loadingFinished; fetching earlier
// races the browser's own buffering.
func (s *Session) listen(col *Collector) {
	var mu sync.Mutex
	pending := make(map[proto.NetworkRequestID]struct{})

	wait := s.page.EachEvent(
		func(e *proto.NetworkResponseReceived) {
			if e.Response == nil {
				return
			}
			if !naver.IsAPIHost(e.Response.URL) || !jsonContentType(e.Response.MIMEType) {
				return
			}
			mu.Lock()
			pending[e.RequestID] = struct{}{}
			mu.Unlock()
		},
		func(e *proto.NetworkLoadingFinished) {
			mu.Lock()
			_, ok := pending[e.RequestID]
			delete(pending, e.RequestID)
			mu.Unlock()
			if !ok {
				return
			}

			body, err := proto.NetworkGetResponseBody{RequestID: e.RequestID}.Call(s.page)
			if err != nil {
				// Body already evicted or page gone; the next response
				// may still succeed.
				return
			}
			col.Ingest([]byte(body.Body))
		},
	)
	go wait()
}

// Settle waits for the page load event, then the fixed settle delay, so
// asynchronous rendering and API traffic can complete before the caller
// drains the collector.
func (s *Session) Settle(ctx context.Context) error {
	loadCtx, cancel := context.WithTimeout(ctx, s.cfg.NavTimeout)
	defer cancel()

	if err := s.page.Context(loadCtx).WaitLoad(); err != nil {
		return fmt.Errorf("browse: wait load %s: %w", s.pageURL, err)
	}

	t := time.NewTimer(s.cfg.SettleDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// HTML serialises the rendered document for the DOM fallback path.
func (s *Session) HTML(ctx context.Context) (string, error) {
	res, err := s.page.Context(ctx).Eval(`() => document.documentElement.outerHTML`)
	if err != nil {
		return "", fmt.Errorf("browse: get DOM %s: %w", s.pageURL, err)
	}
	return res.Value.Str(), nil
}

// Close detaches the response listener and closes the page. Idempotent.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		// Close the page before cancelling: Close issues CDP calls that
		// would fail under an already-cancelled context.
		if s.page != nil {
			s.page.Close()
		}
		s.cancel()
	})
}

func jsonContentType(mime string) bool {
	mime = strings.ToLower(mime)
	return strings.Contains(mime, "json") || strings.Contains(mime, "javascript")
}
