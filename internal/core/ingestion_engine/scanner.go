package ingestion_engine

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/markdave123-py/insightcart/internal/core"
	"github.com/markdave123-py/insightcart/internal/logger"
)

// ScanConfig tunes the page scan.
//
// MaxTokens:  approximate prompt budget for the extracted text.
// MaxBytes:   cap on the downloaded page body.
// Timeout:    bound on fetch plus extraction.
type ScanConfig struct {
	MaxTokens int
	MaxBytes  int64
	Timeout   time.Duration
}

func DefaultScanConfig() ScanConfig {
	return ScanConfig{MaxTokens: 1500, MaxBytes: 2 << 20, Timeout: 15 * time.Second}
}

// LinkScanner fetches a product page and returns its readable text.
type LinkScanner struct {
	http      *http.Client
	extractor core.DocumentExtractor
	cfg       ScanConfig
	log       *logger.Logger
}

var _ core.LinkScanner = (*LinkScanner)(nil)

func NewLinkScanner(client *http.Client, extractor core.DocumentExtractor, cfg ScanConfig, log *logger.Logger) *LinkScanner {
	if client == nil {
		client = &http.Client{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &LinkScanner{http: client, extractor: extractor, cfg: cfg, log: log.With("service", "LinkScanner")}
}

func (s *LinkScanner) Scan(ctx context.Context, link string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("scan: unsupported link %q", link)
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("scan: build request: %w", err)
	}
	req.Header.Set("User-Agent", "InsightCart-Scanner/1.0")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("scan: fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("scan: fetch returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.cfg.MaxBytes))
	if err != nil {
		return "", fmt.Errorf("scan: read body: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	// page -> fragments
	fragCh, err := s.extractor.ExtractText(gctx, g, body, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", err
	}
	// fragments -> budgeted text
	text := collectBudget(gctx, g, fragCh, s.cfg.MaxTokens)

	if err := g.Wait(); err != nil {
		return "", err
	}

	s.log.Debug("page scanned", "host", u.Host, "bytes", len(body), "chars", text.Len())
	return text.String(), nil
}
