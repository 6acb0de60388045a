package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/markdave123-py/insightcart/internal/core"
	"github.com/markdave123-py/insightcart/internal/logger"
	"github.com/markdave123-py/insightcart/internal/metrics"
	"github.com/markdave123-py/insightcart/internal/models"
)

const defaultTemperature = 0.7

// Client turns a ProductInput into an audit using one structured model call.
// It never retries; callers surface the failure to the user.
type Client struct {
	llm         core.LLMProvider
	scanner     core.LinkScanner
	log         *logger.Logger
	metrics     *metrics.Recorder
	timeout     time.Duration
	temperature float32
}

type Option func(*Client)

// WithLinkScanner enables page extraction for link-based audits.
func WithLinkScanner(s core.LinkScanner) Option {
	return func(c *Client) { c.scanner = s }
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

func WithMetrics(m *metrics.Recorder) Option {
	return func(c *Client) { c.metrics = m }
}

// WithTimeout bounds each model call; zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func NewClient(llm core.LLMProvider, opts ...Option) *Client {
	c := &Client{
		llm:         llm,
		log:         logger.Nop(),
		temperature: defaultTemperature,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Analyze runs the audit. The returned result has no id, owner, timestamp or
// community fields; the workspace attaches those.
func (c *Client) Analyze(ctx context.Context, input models.ProductInput) (*models.AnalysisResult, error) {
	mode := ModeFor(input)
	start := time.Now()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var extract string
	if mode == models.ModeLinkBased && c.scanner != nil {
		text, err := c.scanner.Scan(ctx, input.ProductLink)
		if err != nil {
			c.log.Warn("link scan failed, falling back to link-only inference", "link", input.ProductLink, "error", err)
		} else {
			extract = text
		}
	}

	raw, err := c.llm.GenerateJSON(ctx, core.StructuredRequest{
		Prompt:      BuildPrompt(input, extract),
		Schema:      ResponseSchema(),
		Temperature: c.temperature,
	})
	if err != nil {
		c.metrics.ObserveAnalysis(mode, "request_failed", time.Since(start))
		c.log.Error("audit request failed", "mode", mode, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	res, err := ParseResult(raw)
	if err != nil {
		c.metrics.ObserveAnalysis(mode, "malformed", time.Since(start))
		c.log.Error("audit response rejected", "mode", mode, "error", err, "bytes", len(raw))
		return nil, err
	}

	// The caller's mode is authoritative regardless of what the model declared.
	res.SelectedMode = mode

	c.metrics.ObserveAnalysis(mode, "success", time.Since(start))
	c.log.Info("audit completed", "mode", mode, "product", res.ProductName, "risk", res.FailureRiskScore)
	return res, nil
}

// IsServiceFailure reports whether err is one of the analysis failure kinds.
func IsServiceFailure(err error) bool {
	return errors.Is(err, ErrRequestFailed) || errors.Is(err, ErrMalformedResponse)
}
