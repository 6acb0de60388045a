package ingestion_engine

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"code.sajari.com/docconv"
	"golang.org/x/sync/errgroup"

	"github.com/markdave123-py/insightcart/internal/core"
)

var _ core.DocumentExtractor = (*DocconvExtractor)(nil)

// DocconvExtractor implements core.DocumentExtractor using sajari/docconv.
type DocconvExtractor struct {
	useReadability bool
	maxFragLen     int
}

func NewDocconvExtractor(useReadability bool, maxFragLen int) *DocconvExtractor {
	if maxFragLen <= 0 {
		maxFragLen = 400
	}
	return &DocconvExtractor{useReadability: useReadability, maxFragLen: maxFragLen}
}

// ExtractText converts the page and emits its non-blank lines as fragments,
// splitting long lines at maxFragLen runes.
func (e *DocconvExtractor) ExtractText(ctx context.Context, g *errgroup.Group, r []byte, contentType string) (<-chan string, error) {
	if len(r) == 0 {
		return nil, fmt.Errorf("docconv: empty document")
	}
	out := make(chan string, 32)

	g.Go(func() error {
		defer close(out)

		res, err := docconv.Convert(bytes.NewReader(r), mimeOf(contentType), e.useReadability)
		if err != nil {
			return fmt.Errorf("docconv: extraction failed for %q: %w", contentType, err)
		}

		for _, line := range strings.Split(res.Body, "\n") {
			line = strings.Join(strings.Fields(line), " ")
			if line == "" {
				continue
			}
			for _, frag := range splitRunes(line, e.maxFragLen) {
				select {
				case out <- frag:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
		return nil
	})

	return out, nil
}

// mimeOf drops parameters such as "; charset=utf-8".
func mimeOf(contentType string) string {
	ct := strings.TrimSpace(contentType)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	if ct == "" {
		return "text/html"
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

func splitRunes(s string, n int) []string {
	rs := []rune(s)
	if len(rs) <= n {
		return []string{s}
	}
	var out []string
	for len(rs) > n {
		out = append(out, string(rs[:n]))
		rs = rs[n:]
	}
	if len(rs) > 0 {
		out = append(out, string(rs))
	}
	return out
}
