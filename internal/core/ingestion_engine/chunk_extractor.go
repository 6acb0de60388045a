package ingestion_engine

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"
)

// collectBudget joins fragments until maxTokens is reached, then drains the
// rest of the stream so the extractor can finish.
func collectBudget(ctx context.Context, g *errgroup.Group, frags <-chan string, maxTokens int) *strings.Builder {
	var b strings.Builder

	g.Go(func() error {
		tokSum := 0
		full := false
		for frag := range frags {
			if full {
				continue
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			t := approxTokens(frag)
			if tokSum+t > maxTokens {
				full = true
				continue
			}
			if b.Len() > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(frag)
			tokSum += t
		}
		return nil
	})

	return &b
}

// approxTokens is a cheap token estimator (~4 chars ≈ 1 token).
func approxTokens(s string) int {
	n := len([]rune(s))
	if n <= 0 {
		return 0
	}
	return (n + 3) / 4
}
