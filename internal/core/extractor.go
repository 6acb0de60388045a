package core

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DocumentExtractor turns raw page bytes into a stream of text fragments.
// The contentType hint picks the parsing strategy.
type DocumentExtractor interface {
	ExtractText(ctx context.Context, g *errgroup.Group, r []byte, contentType string) (<-chan string, error)
}
