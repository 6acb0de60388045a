package core

import (
	"context"

	"github.com/google/generative-ai-go/genai"
)

// StructuredRequest is a single non-streaming prompt whose reply must conform
// to Schema.
type StructuredRequest struct {
	Prompt      string
	Schema      *genai.Schema
	Temperature float32
}

type LLMProvider interface {
	GenerateJSON(ctx context.Context, req StructuredRequest) (string, error)
}

// LinkScanner pulls readable text out of a product page for link-based audits.
type LinkScanner interface {
	Scan(ctx context.Context, link string) (string, error)
}
