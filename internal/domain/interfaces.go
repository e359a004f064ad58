package domain

import "context"

// TextExtractor defines the interface for turning an uploaded document into plain text
type TextExtractor interface {
	// Extract returns the text of every page in page order, or an extraction error
	Extract(ctx context.Context, data []byte) (string, error)
}

// Generator defines the interface for the remote text-generation service
type Generator interface {
	// Generate performs one generation call and returns the raw text of the first candidate
	Generate(ctx context.Context, req *GenerationRequest) (string, error)
}
