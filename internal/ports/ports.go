package ports

import (
	"context"

	"github.com/forPelevin/clipideas/internal/types"
)

type TranscriptFetcher interface {
	Fetch(ctx context.Context, videoID, languageHint string) (types.Transcript, error)
}

// ModelClient sends one prompt and returns the model's text unparsed.
type ModelClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}

type RateLimiter interface {
	CheckAndIncrement(ip string) (allowed bool, remaining int)
}
