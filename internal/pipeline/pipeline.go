package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/forPelevin/clipideas/internal/config"
	"github.com/forPelevin/clipideas/internal/domain/prompt"
	"github.com/forPelevin/clipideas/internal/domain/subtitles"
	"github.com/forPelevin/clipideas/internal/platform/logger"
	"github.com/forPelevin/clipideas/internal/ports"
	"github.com/forPelevin/clipideas/internal/ports/adapters/openai"
	"github.com/forPelevin/clipideas/internal/ports/adapters/youtube"
	"github.com/forPelevin/clipideas/internal/ratelimit"
	"github.com/forPelevin/clipideas/internal/usecase"
)

// Pipeline is the wired orchestrator plus the limiter it shares with the
// HTTP layer.
type Pipeline struct {
	Usecase usecase.Usecase
	Limiter *ratelimit.Limiter
	Model   string
}

func Build(cfg config.Config, log *logger.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if log == nil {
		log = logger.Nop()
	}

	// adapters
	yt := youtube.New(cfg.TranscriptTimeout.Duration, log.With("component", "youtube"))
	llm := openai.New(openai.Config{
		APIKey:  cfg.OpenAI.APIKey,
		Model:   cfg.OpenAI.Model,
		BaseURL: cfg.OpenAI.BaseURL,
		Timeout: cfg.OpenAI.Timeout.Duration,
	})
	lim := ratelimit.New(cfg.DailyLimitPerIP)

	uc := usecase.New(usecase.Deps{
		Transcripts: yt,
		Model:       llm,
		Limiter:     lim,
		Prompt:      prompt.New(cfg.MaxTranscriptItems),
		Log:         log.With("component", "usecase"),
	})
	log.Info("pipeline ready", "model", llm.Model(), "daily_limit", lim.Limit(), "max_entries", cfg.MaxTranscriptItems)
	return &Pipeline{Usecase: uc, Limiter: lim, Model: llm.Model()}, nil
}

// WriteResult stores a successful run under a fresh directory in outRoot:
// ideas.json plus SRT, ASS and plain-text excerpts for every clip idea. It returns the
// run directory.
func WriteResult(outRoot string, res usecase.Result, now time.Time) (string, error) {
	if outRoot == "" {
		outRoot = "out"
	}
	runOutDir := buildRunOutDir(outRoot, res.Response.VideoID, now)
	subtitlesDir := filepath.Join(runOutDir, "subtitles")
	if err := os.MkdirAll(subtitlesDir, 0o755); err != nil {
		return "", err
	}

	b, err := json.MarshalIndent(res.Response, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}
	if err := os.WriteFile(filepath.Join(runOutDir, "ideas.json"), b, 0o644); err != nil {
		return "", err
	}

	for i, idea := range res.Response.Ideas {
		base := filepath.Join(subtitlesDir, fmt.Sprintf("clip-%02d", i+1))
		srt := subtitles.RenderSRT(res.Transcript, idea.StartSeconds, idea.EndSeconds)
		if err := os.WriteFile(base+".srt", []byte(srt), 0o644); err != nil {
			return "", err
		}
		ass := subtitles.RenderASS(res.Transcript, idea.StartSeconds, idea.EndSeconds)
		if err := os.WriteFile(base+".ass", []byte(ass), 0o644); err != nil {
			return "", err
		}
		excerpt := subtitles.Excerpt(res.Transcript, idea.StartSeconds, idea.EndSeconds)
		if err := os.WriteFile(base+".txt", []byte(excerpt+"\n"), 0o644); err != nil {
			return "", err
		}
	}
	return runOutDir, nil
}

func buildRunOutDir(outRoot, videoID string, now time.Time) string {
	name := normalizePathSegment(videoID)
	if name == "" {
		name = "video"
	}
	ts := now.UTC().Format("20060102-150405Z")
	// ids differing only in case collapse to the same name
	suffix := hash(fmt.Sprintf("%s|%d", videoID, now.UTC().UnixNano()))[:6]
	return filepath.Join(outRoot, fmt.Sprintf("%s-%s-%s", name, ts, suffix))
}

func normalizePathSegment(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}

// ensure adapters implement ports
var _ ports.TranscriptFetcher = (*youtube.Adapter)(nil)
var _ ports.ModelClient = (*openai.Adapter)(nil)
var _ ports.RateLimiter = (*ratelimit.Limiter)(nil)
