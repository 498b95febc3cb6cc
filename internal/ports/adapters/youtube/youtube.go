package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	yt "github.com/kkdai/youtube/v2"

	"github.com/forPelevin/clipideas/internal/domain/captions"
	"github.com/forPelevin/clipideas/internal/domain/videoid"
	"github.com/forPelevin/clipideas/internal/platform/logger"
	"github.com/forPelevin/clipideas/internal/types"
)

var (
	ErrInvalidVideoID = errors.New("youtube: malformed video id")
	// ErrNoTranscript covers both "no caption track" and transport failures;
	// callers cannot tell them apart and do not need to.
	ErrNoTranscript = errors.New("youtube: transcript not available")
)

// PreferredLanguages are tried after the caller's hint, before falling back
// to whatever track the video has.
var PreferredLanguages = []string{"en", "en-US", "en-GB", "en-AU", "en-CA"}

const defaultTimeout = 20 * time.Second

// source is the part of *youtube.Client the adapter needs.
type source interface {
	GetVideoContext(ctx context.Context, id string) (*yt.Video, error)
	GetTranscriptCtx(ctx context.Context, video *yt.Video, lang string) (yt.VideoTranscript, error)
}

type Adapter struct {
	src     source
	timeout time.Duration
	log     *logger.Logger
}

func New(timeout time.Duration, log *logger.Logger) *Adapter {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := &yt.Client{HTTPClient: &http.Client{Timeout: timeout}}
	return newWithSource(client, timeout, log)
}

func newWithSource(src source, timeout time.Duration, log *logger.Logger) *Adapter {
	if log == nil {
		log = logger.Nop()
	}
	return &Adapter{src: src, timeout: timeout, log: log}
}

// Fetch makes a single attempt at the video's caption track. Entries come
// back cleaned and in ascending start order.
func (a *Adapter) Fetch(ctx context.Context, videoID, languageHint string) (types.Transcript, error) {
	if !videoid.Valid(videoID) {
		return types.Transcript{}, ErrInvalidVideoID
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	video, err := a.src.GetVideoContext(ctx, videoID)
	if err != nil {
		return types.Transcript{}, fmt.Errorf("%w: load video: %v", ErrNoTranscript, err)
	}

	lang, ok := pickLanguage(video.CaptionTracks, languageHint)
	if !ok {
		return types.Transcript{}, fmt.Errorf("%w: no caption tracks", ErrNoTranscript)
	}

	segs, err := a.src.GetTranscriptCtx(ctx, video, lang)
	if err != nil {
		return types.Transcript{}, fmt.Errorf("%w: fetch %s captions: %v", ErrNoTranscript, lang, err)
	}

	raw := make([]types.TranscriptEntry, 0, len(segs))
	for _, s := range segs {
		raw = append(raw, types.TranscriptEntry{
			Text:     s.Text,
			Start:    float64(s.StartMs) / 1000,
			Duration: float64(s.Duration) / 1000,
		})
	}

	entries, reordered := captions.Normalize(raw)
	if reordered {
		a.log.Warn("caption entries out of order, re-sorted", "video_id", videoID, "lang", lang)
	}
	if len(entries) == 0 {
		return types.Transcript{}, fmt.Errorf("%w: transcript empty after cleaning", ErrNoTranscript)
	}

	return types.Transcript{Entries: entries, Language: lang}, nil
}

// pickLanguage returns the language code of the best caption track: the hint
// first, then PreferredLanguages, then the first track listed. Codes match
// case-insensitively and a bare code ("pt") also matches a regional track
// ("pt-BR").
func pickLanguage(tracks []yt.CaptionTrack, hint string) (string, bool) {
	if len(tracks) == 0 {
		return "", false
	}

	want := make([]string, 0, len(PreferredLanguages)+1)
	if h := strings.TrimSpace(hint); h != "" {
		want = append(want, h)
	}
	want = append(want, PreferredLanguages...)

	for _, w := range want {
		for _, t := range tracks {
			if strings.EqualFold(t.LanguageCode, w) {
				return t.LanguageCode, true
			}
		}
		for _, t := range tracks {
			base, _, _ := strings.Cut(t.LanguageCode, "-")
			if strings.EqualFold(base, w) {
				return t.LanguageCode, true
			}
		}
	}
	if tracks[0].LanguageCode == "" {
		return "", false
	}
	return tracks[0].LanguageCode, true
}
