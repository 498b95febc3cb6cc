package youtube

import (
	"context"
	"errors"
	"testing"
	"time"

	yt "github.com/kkdai/youtube/v2"

	"github.com/forPelevin/clipideas/internal/platform/logger"
)

type fakeSource struct {
	video     *yt.Video
	videoErr  error
	segs      yt.VideoTranscript
	segsErr   error
	videoHits int
	gotLang   string
}

func (f *fakeSource) GetVideoContext(_ context.Context, id string) (*yt.Video, error) {
	f.videoHits++
	if f.videoErr != nil {
		return nil, f.videoErr
	}
	v := *f.video
	v.ID = id
	return &v, nil
}

func (f *fakeSource) GetTranscriptCtx(_ context.Context, _ *yt.Video, lang string) (yt.VideoTranscript, error) {
	f.gotLang = lang
	return f.segs, f.segsErr
}

func tracks(codes ...string) []yt.CaptionTrack {
	out := make([]yt.CaptionTrack, 0, len(codes))
	for _, c := range codes {
		out = append(out, yt.CaptionTrack{LanguageCode: c})
	}
	return out
}

func newTestAdapter(src *fakeSource) *Adapter {
	return newWithSource(src, time.Second, logger.Nop())
}

func TestFetch_ConvertsAndCleans(t *testing.T) {
	src := &fakeSource{
		video: &yt.Video{CaptionTracks: tracks("de", "en")},
		segs: yt.VideoTranscript{
			{Text: "[Music]", StartMs: 0, Duration: 1500},
			{Text: "hello  there", StartMs: 1500, Duration: 2250},
			{Text: "general kenobi", StartMs: 3750, Duration: 1000},
		},
	}
	tr, err := newTestAdapter(src).Fetch(context.Background(), "dQw4w9WgXcQ", "")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if src.gotLang != "en" || tr.Language != "en" {
		t.Fatalf("expected english track, got %q / %q", src.gotLang, tr.Language)
	}
	if len(tr.Entries) != 2 {
		t.Fatalf("expected music marker dropped, got %d entries", len(tr.Entries))
	}
	if tr.Entries[0].Text != "hello there" || tr.Entries[0].Start != 1.5 || tr.Entries[0].Duration != 2.25 {
		t.Fatalf("unexpected first entry: %+v", tr.Entries[0])
	}
	if tr.TotalDuration() != 4.75 {
		t.Fatalf("unexpected total duration: %v", tr.TotalDuration())
	}
}

func TestFetch_SortsOutOfOrderEntries(t *testing.T) {
	src := &fakeSource{
		video: &yt.Video{CaptionTracks: tracks("en")},
		segs: yt.VideoTranscript{
			{Text: "second", StartMs: 5000, Duration: 1000},
			{Text: "first", StartMs: 1000, Duration: 1000},
		},
	}
	tr, err := newTestAdapter(src).Fetch(context.Background(), "dQw4w9WgXcQ", "")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if tr.Entries[0].Text != "first" {
		t.Fatalf("expected entries sorted by start, got %+v", tr.Entries)
	}
}

func TestFetch_Errors(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		src     *fakeSource
		wantErr error
		noCall  bool
	}{
		{
			name:    "malformed id",
			id:      "nope",
			src:     &fakeSource{},
			wantErr: ErrInvalidVideoID,
			noCall:  true,
		},
		{
			name:    "no caption tracks",
			id:      "dQw4w9WgXcQ",
			src:     &fakeSource{video: &yt.Video{}},
			wantErr: ErrNoTranscript,
		},
		{
			name:    "transport failure on metadata",
			id:      "dQw4w9WgXcQ",
			src:     &fakeSource{videoErr: errors.New("dial tcp: timeout")},
			wantErr: ErrNoTranscript,
		},
		{
			name:    "transcript disabled",
			id:      "dQw4w9WgXcQ",
			src:     &fakeSource{video: &yt.Video{CaptionTracks: tracks("en")}, segsErr: yt.ErrTranscriptDisabled},
			wantErr: ErrNoTranscript,
		},
		{
			name: "only markers",
			id:   "dQw4w9WgXcQ",
			src: &fakeSource{
				video: &yt.Video{CaptionTracks: tracks("en")},
				segs:  yt.VideoTranscript{{Text: "[Applause]", StartMs: 0, Duration: 1000}},
			},
			wantErr: ErrNoTranscript,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestAdapter(tt.src).Fetch(context.Background(), tt.id, "")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.noCall && tt.src.videoHits != 0 {
				t.Fatalf("expected no network call for malformed id")
			}
		})
	}
}

func TestPickLanguage(t *testing.T) {
	tests := []struct {
		name   string
		tracks []yt.CaptionTrack
		hint   string
		want   string
		ok     bool
	}{
		{name: "none", ok: false},
		{name: "hint wins", tracks: tracks("en", "es"), hint: "es", want: "es", ok: true},
		{name: "hint case-insensitive", tracks: tracks("en", "pt-BR"), hint: "PT-br", want: "pt-BR", ok: true},
		{name: "hint base matches region", tracks: tracks("en", "pt-BR"), hint: "pt", want: "pt-BR", ok: true},
		{name: "english before others", tracks: tracks("fr", "en-GB"), want: "en-GB", ok: true},
		{name: "fallback first track", tracks: tracks("ja", "ko"), hint: "de", want: "ja", ok: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := pickLanguage(tt.tracks, tt.hint)
			if got != tt.want || ok != tt.ok {
				t.Fatalf("pickLanguage = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}
