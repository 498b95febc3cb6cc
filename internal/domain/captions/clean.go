package captions

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/forPelevin/clipideas/internal/types"
)

var (
	reMusic    = regexp.MustCompile(`(?i)\[[^\]]*(music|♪|♫)[^\]]*\]`)
	reApplause = regexp.MustCompile(`(?i)\[[^\]]*applause[^\]]*\]`)
	reNotes    = regexp.MustCompile(`[♪♫]+`)
)

// CleanText drops bracketed music/applause markers and collapses whitespace.
func CleanText(text string) string {
	t := reMusic.ReplaceAllString(text, " ")
	t = reApplause.ReplaceAllString(t, " ")
	t = reNotes.ReplaceAllString(t, " ")
	return strings.Join(strings.Fields(t), " ")
}

// Normalize cleans every entry, drops the ones left empty, rounds offsets to
// centiseconds and sorts by start. reordered reports whether the input was
// not already in ascending start order.
func Normalize(in []types.TranscriptEntry) (out []types.TranscriptEntry, reordered bool) {
	out = make([]types.TranscriptEntry, 0, len(in))
	for _, e := range in {
		text := CleanText(e.Text)
		if text == "" {
			continue
		}
		start := round2(e.Start)
		if start < 0 {
			start = 0
		}
		d := round2(e.Duration)
		if d < 0 {
			d = 0
		}
		out = append(out, types.TranscriptEntry{Text: text, Start: start, Duration: d})
	}

	if !sort.SliceIsSorted(out, func(i, j int) bool { return out[i].Start < out[j].Start }) {
		reordered = true
		sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	}
	return out, reordered
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
