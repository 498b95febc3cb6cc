// Package prompt renders a transcript into the single user prompt sent to
// the model.
//
// Long transcripts are cut down deterministically by Sample: when there are
// more than max entries, the first and last quarter of the budget are kept
// verbatim and the remaining half is a uniform stride over the middle. The
// opening and closing of a video are kept whole; the middle is thinned
// evenly rather than by guessing which lines are filler.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/forPelevin/clipideas/internal/domain/ideas"
	"github.com/forPelevin/clipideas/internal/types"
)

const (
	DefaultMaxEntries = 2000
	MinMaxEntries     = 40
	ModeShorts        = "shorts"
)

// System is sent as the system message alongside every built prompt.
const System = "You are a senior video editor and viral clip strategist. You output strict JSON only."

type Builder struct {
	MaxEntries int
}

func New(maxEntries int) Builder {
	if maxEntries < MinMaxEntries {
		maxEntries = DefaultMaxEntries
	}
	return Builder{MaxEntries: maxEntries}
}

type segment struct {
	T    float64 `json:"t"`
	D    float64 `json:"d"`
	Text string  `json:"text"`
}

// Build is a pure function of its inputs.
func (b Builder) Build(tr types.Transcript, mode, languageHint string) string {
	kept := Sample(tr.Entries, b.maxEntries())
	segs := make([]segment, 0, len(kept))
	for _, e := range kept {
		segs = append(segs, segment{T: e.Start, D: e.Duration, Text: e.Text})
	}
	// Marshalling plain structs of strings and floats cannot fail.
	segJSON, _ := json.Marshal(segs)

	lang := strings.TrimSpace(tr.Language)
	if lang == "" {
		lang = strings.TrimSpace(languageHint)
	}
	if lang == "" {
		lang = "unknown"
	}
	if strings.TrimSpace(mode) == "" {
		mode = ModeShorts
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "You will receive a YouTube transcript with timestamps.\n")
	fmt.Fprintf(&sb, "Generate EXACTLY %d clip ideas for short-form content (mode: %s).\n\n", ideas.BatchSize, mode)
	sb.WriteString("Rules:\n")
	sb.WriteString("- Output MUST be valid JSON only. No markdown. No extra text.\n")
	sb.WriteString("- Each idea must use timestamps that exist in the transcript.\n")
	fmt.Fprintf(&sb, "- Each clip duration must be between %d and %d seconds.\n", ideas.MinDuration, ideas.MaxDuration)
	fmt.Fprintf(&sb, "- Clips must not overlap and must end at or before %d seconds.\n", int(tr.TotalDuration()))
	sb.WriteString("- Spread the clips across the whole video instead of clustering them.\n")
	sb.WriteString("- Prefer moments with: strong opinions, surprising statements, clear takeaways, emotional beats, punchy stories.\n")
	sb.WriteString("- Avoid greetings, ads, sponsor segments, and housekeeping.\n")
	fmt.Fprintf(&sb, "- Transcript language: %s. If it is not English, still write hook/why/caption in English.\n", lang)
	if len(kept) < len(tr.Entries) {
		fmt.Fprintf(&sb, "- The transcript was sampled down to %d of %d segments; gaps in time are expected.\n", len(kept), len(tr.Entries))
	}
	sb.WriteString("\nOutput schema:\n")
	sb.WriteString(`{
  "ideas": [
    {
      "start_seconds": integer,
      "end_seconds": integer,
      "hook": string,
      "why": string,
      "suggested_caption": string
    }
  ]
}`)
	sb.WriteString("\n\nTranscript segments (JSON array, each item has t=start seconds, d=duration seconds, text):\n")
	sb.Write(segJSON)
	return sb.String()
}

func (b Builder) maxEntries() int {
	if b.MaxEntries < MinMaxEntries {
		return DefaultMaxEntries
	}
	return b.MaxEntries
}

// Sample returns at most max entries, in order: the first max/4, a uniform
// stride over the middle, and the last max/4. Input of max entries or fewer
// is returned unchanged.
func Sample(entries []types.TranscriptEntry, max int) []types.TranscriptEntry {
	n := len(entries)
	if max <= 0 || n <= max {
		return entries
	}

	head := max / 4
	tail := max / 4
	mid := max - head - tail

	out := make([]types.TranscriptEntry, 0, max)
	out = append(out, entries[:head]...)

	midStart, midEnd := head, n-tail
	span := midEnd - midStart
	for i := 0; i < mid; i++ {
		out = append(out, entries[midStart+i*span/mid])
	}

	out = append(out, entries[n-tail:]...)
	return out
}
