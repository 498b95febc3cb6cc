// Package subtitles renders the captions that fall inside a suggested clip as
// clip-local subtitle files, ready to drop into an editor next to the cut.
package subtitles

import (
	"fmt"
	"strings"
	"time"

	"github.com/forPelevin/clipideas/internal/types"
)

type cue struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

// Line budgets for vertical-video layouts.
const (
	charBudget = 42
	wordBudget = 9
)

// RenderSRT returns SubRip captions for [startSec, endSec), re-timed so the
// clip starts at zero.
func RenderSRT(tr types.Transcript, startSec, endSec int) string {
	cues := collectCues(tr, sec(startSec), sec(endSec))
	var b strings.Builder
	for i, c := range cues {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n", i+1, srtTime(c.Start), srtTime(c.End), c.Text)
	}
	return b.String()
}

// RenderASS is RenderSRT for players and editors that take styled ASS.
func RenderASS(tr types.Transcript, startSec, endSec int) string {
	cues := collectCues(tr, sec(startSec), sec(endSec))
	var b strings.Builder
	b.WriteString(assHeader())
	b.WriteString("\n[Events]\n")
	b.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	for _, c := range cues {
		b.WriteString("Dialogue: 0,")
		b.WriteString(assTime(c.Start))
		b.WriteString(",")
		b.WriteString(assTime(c.End))
		b.WriteString(",Shorts,,0,0,0,,")
		b.WriteString(sanitizeASS(c.Text))
		b.WriteString("\n")
	}
	return b.String()
}

// Excerpt joins the caption text spoken inside [startSec, endSec).
func Excerpt(tr types.Transcript, startSec, endSec int) string {
	start, end := sec(startSec), sec(endSec)
	var parts []string
	for _, e := range tr.Entries {
		es, ee := dur(e.Start), dur(e.End())
		if ee <= start || es >= end {
			continue
		}
		if t := strings.TrimSpace(e.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

func collectCues(tr types.Transcript, start, end time.Duration) []cue {
	var out []cue
	for _, e := range tr.Entries {
		es, ee := dur(e.Start), dur(e.End())
		if ee <= start || es >= end {
			continue
		}
		text := strings.Join(strings.Fields(e.Text), " ")
		if text == "" {
			continue
		}
		if es < start {
			es = start
		}
		if ee > end {
			ee = end
		}
		// clip-local offsets
		out = append(out, splitCue(cue{Start: es - start, End: ee - start, Text: text})...)
	}
	return out
}

// splitCue breaks a long caption line into budget-sized lines and shares the
// cue's time between them by rune count.
func splitCue(c cue) []cue {
	words := strings.Fields(c.Text)
	var lines [][]string
	var cur []string
	curLen := 0
	for _, w := range words {
		wl := len([]rune(w))
		nextLen := curLen
		if curLen > 0 {
			nextLen++
		}
		nextLen += wl
		if len(cur) > 0 && (len(cur) >= wordBudget || nextLen > charBudget) {
			lines = append(lines, cur)
			cur = nil
			nextLen = wl
		}
		cur = append(cur, w)
		curLen = nextLen
	}
	if len(cur) > 0 {
		lines = append(lines, cur)
	}
	if len(lines) <= 1 {
		return []cue{c}
	}

	total := 0
	for _, l := range lines {
		total += len([]rune(strings.Join(l, " ")))
	}
	span := c.End - c.Start
	out := make([]cue, 0, len(lines))
	at := c.Start
	for i, l := range lines {
		text := strings.Join(l, " ")
		end := at + time.Duration(int64(span)*int64(len([]rune(text)))/int64(total))
		if i == len(lines)-1 {
			end = c.End
		}
		out = append(out, cue{Start: at, End: end, Text: text})
		at = end
	}
	return out
}

func assHeader() string {
	return strings.TrimSpace(`
[Script Info]
ScriptType: v4.00+
PlayResX: 1080
PlayResY: 1920
ScaledBorderAndShadow: yes

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Shorts, Inter, 78, &H00FFFFFF, &H00FFD200, &H00000000, &H64000000, 1,0,0,0,100,100,0,0,1,6,2,2, 80,80,420,1
`)
}

func assTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hs := int(d / time.Hour)
	d -= time.Duration(hs) * time.Hour
	ms := int(d / time.Minute)
	d -= time.Duration(ms) * time.Minute
	s := int(d / time.Second)
	d -= time.Duration(s) * time.Second
	cs := int(d / (10 * time.Millisecond))
	return fmt.Sprintf("%d:%02d:%02d.%02d", hs, ms, s, cs)
}

func srtTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hs := int(d / time.Hour)
	d -= time.Duration(hs) * time.Hour
	ms := int(d / time.Minute)
	d -= time.Duration(ms) * time.Minute
	s := int(d / time.Second)
	d -= time.Duration(s) * time.Second
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hs, ms, s, int(d/time.Millisecond))
}

func sanitizeASS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "{", "(")
	s = strings.ReplaceAll(s, "}", ")")
	return strings.TrimSpace(s)
}

func sec(s int) time.Duration { return time.Duration(s) * time.Second }

func dur(sec float64) time.Duration { return time.Duration(sec * float64(time.Second)) }
