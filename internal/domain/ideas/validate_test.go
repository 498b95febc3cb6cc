package ideas

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/forPelevin/clipideas/internal/types"
)

// tenMinuteTranscript ends at 600s.
func tenMinuteTranscript() types.Transcript {
	return types.Transcript{
		Language: "en",
		Entries: []types.TranscriptEntry{
			{Text: "intro", Start: 0, Duration: 5},
			{Text: "middle", Start: 300, Duration: 5},
			{Text: "outro", Start: 595, Duration: 5},
		},
	}
}

type rawIdea struct {
	Start   any    `json:"start_seconds,omitempty"`
	End     any    `json:"end_seconds,omitempty"`
	Hook    any    `json:"hook,omitempty"`
	Why     any    `json:"why,omitempty"`
	Caption any    `json:"suggested_caption,omitempty"`
	StartS  string `json:"start,omitempty"`
}

func validIdeas() []rawIdea {
	return []rawIdea{
		{Start: 10, End: 45, Hook: "h1", Why: "w1", Caption: "c1"},
		{Start: 100, End: 160, Hook: "h2", Why: "w2", Caption: "c2"},
		{Start: 200, End: 270, Hook: "h3", Why: "w3"},
		{Start: 400, End: 425, Hook: "h4", Why: "w4", Caption: "c4"},
		{Start: 540, End: 600, Hook: "h5", Why: "w5", Caption: "c5"},
	}
}

func encode(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func envelope(t *testing.T, ideas []rawIdea) string {
	return encode(t, map[string]any{"ideas": ideas})
}

func TestValidate_AcceptsValidBatch(t *testing.T) {
	out, err := Validate(envelope(t, validIdeas()), tenMinuteTranscript())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != BatchSize {
		t.Fatalf("expected %d ideas, got %d", BatchSize, len(out))
	}

	want := []struct {
		start, end string
	}{
		{"00:10", "00:45"},
		{"01:40", "02:40"},
		{"03:20", "04:30"},
		{"06:40", "07:05"},
		{"09:00", "10:00"},
	}
	for i, w := range want {
		if out[i].Start != w.start || out[i].End != w.end {
			t.Fatalf("idea %d: got %s-%s, want %s-%s", i, out[i].Start, out[i].End, w.start, w.end)
		}
	}
	if out[2].SuggestedCaption != "" {
		t.Fatalf("expected absent caption to stay empty, got %q", out[2].SuggestedCaption)
	}
}

func TestValidate_IgnoresModelFormattedTimestamps(t *testing.T) {
	in := validIdeas()
	in[0].StartS = "99:99"
	out, err := Validate(envelope(t, in), tenMinuteTranscript())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0].Start != "00:10" {
		t.Fatalf("expected derived start 00:10, got %q", out[0].Start)
	}
}

func TestValidate_AcceptedShapes(t *testing.T) {
	obj := envelope(t, validIdeas())
	arr := encode(t, validIdeas())

	tests := map[string]string{
		"envelope":        obj,
		"bare array":      arr,
		"fenced":          "```json\n" + obj + "\n```",
		"chatter around":  "Here you go:\n" + obj + "\nEnjoy!",
		"fenced no lang":  "```\n" + arr + "\n```",
		"trimmed strings": strings.Replace(obj, `"h1"`, `"  h1  "`, 1),
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			out, err := Validate(raw, tenMinuteTranscript())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out[0].Hook != "h1" {
				t.Fatalf("expected trimmed hook, got %q", out[0].Hook)
			}
		})
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func([]rawIdea) []rawIdea
		raw    string
		suffix string
		reason string
	}{
		{name: "not json", raw: "sorry, I can't", reason: "no JSON"},
		{name: "broken json", raw: `{"ideas": [ {"start_seconds": 1,,}]}`, reason: "not valid JSON"},
		{name: "empty", raw: "  ", reason: "empty"},
		{name: "ideas not list", raw: `{"ideas": {"a": 1}}`, reason: "not a list"},
		{name: "missing ideas", raw: `{"clips": []}`, reason: `missing "ideas"`},
		{
			name:   "four ideas",
			mutate: func(in []rawIdea) []rawIdea { return in[:4] },
			reason: "exactly 5",
		},
		{
			name:   "six ideas",
			mutate: func(in []rawIdea) []rawIdea { return append(in, rawIdea{Start: 480, End: 510, Hook: "h", Why: "w"}) },
			reason: "exactly 5",
		},
		{
			name:   "too long",
			mutate: func(in []rawIdea) []rawIdea { in[1].End = 180; return in },
			reason: "duration 80s",
		},
		{
			name:   "too short",
			mutate: func(in []rawIdea) []rawIdea { in[1].End = 110; return in },
			reason: "duration 10s",
		},
		{
			name:   "reversed",
			mutate: func(in []rawIdea) []rawIdea { in[1].Start, in[1].End = 160, 100; return in },
			reason: "not before",
		},
		{
			name:   "negative start",
			mutate: func(in []rawIdea) []rawIdea { in[0].Start, in[0].End = -5, 30; return in },
			reason: "negative",
		},
		{
			name:   "negative fractional start",
			mutate: func(in []rawIdea) []rawIdea { in[0].Start, in[0].End = -0.9, 30; return in },
			reason: "start_seconds -0.9 is negative",
		},
		{
			name:   "trailing json document",
			mutate: func(in []rawIdea) []rawIdea { return in },
			suffix: "\n" + `{"ideas":"junk"}`,
			reason: "unexpected data after the JSON value",
		},
		{
			name:   "past transcript end",
			mutate: func(in []rawIdea) []rawIdea { in[4].Start, in[4].End = 560, 610; return in },
			reason: "exceeds transcript length",
		},
		{
			name:   "overlap",
			mutate: func(in []rawIdea) []rawIdea { in[2].Start, in[2].End = 150, 200; return in },
			reason: "overlaps",
		},
		{
			name:   "string start",
			mutate: func(in []rawIdea) []rawIdea { in[0].Start = "10"; return in },
			reason: "must be a number",
		},
		{
			name:   "missing end",
			mutate: func(in []rawIdea) []rawIdea { in[3].End = nil; return in },
			reason: "missing end_seconds",
		},
		{
			name:   "blank hook",
			mutate: func(in []rawIdea) []rawIdea { in[3].Hook = "   "; return in },
			reason: "hook is empty",
		},
		{
			name:   "missing why",
			mutate: func(in []rawIdea) []rawIdea { in[3].Why = nil; return in },
			reason: "missing why",
		},
		{
			name:   "numeric caption",
			mutate: func(in []rawIdea) []rawIdea { in[3].Caption = 7; return in },
			reason: "suggested_caption must be a string",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := tt.raw
			if tt.mutate != nil {
				raw = envelope(t, tt.mutate(validIdeas())) + tt.suffix
			}
			out, err := Validate(raw, tenMinuteTranscript())
			if err == nil {
				t.Fatalf("expected rejection, got %d ideas", len(out))
			}
			if !IsValidationError(err) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			if !strings.Contains(err.Error(), tt.reason) {
				t.Fatalf("expected reason %q in %q", tt.reason, err.Error())
			}
		})
	}
}

func TestValidate_AdjacentSegmentsDoNotOverlap(t *testing.T) {
	in := validIdeas()
	in[1].Start, in[1].End = 45, 100
	if _, err := Validate(envelope(t, in), tenMinuteTranscript()); err != nil {
		t.Fatalf("expected touching segments to pass, got %v", err)
	}
}

func TestValidate_TruncatesFractionalSeconds(t *testing.T) {
	raw := envelope(t, validIdeas())
	raw = strings.Replace(raw, `"start_seconds":10,`, `"start_seconds":10.9,`, 1)
	out, err := Validate(raw, tenMinuteTranscript())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0].StartSeconds != 10 || out[0].Start != "00:10" {
		t.Fatalf("expected truncation to 10s, got %d (%s)", out[0].StartSeconds, out[0].Start)
	}
}

func TestValidate_AcceptedBatchProperties(t *testing.T) {
	tr := tenMinuteTranscript()
	// Slide the valid batch around; every accepted batch must keep the invariants.
	for shift := 0; shift <= 30; shift += 3 {
		in := validIdeas()
		for i := range in {
			in[i].Start = in[i].Start.(int) - shift
			if in[i].Start.(int) < 0 {
				in[i].Start = 0
			}
		}
		out, err := Validate(envelope(t, in), tr)
		if err != nil {
			continue
		}
		if len(out) != BatchSize {
			t.Fatalf("shift %d: got %d ideas", shift, len(out))
		}
		for i, a := range out {
			d := a.EndSeconds - a.StartSeconds
			if d < MinDuration || d > MaxDuration {
				t.Fatalf("shift %d idea %d: duration %d", shift, i, d)
			}
			if a.StartSeconds < 0 || float64(a.EndSeconds) > tr.TotalDuration() {
				t.Fatalf("shift %d idea %d: out of bounds %d-%d", shift, i, a.StartSeconds, a.EndSeconds)
			}
			if a.Start != FormatMMSS(a.StartSeconds) || a.End != FormatMMSS(a.EndSeconds) {
				t.Fatalf("shift %d idea %d: display strings disagree", shift, i)
			}
			for j, b := range out {
				if i != j && a.StartSeconds < b.EndSeconds && b.StartSeconds < a.EndSeconds {
					t.Fatalf("shift %d: ideas %d and %d overlap", shift, i, j)
				}
			}
		}
	}
}

func ExampleFormatMMSS() {
	fmt.Println(FormatMMSS(0), FormatMMSS(75), FormatMMSS(3725))
	// Output: 00:00 01:15 62:05
}
