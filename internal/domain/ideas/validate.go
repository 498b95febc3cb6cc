// Package ideas turns untrusted model output into a checked batch of clip
// ideas.
//
// Model text is decoded into a loosely typed tree first, then every field is
// checked by hand. Nothing the model formats itself is passed through: the
// MM:SS strings are always derived from the validated integer offsets.
//
// Validation is strict. A single bad candidate rejects the whole batch.
package ideas

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/forPelevin/clipideas/internal/types"
)

const (
	BatchSize   = 5
	MinDuration = 25
	MaxDuration = 70
)

// ValidationError explains why a batch was rejected.
type ValidationError struct {
	Index  int // candidate index, -1 for batch-level problems
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return "invalid ideas: " + e.Reason
	}
	return fmt.Sprintf("invalid idea #%d: %s", e.Index+1, e.Reason)
}

func batchErr(format string, args ...any) error {
	return &ValidationError{Index: -1, Reason: fmt.Sprintf(format, args...)}
}

func ideaErr(i int, format string, args ...any) error {
	return &ValidationError{Index: i, Reason: fmt.Sprintf(format, args...)}
}

// Validate parses raw model output and checks it against the transcript.
// Accepted shapes are {"ideas":[...]} and a bare array, optionally wrapped in
// a markdown fence or surrounded by chatter.
func Validate(raw string, tr types.Transcript) ([]types.ClipIdea, error) {
	items, err := decodeCandidates(raw)
	if err != nil {
		return nil, err
	}
	if len(items) != BatchSize {
		return nil, batchErr("expected exactly %d ideas, got %d", BatchSize, len(items))
	}

	total := tr.TotalDuration()
	out := make([]types.ClipIdea, 0, BatchSize)
	for i, it := range items {
		idea, err := checkCandidate(i, it, total)
		if err != nil {
			return nil, err
		}
		out = append(out, idea)
	}

	if err := checkOverlaps(out); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeCandidates(raw string) ([]any, error) {
	clean, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(strings.NewReader(clean))
	dec.UseNumber()
	var root any
	if err := dec.Decode(&root); err != nil {
		return nil, batchErr("not valid JSON: %v", err)
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, batchErr("unexpected data after the JSON value")
	}

	switch v := root.(type) {
	case []any:
		return v, nil
	case map[string]any:
		ideas, ok := v["ideas"]
		if !ok {
			return nil, batchErr(`missing "ideas" field`)
		}
		arr, ok := ideas.([]any)
		if !ok {
			return nil, batchErr(`"ideas" is not a list`)
		}
		return arr, nil
	default:
		return nil, batchErr("unexpected JSON value %T", root)
	}
}

func checkCandidate(i int, it any, total float64) (types.ClipIdea, error) {
	obj, ok := it.(map[string]any)
	if !ok {
		return types.ClipIdea{}, ideaErr(i, "not an object")
	}

	start, err := intField(obj, "start_seconds")
	if err != nil {
		return types.ClipIdea{}, ideaErr(i, "%v", err)
	}
	end, err := intField(obj, "end_seconds")
	if err != nil {
		return types.ClipIdea{}, ideaErr(i, "%v", err)
	}
	hook, err := textField(obj, "hook", true)
	if err != nil {
		return types.ClipIdea{}, ideaErr(i, "%v", err)
	}
	why, err := textField(obj, "why", true)
	if err != nil {
		return types.ClipIdea{}, ideaErr(i, "%v", err)
	}
	caption, err := textField(obj, "suggested_caption", false)
	if err != nil {
		return types.ClipIdea{}, ideaErr(i, "%v", err)
	}

	if start >= end {
		return types.ClipIdea{}, ideaErr(i, "start_seconds %d is not before end_seconds %d", start, end)
	}
	if d := end - start; d < MinDuration || d > MaxDuration {
		return types.ClipIdea{}, ideaErr(i, "duration %ds outside %d..%ds", d, MinDuration, MaxDuration)
	}
	if float64(end) > total {
		return types.ClipIdea{}, ideaErr(i, "end_seconds %d exceeds transcript length %.2fs", end, total)
	}

	return types.ClipIdea{
		StartSeconds:     start,
		EndSeconds:       end,
		Start:            FormatMMSS(start),
		End:              FormatMMSS(end),
		Hook:             hook,
		Why:              why,
		SuggestedCaption: caption,
	}, nil
}

// intField reads a non-negative JSON number and truncates the fractional
// part toward zero. The sign is checked before truncating so -0.9 is not
// read as 0.
func intField(obj map[string]any, key string) (int, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		return 0, fmt.Errorf("missing %s", key)
	}
	n, ok := v.(json.Number)
	if !ok {
		return 0, fmt.Errorf("%s must be a number, got %T", key, v)
	}
	f, err := n.Float64()
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%s is not a finite number", key)
	}
	if f < 0 {
		return 0, fmt.Errorf("%s %s is negative", key, n.String())
	}
	if f > 1e9 {
		return 0, fmt.Errorf("%s out of range", key)
	}
	return int(math.Trunc(f)), nil
}

// textField returns the trimmed string at key. A missing or null optional
// field yields "".
func textField(obj map[string]any, key string, required bool) (string, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		if required {
			return "", fmt.Errorf("missing %s", key)
		}
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string, got %T", key, v)
	}
	s = strings.TrimSpace(s)
	if required && s == "" {
		return "", fmt.Errorf("%s is empty", key)
	}
	return s, nil
}

// checkOverlaps rejects any pair of [start, end) intervals that intersect.
func checkOverlaps(in []types.ClipIdea) error {
	idx := make([]int, len(in))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return in[idx[a]].StartSeconds < in[idx[b]].StartSeconds })
	for k := 1; k < len(idx); k++ {
		prev, cur := in[idx[k-1]], in[idx[k]]
		if cur.StartSeconds < prev.EndSeconds {
			return ideaErr(idx[k], "overlaps idea #%d (%s-%s vs %s-%s)",
				idx[k-1]+1, prev.Start, prev.End, cur.Start, cur.End)
		}
	}
	return nil
}

func extractJSON(s string) (string, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return "", batchErr("empty model output")
	}

	// Strip markdown code fences.
	if strings.HasPrefix(t, "```") {
		if i := strings.Index(t, "\n"); i >= 0 {
			t = t[i+1:]
		}
		if j := strings.LastIndex(t, "```"); j >= 0 {
			t = t[:j]
		}
		t = strings.TrimSpace(t)
	}

	start := strings.IndexAny(t, "{[")
	if start < 0 {
		return "", batchErr("no JSON found in %q", truncate(t, 120))
	}
	closer := byte('}')
	if t[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(t, closer)
	if end <= start {
		return "", batchErr("unterminated JSON in %q", truncate(t, 120))
	}
	return t[start : end+1], nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// IsValidationError reports whether err came from Validate.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
