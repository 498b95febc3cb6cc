package types

// TranscriptEntry is one caption line. Start and Duration are seconds.
type TranscriptEntry struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start_seconds"`
	Duration float64 `json:"duration_seconds"`
}

// End returns the offset at which the entry stops being spoken.
func (e TranscriptEntry) End() float64 {
	return e.Start + e.Duration
}

type Transcript struct {
	Entries  []TranscriptEntry `json:"entries"`
	Language string            `json:"language"`
}

// TotalDuration is start+duration of the last entry. Entries are expected in
// ascending start order.
func (t Transcript) TotalDuration() float64 {
	if len(t.Entries) == 0 {
		return 0
	}
	return t.Entries[len(t.Entries)-1].End()
}

type ClipIdea struct {
	StartSeconds     int    `json:"start_seconds"`
	EndSeconds       int    `json:"end_seconds"`
	Start            string `json:"start"`
	End              string `json:"end"`
	Hook             string `json:"hook"`
	Why              string `json:"why"`
	SuggestedCaption string `json:"suggested_caption,omitempty"`
}

// Request is the pipeline input as received from the extension.
type Request struct {
	VideoID      string `json:"videoId"`
	VideoURL     string `json:"videoUrl,omitempty"`
	Mode         string `json:"mode,omitempty"`
	LanguageHint string `json:"languageHint,omitempty"`
}

type Meta struct {
	TranscriptLanguage string `json:"transcript_language"`
	TranscriptSource   string `json:"transcript_source"`
	Model              string `json:"model"`
}

type SuccessResponse struct {
	VideoID string     `json:"videoId"`
	Ideas   []ClipIdea `json:"ideas"`
	Meta    Meta       `json:"meta"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
