package openai

import "testing"

func TestValidateBaseURL(t *testing.T) {
	tests := []struct {
		name         string
		baseURL      string
		allowedHosts []string
		wantErr      bool
	}{
		{name: "empty uses default", baseURL: ""},
		{name: "openai with trailing slash", baseURL: "https://api.openai.com/"},
		{name: "openrouter", baseURL: "https://openrouter.ai/api"},
		{name: "reject non-absolute URL", baseURL: "api.openai.com", wantErr: true},
		{name: "reject http", baseURL: "http://api.openai.com", wantErr: true},
		{name: "reject unknown host by default", baseURL: "https://evil.example", wantErr: true},
		{name: "reject userinfo", baseURL: "https://u:p@api.openai.com", wantErr: true},
		{
			name:         "allow configured host",
			baseURL:      "https://llm-proxy.internal",
			allowedHosts: []string{"https://llm-proxy.internal:443/"},
		},
		{
			name:         "configured list replaces defaults",
			baseURL:      "https://api.openai.com",
			allowedHosts: []string{"llm-proxy.internal"},
			wantErr:      true,
		},
		{name: "reject query", baseURL: "https://api.openai.com?x=1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBaseURL(tt.baseURL, tt.allowedHosts)
			if tt.wantErr && err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestNormalizeAllowedHosts_DefaultWhenEmpty(t *testing.T) {
	out := normalizeAllowedHosts([]string{" ", "https://", "http://"})
	if len(out) != len(defaultAllowedHosts) {
		t.Fatalf("expected default allowed hosts, got %v", out)
	}
}
