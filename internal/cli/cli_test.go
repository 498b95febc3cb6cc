package cli

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestIdeas_ArgsValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "no args", args: []string{"ideas"}, want: "accepts 1 arg(s), received 0"},
		{name: "too many args", args: []string{"ideas", "dQw4w9WgXcQ", "extra"}, want: "accepts 1 arg(s), received 2"},
		{name: "unknown flag", args: []string{"ideas", "dQw4w9WgXcQ", "--wat"}, want: "unknown flag: --wat"},
		{name: "bad copy value", args: []string{"ideas", "dQw4w9WgXcQ", "--copy=maybe"}, want: `invalid argument "maybe" for "--copy"`},
		{name: "malformed id", args: []string{"ideas", "nope"}, want: "invalid video"},
		{name: "serve takes no args", args: []string{"serve", "x"}, want: `unknown command "x"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestIdeas_MissingKeyFailsBeforeNetwork(t *testing.T) {
	t.Setenv("CLIPIDEAS_CONFIG", "")
	t.Setenv("OPENAI_API_KEY", "")
	chdir(t, t.TempDir())

	_, err := execute(t, "ideas", "https://youtu.be/dQw4w9WgXcQ")
	if err == nil || !strings.Contains(err.Error(), "OPENAI_API_KEY is required") {
		t.Fatalf("expected missing key error, got %v", err)
	}
}

func TestIdeas_RejectsForeignBaseURL(t *testing.T) {
	t.Setenv("CLIPIDEAS_CONFIG", "")
	t.Setenv("OPENAI_API_KEY", "dummy")
	t.Setenv("OPENAI_BASE_URL", "https://evil.example")
	chdir(t, t.TempDir())

	_, err := execute(t, "ideas", "dQw4w9WgXcQ")
	if err == nil || !strings.Contains(err.Error(), "is not in OPENAI_ALLOWED_HOSTS") {
		t.Fatalf("expected allow-list error, got %v", err)
	}
}

// chdir changes the working directory for the duration of the test
// (stand-in for testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
