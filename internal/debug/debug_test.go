package debug

import (
	"bytes"
	"testing"
)

// withState resets the package switches for one test.
func withState(t *testing.T, env, verbose, quiet bool) {
	t.Helper()
	oldEnabled, oldVerbose, oldQuiet := enabled, verboseMode, quietMode
	enabled, verboseMode, quietMode = env, verbose, quiet
	t.Cleanup(func() {
		enabled, verboseMode, quietMode = oldEnabled, oldVerbose, oldQuiet
	})
}

func TestEnabled(t *testing.T) {
	tests := []struct {
		name    string
		env     bool
		verbose bool
		want    bool
	}{
		{"env only", true, false, true},
		{"verbose only", false, true, true},
		{"neither", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withState(t, tt.env, tt.verbose, false)
			if got := Enabled(); got != tt.want {
				t.Errorf("Enabled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLogf(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		want    string
	}{
		{"writes when verbose", true, "Debug: walked 3 issues\n"},
		{"silent otherwise", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withState(t, false, tt.verbose, false)
			var out, errOut bytes.Buffer
			restore := SetOutput(&out, &errOut)
			defer restore()

			Logf("Debug: walked %d issues\n", 3)

			if got := errOut.String(); got != tt.want {
				t.Errorf("stderr = %q, want %q", got, tt.want)
			}
			if out.Len() != 0 {
				t.Errorf("stdout should be untouched, got %q", out.String())
			}
		})
	}
}

func TestPrintNormalRespectsQuiet(t *testing.T) {
	tests := []struct {
		name  string
		quiet bool
		want  string
	}{
		{"prints normally", false, "Total: 4 issues\n"},
		{"suppressed when quiet", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withState(t, false, false, tt.quiet)
			var out bytes.Buffer
			restore := SetOutput(&out, nil)
			defer restore()

			PrintNormal("Total: %d issues\n", 4)

			if got := out.String(); got != tt.want {
				t.Errorf("stdout = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSetQuietAndIsQuiet(t *testing.T) {
	withState(t, false, false, false)
	SetQuiet(true)
	if !IsQuiet() {
		t.Error("IsQuiet() = false after SetQuiet(true)")
	}
	SetQuiet(false)
	if IsQuiet() {
		t.Error("IsQuiet() = true after SetQuiet(false)")
	}
}
