package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		name      string
		verbose   bool
		wantDebug bool
	}{
		{"quiet", false, false},
		{"verbose", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(&buf, tt.verbose)

			logger.Debug("scanned package", "files", 2)
			logger.Warn("skipped step", "pattern", "^x$")

			out := buf.String()
			if got := strings.Contains(out, "scanned package"); got != tt.wantDebug {
				t.Errorf("debug record present = %v, want %v:\n%s", got, tt.wantDebug, out)
			}
			if !strings.Contains(out, "level=WARN") || !strings.Contains(out, `pattern=^x$`) {
				t.Errorf("warn record missing:\n%s", out)
			}
		})
	}
}

func TestRedactHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, true).With("github_token", "ghp_abc")

	logger.Info("publishing", "Authorization", "Bearer x", slog.Group("gist", "token", "t", "public", false))

	out := buf.String()
	for _, secret := range []string{"ghp_abc", "Bearer x", "token=t"} {
		if strings.Contains(out, secret) {
			t.Errorf("log output leaks %q:\n%s", secret, out)
		}
	}
	if !strings.Contains(out, "gist.public=false") {
		t.Errorf("non-sensitive attribute was masked:\n%s", out)
	}
	if strings.Count(out, MaskValue) != 3 {
		t.Errorf("expected 3 masked values:\n%s", out)
	}
}

func TestDiscard(t *testing.T) {
	// must not panic
	Discard().Error("dropped")
}
