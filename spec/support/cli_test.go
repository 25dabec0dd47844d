package support

import (
	"runtime"
	"testing"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "simple arguments",
			input:    "steps.yaml steps.html",
			expected: []string{"steps.yaml", "steps.html"},
		},
		{
			name:     "flags",
			input:    "./steps steps.md -f markdown --module-version=1.0",
			expected: []string{"./steps", "steps.md", "-f", "markdown", "--module-version=1.0"},
		},
		{
			name:     "single quoted path",
			input:    `'my steps' 'out dir/steps.html'`,
			expected: []string{"my steps", "out dir/steps.html"},
		},
		{
			name:     "quote inside other quotes",
			input:    `--gist-description="Steps for 'cukes'"`,
			expected: []string{"--gist-description=Steps for 'cukes'"},
		},
		{
			name:     "empty string",
			input:    "",
			expected: nil,
		},
		{
			name:     "multiple spaces",
			input:    "a    b",
			expected: []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseArgs(tt.input)
			if len(result) != len(tt.expected) {
				t.Fatalf("parseArgs(%q) = %v, want %v", tt.input, result, tt.expected)
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("parseArgs(%q)[%d] = %q, want %q", tt.input, i, result[i], tt.expected[i])
				}
			}
		})
	}
}

func TestNewCLIRunner(t *testing.T) {
	t.Run("default binary", func(t *testing.T) {
		t.Setenv("STEPEXPORT_BIN", "")
		if got := NewCLIRunner("").BinaryPath; got != "stepexport" {
			t.Errorf("BinaryPath = %q, want %q", got, "stepexport")
		}
	})

	t.Run("binary from environment", func(t *testing.T) {
		t.Setenv("STEPEXPORT_BIN", "/tmp/bin/stepexport")
		if got := NewCLIRunner("").BinaryPath; got != "/tmp/bin/stepexport" {
			t.Errorf("BinaryPath = %q", got)
		}
	})

	t.Run("explicit path", func(t *testing.T) {
		if got := NewCLIRunner("./bin/stepexport").BinaryPath; got != "./bin/stepexport" {
			t.Errorf("BinaryPath = %q", got)
		}
	})
}

func TestCLIRunnerRun(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Skipping on Windows - shell behavior differs")
	}

	t.Run("strips binary name and captures stdout", func(t *testing.T) {
		runner := NewCLIRunner("echo")
		result := runner.Run("stepexport hello world")
		if !result.Success() {
			t.Fatalf("ExitCode = %d, want 0", result.ExitCode)
		}
		if result.StdoutTrimmed() != "hello world" {
			t.Errorf("Stdout = %q, want %q", result.StdoutTrimmed(), "hello world")
		}
		if runner.LastResult != result {
			t.Error("LastResult not stored")
		}
	})

	t.Run("captures exit code and stderr", func(t *testing.T) {
		runner := NewCLIRunner("sh")
		result := runner.RunArgs("-c", "echo error >&2; exit 3")
		if result.ExitCode != 3 {
			t.Errorf("ExitCode = %d, want 3", result.ExitCode)
		}
		if !result.StderrContains("error") {
			t.Errorf("Stderr = %q, should contain 'error'", result.Stderr)
		}
	})

	t.Run("passes runner env", func(t *testing.T) {
		runner := NewCLIRunner("sh")
		runner.SetEnv("STEPEXPORT_FORMAT", "json")
		result := runner.RunArgs("-c", "echo $STEPEXPORT_FORMAT")
		if !result.StdoutContains("json") {
			t.Errorf("Stdout = %q, want env value", result.Stdout)
		}
	})
}

func TestCLIRunnerBinaryNotFound(t *testing.T) {
	result := NewCLIRunner("/nonexistent/binary/path").RunArgs("x")

	if result.ExitCode != -1 {
		t.Errorf("ExitCode = %d, want -1 for missing binary", result.ExitCode)
	}
	if result.Err == nil {
		t.Error("Err should not be nil for missing binary")
	}
}
