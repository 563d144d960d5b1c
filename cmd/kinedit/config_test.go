package main

import (
	"math"
	"testing"
)

func TestParseConfig(t *testing.T) {
	content := `# kinedit configuration
backend = "python3 engine/main.py"
file_type = "svg"
last_dir = "/tmp/models"
`
	cfg := parseConfig(content)

	if len(cfg.Backend) != 2 || cfg.Backend[0] != "python3" || cfg.Backend[1] != "engine/main.py" {
		t.Errorf("backend = %v", cfg.Backend)
	}
	if cfg.FileType != "svg" {
		t.Errorf("file_type = %q, want svg", cfg.FileType)
	}
	if cfg.LastDir != "/tmp/models" {
		t.Errorf("last_dir = %q", cfg.LastDir)
	}
}

func TestParseConfigIgnoresBadValues(t *testing.T) {
	cfg := parseConfig("file_type = \"gif\"\nbackend = \"\"\nnonsense line\n")

	def := DefaultConfig()
	if cfg.FileType != def.FileType {
		t.Errorf("bad file_type accepted: %q", cfg.FileType)
	}
	if len(cfg.Backend) != len(def.Backend) {
		t.Errorf("empty backend accepted: %v", cfg.Backend)
	}
}

func TestParseConfigEmpty(t *testing.T) {
	cfg := parseConfig("")
	def := DefaultConfig()
	if cfg.FileType != def.FileType {
		t.Errorf("empty config should yield defaults, got file_type %q", cfg.FileType)
	}
}

func TestResultPath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "result.json"},
		{"model.json", "model_result.json"},
		{"/tmp/nav15.json", "/tmp/nav15_result.json"},
		{"bare", "bare_result.json"},
	}
	for _, tt := range tests {
		if got := resultPath(tt.in); got != tt.want {
			t.Errorf("resultPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDistToSegment(t *testing.T) {
	// Point directly above the midpoint of a horizontal segment
	d := distToSegment(50, 10, 0, 0, 100, 0)
	if math.Abs(d-10) > 1e-9 {
		t.Errorf("mid distance = %v, want 10", d)
	}

	// Point beyond the end clamps to the endpoint
	d = distToSegment(110, 0, 0, 0, 100, 0)
	if math.Abs(d-10) > 1e-9 {
		t.Errorf("end distance = %v, want 10", d)
	}

	// Degenerate segment
	d = distToSegment(3, 4, 0, 0, 0, 0)
	if math.Abs(d-5) > 1e-9 {
		t.Errorf("point distance = %v, want 5", d)
	}
}
