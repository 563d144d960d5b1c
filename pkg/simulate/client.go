// Package simulate is the boundary to the external simulation engine.
// The engine is a separate process: it reads a JSON model payload on
// stdin and writes a JSON result on stdout, reporting failures on
// stderr with a non-zero exit. This package does not interpret the
// numerical results; it validates the model, runs the process, and
// checks the result's shape.
package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/patchclamp/kinedit/pkg/kinetic"
	"github.com/patchclamp/kinedit/pkg/modelfile"
)

// ErrInvalidModel marks a run refused because validation failed. The
// wrapped message carries every validation issue.
var ErrInvalidModel = errors.New("model failed validation")

// Result holds the parallel time-series returned by the backend. Raw
// preserves the full response for the presentation layer; this core
// only checks shape, never meaning.
type Result struct {
	TimeMS         []float64 `json:"time_ms"`
	TotalCurrentPA []float64 `json:"total_current_pA"`
	VoltageMV      []float64 `json:"voltage_mV"`

	Raw json.RawMessage `json:"-"`
}

// Client runs simulations through an external backend command.
type Client struct {
	// Command is the backend invocation, e.g.
	// ["python3", "engine/main.py"]. The model payload is piped to its
	// stdin.
	Command []string

	Logger *slog.Logger
}

// New creates a client for the given backend command.
func New(command []string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{Command: command, Logger: logger}
}

// Run validates the model, submits it to the backend, and returns the
// parsed result. Submission is blocked while validation reports any
// issue. The context cancels the backend process.
func (c *Client) Run(ctx context.Context, m *kinetic.Model) (*Result, error) {
	if len(c.Command) == 0 {
		return nil, errors.New("no backend command configured")
	}

	if rep := kinetic.Validate(m); !rep.IsValid {
		return nil, fmt.Errorf("%w:\n- %s", ErrInvalidModel, strings.Join(rep.Issues, "\n- "))
	}

	payload, err := modelfile.Marshal(m, false)
	if err != nil {
		return nil, fmt.Errorf("serialize model: %w", err)
	}

	c.Logger.Info("running simulation",
		"model", m.ModelName,
		"states", len(m.States),
		"transitions", len(m.Transitions),
		"backend", c.Command[0])

	cmd := exec.CommandContext(ctx, c.Command[0], c.Command[1:]...)
	cmd.Stdin = bytes.NewReader(payload)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("backend failed: %s: %w", msg, err)
		}
		return nil, fmt.Errorf("backend failed: %w", err)
	}

	raw := bytes.TrimSpace(stdout.Bytes())
	var res Result
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("parse backend response: %w", err)
	}
	res.Raw = json.RawMessage(append([]byte(nil), raw...))

	if err := res.check(); err != nil {
		return nil, fmt.Errorf("malformed backend response: %w", err)
	}

	c.Logger.Info("simulation complete", "samples", len(res.TimeMS))
	return &res, nil
}

// check verifies the result's structural contract: three series of
// equal length with non-decreasing time.
func (r *Result) check() error {
	n := len(r.TimeMS)
	if n == 0 {
		return errors.New("empty time_ms series")
	}
	if len(r.TotalCurrentPA) != n || len(r.VoltageMV) != n {
		return fmt.Errorf("series lengths differ: time_ms=%d total_current_pA=%d voltage_mV=%d",
			n, len(r.TotalCurrentPA), len(r.VoltageMV))
	}
	for i := 1; i < n; i++ {
		if r.TimeMS[i] < r.TimeMS[i-1] {
			return fmt.Errorf("time_ms decreases at index %d", i)
		}
	}
	return nil
}
