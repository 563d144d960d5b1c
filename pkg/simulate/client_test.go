package simulate

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patchclamp/kinedit/internal/logging"
	"github.com/patchclamp/kinedit/pkg/kinetic"
)

func validModel() *kinetic.Model {
	return &kinetic.Model{
		ModelName: "Two-state",
		States: []kinetic.State{
			{ID: 1, Name: "C", X: 100, Y: 100, GateStatus: kinetic.GateClosed},
			{ID: 2, Name: "O", X: 300, Y: 100, GateStatus: kinetic.GateOpen},
		},
		Transitions: []kinetic.Transition{
			{ID: 1, From: 1, To: 2, RateEquationID: "r1"},
			{ID: 2, From: 2, To: 1, RateEquationID: "r2"},
		},
		Parameters: kinetic.Parameters{TotalTime: 100, TimeStep: 0.1},
	}
}

func shClient(t *testing.T, script string) *Client {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("sh stub backends require a POSIX shell")
	}
	return New([]string{"sh", "-c", script}, logging.NewNop())
}

func TestRunSuccess(t *testing.T) {
	c := shClient(t, `cat >/dev/null; echo '{"time_ms":[0,1,2],"voltage_mV":[-80,-80,40],"total_current_pA":[0,0.5,1.5]}'`)

	res, err := c.Run(context.Background(), validModel())
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 1, 2}, res.TimeMS)
	assert.Equal(t, []float64{-80, -80, 40}, res.VoltageMV)
	assert.Equal(t, []float64{0, 0.5, 1.5}, res.TotalCurrentPA)
	assert.NotEmpty(t, res.Raw)
}

func TestRunPipesModelToStdin(t *testing.T) {
	// The stub greps its stdin for the model name and fails loudly if
	// the payload never arrived.
	c := shClient(t, `grep -q "Two-state" || { echo "no payload" >&2; exit 1; }; echo '{"time_ms":[0],"voltage_mV":[0],"total_current_pA":[0]}'`)

	_, err := c.Run(context.Background(), validModel())
	require.NoError(t, err)
}

func TestRunRefusesInvalidModel(t *testing.T) {
	// Backend would succeed, but validation must stop the run first.
	c := shClient(t, `echo '{"time_ms":[0],"voltage_mV":[0],"total_current_pA":[0]}'`)

	m := validModel()
	m.Transitions = nil

	_, err := c.Run(context.Background(), m)
	require.ErrorIs(t, err, ErrInvalidModel)
	assert.Contains(t, err.Error(), "incoming")
}

func TestRunSurfacesStderr(t *testing.T) {
	c := shClient(t, `cat >/dev/null; echo "rate function r1: division by zero" >&2; exit 1`)

	_, err := c.Run(context.Background(), validModel())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "division by zero")
}

func TestRunRejectsMalformedResponse(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   string
	}{
		{
			name:   "not json",
			script: `cat >/dev/null; echo "oops"`,
			want:   "parse backend response",
		},
		{
			name:   "unequal lengths",
			script: `cat >/dev/null; echo '{"time_ms":[0,1],"voltage_mV":[0],"total_current_pA":[0,1]}'`,
			want:   "series lengths differ",
		},
		{
			name:   "time goes backwards",
			script: `cat >/dev/null; echo '{"time_ms":[0,2,1],"voltage_mV":[0,0,0],"total_current_pA":[0,0,0]}'`,
			want:   "time_ms decreases",
		},
		{
			name:   "empty series",
			script: `cat >/dev/null; echo '{"time_ms":[],"voltage_mV":[],"total_current_pA":[]}'`,
			want:   "empty time_ms",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := shClient(t, tt.script)
			_, err := c.Run(context.Background(), validModel())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRunContextCancel(t *testing.T) {
	c := shClient(t, `cat >/dev/null; sleep 10`)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := c.Run(ctx, validModel())
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRunNoCommand(t *testing.T) {
	c := New(nil, logging.NewNop())
	_, err := c.Run(context.Background(), validModel())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no backend command")
}
