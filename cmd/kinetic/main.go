// Command kinetic is a CLI tool for working with kinetic gating models.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/patchclamp/kinedit/internal/logging"
	"github.com/patchclamp/kinedit/pkg/kinetic"
	"github.com/patchclamp/kinedit/pkg/modelfile"
	"github.com/patchclamp/kinedit/pkg/simulate"
)

const usage = `kinetic - ion channel gating model toolkit

Usage:
  kinetic <command> [options]

Commands:
  info       Show model information
  validate   Validate a model file
  render     Render a model to SVG or PNG
  simulate   Run a model through the simulation backend
  fmt        Rewrite a model file in canonical form

Examples:
  kinetic info nav15.json
  kinetic validate nav15.json
  kinetic render nav15.json -o nav15.svg
  kinetic simulate nav15.json --backend "python3 engine/main.py"
  kinetic fmt nav15.json

Use "kinetic <command> -h" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "info":
		cmdInfo(args)
	case "validate":
		cmdValidate(args)
	case "render":
		cmdRender(args)
	case "simulate":
		cmdSimulate(args)
	case "fmt":
		cmdFmt(args)
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Print(usage)
		os.Exit(1)
	}
}

func loadModel(path string) *kinetic.Model {
	m, err := modelfile.LoadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", path, err)
		os.Exit(1)
	}
	return m
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: kinetic info <input>")
		os.Exit(1)
	}

	m := loadModel(args[0])

	if m.ModelName != "" {
		fmt.Printf("Name:           %s\n", m.ModelName)
	}
	fmt.Printf("States:         %d\n", len(m.States))
	fmt.Printf("Transitions:    %d\n", len(m.Transitions))
	fmt.Printf("Rate functions: %d\n", len(m.RateFunctions))
	fmt.Printf("Total time:     %g ms\n", m.Parameters.TotalTime)
	fmt.Printf("Time step:      %g ms\n", m.Parameters.TimeStep)
	fmt.Println()

	open, closed := 0, 0
	for _, s := range m.States {
		if s.GateStatus == kinetic.GateOpen {
			open++
		} else {
			closed++
		}
	}
	fmt.Printf("Gates:          %d open, %d closed\n", open, closed)

	for _, l := range kinetic.ComputePairing(m.States, m.Transitions) {
		a := m.StateByID(atoiPair(l.Key, 0))
		b := m.StateByID(atoiPair(l.Key, 1))
		if a == nil || b == nil {
			continue
		}
		fwd, back := "-", "-"
		if l.Forward != nil {
			fwd = orDash(l.Forward.RateEquationID)
		}
		if l.Backward != nil {
			back = orDash(l.Backward.RateEquationID)
		}
		fmt.Printf("  %s <-> %s  (forward %s, backward %s)\n", a.DisplayName(), b.DisplayName(), fwd, back)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// atoiPair extracts one endpoint id from a pair key like "1-3".
func atoiPair(key string, idx int) int {
	parts := strings.SplitN(key, "-", 2)
	if idx >= len(parts) {
		return 0
	}
	n := 0
	for _, r := range parts[idx] {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}

func cmdValidate(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: kinetic validate <input>")
		os.Exit(1)
	}

	m := loadModel(args[0])
	rep := kinetic.Validate(m)
	if !rep.IsValid {
		for _, issue := range rep.Issues {
			fmt.Fprintln(os.Stderr, issue)
		}
		os.Exit(1)
	}

	fmt.Printf("%s: valid model with %d states, %d transitions\n",
		args[0], len(m.States), len(m.Transitions))
}

func cmdRender(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: kinetic render <input> [-o output]")
		os.Exit(1)
	}

	input := args[0]
	var output string

	for i := 1; i < len(args); i++ {
		switch args[i] {
		case "-o", "--output":
			if i+1 < len(args) {
				output = args[i+1]
				i++
			}
		}
	}

	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".svg"
	}

	m := loadModel(input)

	var err error
	switch ext := filepath.Ext(output); ext {
	case ".svg":
		svg := modelfile.GenerateSVG(m, modelfile.DefaultSVGOptions())
		err = os.WriteFile(output, []byte(svg), 0644)
	case ".png":
		var f *os.File
		f, err = os.Create(output)
		if err == nil {
			err = modelfile.RenderPNG(m, f, modelfile.DefaultPNGOptions())
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format: %s\n", ext)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", output, err)
		os.Exit(1)
	}

	fmt.Printf("Written: %s\n", output)
}

func cmdSimulate(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: kinetic simulate <input> [--backend command] [-o output] [-v]")
		os.Exit(1)
	}

	input := args[0]
	backend := []string{"python3", "engine/main.py"}
	var output string
	level := slog.LevelWarn

	for i := 1; i < len(args); i++ {
		switch args[i] {
		case "--backend":
			if i+1 < len(args) {
				backend = strings.Fields(args[i+1])
				i++
			}
		case "-o", "--output":
			if i+1 < len(args) {
				output = args[i+1]
				i++
			}
		case "-v", "--verbose":
			level = slog.LevelDebug
		}
	}

	m := loadModel(input)

	client := simulate.New(backend, logging.New(level))
	res, err := client.Run(context.Background(), m)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Simulation failed: %v\n", err)
		os.Exit(1)
	}

	if output == "" {
		os.Stdout.Write(res.Raw)
		fmt.Println()
		return
	}
	if err := os.WriteFile(output, append([]byte(nil), res.Raw...), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", output, err)
		os.Exit(1)
	}
	fmt.Printf("Simulated %d samples, written: %s\n", len(res.TimeMS), output)
}

func cmdFmt(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: kinetic fmt <input> [-o output]")
		os.Exit(1)
	}

	input := args[0]
	output := input

	for i := 1; i < len(args); i++ {
		switch args[i] {
		case "-o", "--output":
			if i+1 < len(args) {
				output = args[i+1]
				i++
			}
		}
	}

	m := loadModel(input)
	if err := modelfile.SaveFile(output, m); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", output, err)
		os.Exit(1)
	}
	fmt.Printf("Written: %s\n", output)
}
