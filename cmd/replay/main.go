package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/danielpatrickdp/adaptive-state/campaign-orchestrator/internal/orchestrator"
	"github.com/danielpatrickdp/adaptive-state/campaign-orchestrator/internal/replay"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture (.json, .yaml or .yml)")
	templatesPath := flag.String("templates", "", "optional template library overriding the built-in one")
	verbose := flag.Bool("v", false, "print produced types for passing steps too")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.yaml [--templates lib.yaml] [-v]")
		os.Exit(2)
	}

	os.Exit(run(*fixturePath, *templatesPath, *verbose))
}

// #endregion main

// #region run

func run(fixturePath, templatesPath string, verbose bool) int {
	f, err := replay.LoadFixture(fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}

	var lib *orchestrator.Library
	if templatesPath != "" {
		lib, err = orchestrator.LoadLibrary(templatesPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load templates: %v\n", err)
			return 2
		}
	}

	if f.Description != "" {
		fmt.Printf("%s\n\n", f.Description)
	}
	results := replay.Replay(f, lib)
	return printResults(results, verbose)
}

// #endregion run

// #region output

// printResults outputs a per-step table and returns the exit code.
func printResults(results []replay.StepResult, verbose bool) int {
	fmt.Printf("%-16s| %-7s| %-10s| %s\n", "Step", "Events", "Conflicts", "Match")
	fmt.Printf("%-16s+%-8s+%-11s+%s\n", "----------------", "--------", "-----------", "------")

	for _, r := range results {
		match := "OK"
		if !r.Passed() {
			match = "DIFF"
		}
		fmt.Printf("%-16s| %-7d| %-10d| %s\n", r.StepID, len(r.EventTypes), len(r.ConflictTypes), match)

		if r.Err != nil {
			fmt.Printf("  error: %v\n", r.Err)
		}
		for _, m := range r.Mismatches {
			fmt.Printf("  %s\n", m)
		}
		if verbose && r.Passed() {
			fmt.Printf("  events:    %s\n", strings.Join(r.EventTypes, ", "))
			fmt.Printf("  conflicts: %s\n", strings.Join(r.ConflictTypes, ", "))
		}
	}

	s := replay.Summarize(results)
	fmt.Printf("\nSummary: %d steps, %d match, %d diverge (%d events, %d conflicts)\n",
		s.TotalSteps, s.Passed, s.Failed, s.Events, s.Conflicts)

	if s.Failed > 0 {
		return 1
	}
	return 0
}

// #endregion output
