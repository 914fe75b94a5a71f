package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"claimgen/internal/predicate"
)

// eval validates a wire-form predicate file and, when a data file is given,
// dry-runs it. Output matches the preview endpoint: {valid, matched, errors}.
func runEval(args []string) int {
	fs := flag.NewFlagSet("eval", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var predicatePath string
	var dataPath string
	fs.StringVar(&predicatePath, "predicate", "", "predicate JSON path")
	fs.StringVar(&dataPath, "data", "", "audit data JSON path (optional)")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if predicatePath == "" {
		fmt.Fprintln(os.Stderr, "eval requires --predicate")
		return 1
	}

	payload, err := os.ReadFile(predicatePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read predicate: %v\n", err)
		return 1
	}

	var sample map[string]any
	if dataPath != "" {
		raw, err := os.ReadFile(dataPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read data: %v\n", err)
			return 1
		}
		if err := json.Unmarshal(raw, &sample); err != nil {
			fmt.Fprintf(os.Stderr, "parse data: %v\n", err)
			return 1
		}
		if sample == nil {
			sample = map[string]any{}
		}
	}

	result := predicate.Preview(payload, sample)
	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal result: %v\n", err)
		return 1
	}
	fmt.Println(string(encoded))
	if !result.Valid {
		return 1
	}
	return 0
}
