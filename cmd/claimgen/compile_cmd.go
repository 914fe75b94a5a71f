package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"claimgen/internal/usecase"
)

// compile turns a legacy free-text rule expression into the wire-form
// predicate tree, for migrating early catalogs exported as plain expressions.
func runCompile(args []string) int {
	fs := flag.NewFlagSet("compile", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var expr string
	var inPath string
	var outPath string
	fs.StringVar(&expr, "expr", "", "legacy expression to compile")
	fs.StringVar(&inPath, "in", "", "read the expression from a file instead")
	fs.StringVar(&outPath, "out", "", "output JSON path (default stdout)")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if expr == "" && inPath == "" {
		fmt.Fprintln(os.Stderr, "compile requires --expr or --in")
		return 1
	}
	if inPath != "" {
		raw, err := os.ReadFile(inPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read expression: %v\n", err)
			return 1
		}
		expr = strings.TrimSpace(string(raw))
	}

	payload, err := usecase.CompileLegacyExpression(expr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "compile expression: %v\n", err)
		return 1
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, payload, "", "  "); err != nil {
		pretty.Write(payload)
	}
	pretty.WriteByte('\n')

	if outPath == "" {
		_, err = os.Stdout.Write(pretty.Bytes())
	} else {
		err = os.WriteFile(outPath, pretty.Bytes(), 0o644)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "write output: %v\n", err)
		return 1
	}
	return 0
}
