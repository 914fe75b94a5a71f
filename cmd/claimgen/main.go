package main

import (
	"fmt"
	"os"
)

func main() {
	args := os.Args[1:]
	cmd := "serve"
	if len(args) > 0 {
		cmd = args[0]
		args = args[1:]
	}
	switch cmd {
	case "serve":
		os.Exit(runServe(args))
	case "eval":
		os.Exit(runEval(args))
	case "compile":
		os.Exit(runCompile(args))
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\nusage: claimgen [serve|eval|compile] [flags]\n", cmd)
		os.Exit(1)
	}
}
