package main

import (
	"fmt"
	"os"
)

// osExit is replaced in tests.
var osExit = os.Exit

// FatalError writes an error message to stderr, flushes telemetry and exits
// with code 1.
// Use this for failures that prevent the command from completing:
// bad arguments, missing configuration, or a root issue that cannot be read.
//
// Example:
//
//	if err != nil {
//	    FatalError("%v", err)
//	}
func FatalError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	flushTelemetry()
	osExit(1)
}

// FatalErrorWithHint writes an error message with a hint to stderr and exits.
//
// Example:
//
//	FatalErrorWithHint("missing ATLASSIAN_URL", "Add it to .env in the project directory")
func FatalErrorWithHint(message, hint string) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", message)
	fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
	flushTelemetry()
	osExit(1)
}

// WarnError writes a warning message to stderr and returns.
// Use this for failures the command can continue past, such as a label
// write that failed during label-roadmap.
func WarnError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
}
