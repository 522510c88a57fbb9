package main

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordExit replaces the telemetry flush and process exit with recorders.
func recordExit(t *testing.T) *[]string {
	t.Helper()
	var events []string
	origFlush, origExit, origFormat := flushTelemetry, osExit, outputFormat
	t.Cleanup(func() {
		flushTelemetry, osExit, outputFormat = origFlush, origExit, origFormat
	})
	flushTelemetry = func() { events = append(events, "flush") }
	osExit = func(code int) { events = append(events, "exit:"+strconv.Itoa(code)) }
	return &events
}

func TestFailFlushesTelemetryBeforeExit(t *testing.T) {
	events := recordExit(t)
	outputFormat = formatText

	fail(errors.New("fetch DBX-1: boom"))

	assert.Equal(t, []string{"flush", "exit:1"}, *events)
}

func TestFailStructuredFlushesTelemetryBeforeExit(t *testing.T) {
	events := recordExit(t)
	outputFormat = formatJSON

	fail(errors.New("fetch DBX-1: boom"))

	// The exit recorder returns, so fail falls through to FatalError.
	require.GreaterOrEqual(t, len(*events), 2)
	assert.Equal(t, []string{"flush", "exit:1"}, (*events)[:2])
}

func TestFatalErrorWithHintFlushesTelemetry(t *testing.T) {
	events := recordExit(t)

	FatalErrorWithHint("missing ATLASSIAN_URL", "Add it to .env")

	assert.Equal(t, []string{"flush", "exit:1"}, *events)
}
