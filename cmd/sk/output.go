package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Output formats accepted by --format.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// structuredOutput reports whether the command should emit machine-readable
// output instead of text.
func structuredOutput() bool {
	return outputFormat == formatJSON || outputFormat == formatYAML
}

// outputJSON outputs data as pretty-printed JSON to stdout.
func outputJSON(v interface{}) {
	if err := writeJSON(os.Stdout, v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		flushTelemetry()
		osExit(1)
	}
}

// outputStructured writes v in the selected --format.
func outputStructured(w io.Writer, v interface{}) {
	var err error
	if outputFormat == formatYAML {
		err = writeYAML(w, v)
	} else {
		err = writeJSON(w, v)
	}
	if err != nil {
		FatalError("encoding %s output: %v", outputFormat, err)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// writeYAML round-trips through JSON so the json struct tags name the fields.
func writeYAML(w io.Writer, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var generic interface{}
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return err
	}
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(generic); err != nil {
		return err
	}
	return encoder.Close()
}

// outputJSONError outputs an error as JSON to stderr and exits with code 1.
func outputJSONError(err error, code string) {
	errObj := map[string]string{"error": err.Error()}
	if code != "" {
		errObj["code"] = code
	}
	_ = writeJSON(os.Stderr, errObj) // Best effort: the process exits either way
	flushTelemetry()
	osExit(1)
}
