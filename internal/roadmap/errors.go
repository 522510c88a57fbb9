package roadmap

import "fmt"

// ConfigurationError reports a root issue that cannot anchor a labeling run.
type ConfigurationError struct {
	Key     string
	Summary string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("root issue %s has no valid prefix in summary: %q", e.Key, e.Summary)
}

// WriteError reports a label write that failed for one issue.
type WriteError struct {
	Key    string
	Labels []string
	Err    error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("add labels %v to %s: %v", e.Labels, e.Key, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
