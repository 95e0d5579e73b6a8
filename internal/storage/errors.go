package storage

import "fmt"

// LoadError reports a tasks or cards source that could not be read or does
// not have the expected tabular shape. It is fatal to startup.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// LogWriteError reports an action record that could not be persisted. The
// record is dropped; callers surface the error as a warning.
type LogWriteError struct {
	Path string
	Err  error
}

func (e *LogWriteError) Error() string {
	return fmt.Sprintf("writing action log %s: %v", e.Path, e.Err)
}

func (e *LogWriteError) Unwrap() error { return e.Err }
