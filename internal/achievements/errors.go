package achievements

import (
	"fmt"
	"strings"
)

// WriteError is one failed record write.
type WriteError struct {
	TemplateID string
	Op         string // "create" or "update"
	Err        error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.TemplateID, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// BatchError collects every failed write of one reconciliation. Writes that
// succeeded alongside it are still applied.
type BatchError struct {
	Failures []*WriteError
}

func (e *BatchError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = f.Error()
	}
	return fmt.Sprintf("%d achievement write(s) failed: %s", len(e.Failures), strings.Join(parts, "; "))
}

func (e *BatchError) Unwrap() []error {
	out := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		out[i] = f
	}
	return out
}
