package errors

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/julianstephens/quitlog/internal/logger"
)

// Format formats an error message with a consistent "Error: " prefix.
// Joined errors are listed one per line underneath the first.
func Format(err error) string {
	if err == nil {
		return ""
	}
	var multi interface{ Unwrap() []error }
	if errors.As(err, &multi) {
		var b strings.Builder
		fmt.Fprintf(&b, "Error: %d operation(s) failed", len(multi.Unwrap()))
		for _, e := range multi.Unwrap() {
			fmt.Fprintf(&b, "\n  - %v", e)
		}
		return b.String()
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}
