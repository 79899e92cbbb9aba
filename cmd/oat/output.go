package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/oat-cli/oat/internal/fields"
	"github.com/oat-cli/oat/internal/openalex"
	"github.com/oat-cli/oat/internal/roster"
)

// WorkTitleMaxLen bounds titles in human-readable work listings.
const WorkTitleMaxLen = 70

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// ErrorDetail carries the machine-readable error code and message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the JSON error envelope written to stdout when a
// command fails in JSON mode.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// codeLabel names an exit code for the JSON error envelope.
func codeLabel(code int) string {
	switch code {
	case ExitConfigError:
		return "config"
	case ExitDataError:
		return "validation"
	case ExitRateLimited:
		return "rate_limited"
	default:
		return "error"
	}
}

// exitCodeFor maps an error onto a process exit code.
func exitCodeFor(err error) int {
	var invalid *fields.InvalidFieldsError
	var missing *roster.MissingColumnsError
	switch {
	case openalex.IsRateLimited(err):
		return ExitRateLimited
	case openalex.IsValidation(err), errors.As(err, &invalid):
		return ExitDataError
	case errors.As(err, &missing),
		errors.Is(err, roster.ErrEmptyFile),
		errors.Is(err, roster.ErrNoDataRows),
		errors.Is(err, roster.ErrNoMatchingRows),
		errors.Is(err, roster.ErrNoEntries):
		return ExitDataError
	default:
		return ExitError
	}
}

// exitWithError outputs an error in the appropriate format (human or JSON)
// and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: ErrorDetail{Code: codeLabel(code), Message: msg}})
	}
	os.Exit(code)
}

// fail exits with the code derived from the error's class.
func fail(err error) {
	exitWithError(exitCodeFor(err), "%v", err)
}

// warn writes a warning line to stderr in both output modes.
func warn(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// splitCommaList splits a comma-separated flag value into trimmed,
// non-empty entries.
func splitCommaList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
