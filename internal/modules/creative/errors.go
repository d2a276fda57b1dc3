package creative

import (
	"fmt"

	"github.com/yungbote/hotflow/internal/platform/apierr"
)

// FormatError reports a model response that cannot be turned into the
// requested creatives. Nothing is repaired or retried.
type FormatError struct {
	Reason  string
	Snippet string
}

func (e *FormatError) Error() string {
	if e == nil {
		return "unusable model response"
	}
	if e.Snippet == "" {
		return "unusable model response: " + e.Reason
	}
	return fmt.Sprintf("unusable model response: %s (response starts %q)", e.Reason, e.Snippet)
}

func (e *FormatError) ErrorKind() apierr.Kind { return apierr.KindFormat }

func formatErr(text, format string, args ...any) *FormatError {
	snippet := []rune(text)
	if len(snippet) > 120 {
		snippet = snippet[:120]
	}
	return &FormatError{Reason: fmt.Sprintf(format, args...), Snippet: string(snippet)}
}
