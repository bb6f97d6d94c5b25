package docgen

import (
	"fmt"
	"strings"
)

const maxAttemptBody = 300

// Attempt records the outcome of one candidate-endpoint try. The ordered
// attempt list is surfaced in failure responses so every tried variant is
// visible without re-running the request.
type Attempt struct {
	Step   string `json:"step,omitempty"`
	URL    string `json:"url,omitempty"`
	Status int    `json:"status,omitempty"`
	Body   string `json:"body,omitempty"`
	Err    string `json:"error,omitempty"`
}

func (a Attempt) String() string {
	var b strings.Builder
	if a.Step != "" {
		b.WriteString(a.Step)
		b.WriteString("@")
	}
	b.WriteString(a.URL)
	b.WriteString(" -> ")
	if a.Status != 0 {
		fmt.Fprintf(&b, "%d", a.Status)
	} else {
		b.WriteString("ERR")
	}
	if a.Body != "" {
		b.WriteString(" ")
		b.WriteString(a.Body)
	}
	if a.Err != "" {
		b.WriteString(" ")
		b.WriteString(a.Err)
	}
	return b.String()
}

// AttemptsError reports that every candidate endpoint failed, carrying the
// full per-candidate diagnostic log.
type AttemptsError struct {
	Op       string
	Attempts []Attempt
}

func (e *AttemptsError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, a.String())
	}
	return fmt.Sprintf("%s failed; attempts: %s", e.Op, strings.Join(parts, " | "))
}

// TruncateBody caps a response body for attempt logs and diagnostics.
func TruncateBody(s string) string {
	if len(s) > maxAttemptBody {
		return s[:maxAttemptBody]
	}
	return s
}
