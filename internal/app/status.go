package app

import (
	"fmt"
	"strings"
	"time"
)

// Status messages expire on fixed schedules depending on what they announce:
// bulk-calculation progress lingers longest, transient per-file calculation
// notes shortest.
const (
	statusBulkTTL        = 5 * time.Second
	statusCalculatingTTL = 1 * time.Second
	statusCompletionTTL  = 2 * time.Second
	statusDefaultTTL     = 3 * time.Second
)

// statusLine is the single mutable status string the UI shows, with the
// timestamp its expiry rules run against.
type statusLine struct {
	message   string
	updatedAt time.Time
	now       func() time.Time
}

func newStatusLine() statusLine {
	return statusLine{now: time.Now}
}

func (s *statusLine) Set(message string) {
	s.message = message
	s.updatedAt = s.now()
}

func (s *statusLine) Setf(format string, args ...any) {
	s.Set(fmt.Sprintf(format, args...))
}

func (s *statusLine) Clear() {
	s.message = ""
}

func (s *statusLine) Message() string {
	return s.message
}

// Expire clears the message once its time-to-live has elapsed. Completion
// messages (leading check mark) hold 2s, bulk messages 5s, calculation
// progress 1s, anything else 3s.
func (s *statusLine) Expire(bulk bool) bool {
	if s.message == "" {
		return false
	}

	ttl := statusDefaultTTL
	switch {
	case bulk:
		ttl = statusBulkTTL
	case strings.Contains(s.message, "Calculating tokens"):
		ttl = statusCalculatingTTL
	case strings.HasPrefix(s.message, "✓"):
		ttl = statusCompletionTTL
	}

	if s.now().Sub(s.updatedAt) > ttl {
		s.message = ""
		return true
	}
	return false
}
