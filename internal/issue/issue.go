// # internal/issue/issue.go
package issue

import (
	"log/slog"
	"sync"
)

type Severity int

const (
	SeverityBug Severity = iota
	SeverityError
	SeverityWarning
	SeverityHint
)

func (s Severity) String() string {
	switch s {
	case SeverityBug:
		return "bug"
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "hint"
	}
}

// Issue is a diagnostic record. Emission is a side channel: it never carries
// control flow and never terminates an analysis.
type Issue struct {
	Severity Severity
	Code     string
	Title    string
	Message  string
	Path     string // contextual file path
}

// Sink receives emitted issues. Implementations must be safe for use from
// concurrent analysis invocations.
type Sink interface {
	Emit(Issue)
}

// Collector gathers issues in memory, for reports and tests.
type Collector struct {
	mu     sync.Mutex
	issues []Issue
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Emit(i Issue) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.issues = append(c.issues, i)
}

func (c *Collector) Issues() []Issue {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Issue(nil), c.issues...)
}

func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.issues)
}

// LogSink forwards issues to slog and optionally to a wrapped sink.
type LogSink struct {
	Next Sink
}

func (s *LogSink) Emit(i Issue) {
	slog.Warn("diagnostic emitted",
		"severity", i.Severity.String(),
		"code", i.Code,
		"title", i.Title,
		"message", i.Message,
		"path", i.Path,
	)
	if s.Next != nil {
		s.Next.Emit(i)
	}
}
