package tiledlib

import (
	"log"
	"sync"
)

// Diagnostics receives non-fatal notices raised while a document is parsed,
// such as suppressed duplicate properties and renamed layers.
type Diagnostics interface {
	Warn(msg string)
}

// DiagnosticsFunc adapts a plain function to Diagnostics.
type DiagnosticsFunc func(msg string)

func (f DiagnosticsFunc) Warn(msg string) {
	f(msg)
}

type logDiagnostics struct {
	logger *log.Logger
}

// NewLogDiagnostics writes each warning to logger. A nil logger uses log.Default().
func NewLogDiagnostics(logger *log.Logger) Diagnostics {
	if logger == nil {
		logger = log.Default()
	}
	return &logDiagnostics{logger: logger}
}

func (d *logDiagnostics) Warn(msg string) {
	d.logger.Printf("[tiledlib] warning: %s", msg)
}

// Collector keeps every warning it receives.
type Collector struct {
	mu       sync.Mutex
	warnings []string
}

func (c *Collector) Warn(msg string) {
	c.mu.Lock()
	c.warnings = append(c.warnings, msg)
	c.mu.Unlock()
}

// Warnings returns a copy of the collected warnings.
func (c *Collector) Warnings() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.warnings))
	copy(out, c.warnings)
	return out
}

func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.warnings)
}
