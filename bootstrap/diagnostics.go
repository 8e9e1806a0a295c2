package bootstrap

import (
	"fmt"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

// Severity of a driver diagnostic.
type Severity int

const (
	SeverityVerbose Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

var severityNames = map[Severity]string{
	SeverityVerbose: "verbose",
	SeverityInfo:    "info",
	SeverityWarning: "warning",
	SeverityError:   "error",
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// MessageType is a bit set of diagnostic categories.
type MessageType int

const (
	TypeGeneral MessageType = 1 << iota
	TypeValidation
	TypePerformance
	TypeAddressBinding
)

// AllMessageTypes subscribes to every category.
const AllMessageTypes = TypeGeneral | TypeValidation | TypePerformance | TypeAddressBinding

func (t MessageType) String() string {
	var parts []string
	for bit, name := range []string{"general", "validation", "performance", "address-binding"} {
		if t&(1<<bit) != 0 {
			parts = append(parts, name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Message is one diagnostic delivered by the driver.
type Message struct {
	Severity Severity
	Types    MessageType
	IDName   string
	IDNumber int
	Text     string
}

func (m Message) String() string {
	return fmt.Sprintf("%s:%s:%s %d:%s", m.Severity, m.Types, m.IDName, m.IDNumber, m.Text)
}

// Action is what the sink does with a message of a given severity.
type Action int

const (
	ActionIgnore Action = iota
	ActionLog
	ActionWarn
	// ActionAbort logs the message and makes the running bootstrap stage
	// fail. The driver call that produced the message is not interrupted.
	ActionAbort
)

// DiagnosticsConfig maps severities to actions.
type DiagnosticsConfig struct {
	Actions map[Severity]Action
	Types   MessageType
}

// DefaultDiagnostics logs everything and never aborts.
func DefaultDiagnostics() DiagnosticsConfig {
	return DiagnosticsConfig{
		Actions: map[Severity]Action{
			SeverityVerbose: ActionLog,
			SeverityInfo:    ActionLog,
			SeverityWarning: ActionWarn,
			SeverityError:   ActionWarn,
		},
		Types: AllMessageTypes,
	}
}

// Severities lists the severities with an action other than ignore.
func (c DiagnosticsConfig) Severities() []Severity {
	var severities []Severity
	for severity := SeverityVerbose; severity <= SeverityError; severity++ {
		if c.Actions[severity] != ActionIgnore {
			severities = append(severities, severity)
		}
	}
	return severities
}

// DiagnosticsSink receives driver diagnostics. The driver may call Handle
// from any thread.
type DiagnosticsSink struct {
	config DiagnosticsConfig
	logger logrus.FieldLogger

	mu      sync.Mutex
	aborted []Message
}

// NewDiagnosticsSink creates a sink that reports through logger.
func NewDiagnosticsSink(config DiagnosticsConfig, logger logrus.FieldLogger) *DiagnosticsSink {
	return &DiagnosticsSink{
		config: config,
		logger: logger,
	}
}

// Config returns the sink's configuration.
func (s *DiagnosticsSink) Config() DiagnosticsConfig {
	return s.config
}

// Handle processes one message. It always returns false so the driver call
// that produced the message proceeds.
func (s *DiagnosticsSink) Handle(msg Message) bool {
	action := s.config.Actions[msg.Severity]
	if action == ActionIgnore {
		return false
	}

	entry := s.logger.WithFields(logrus.Fields{
		"severity":  msg.Severity.String(),
		"type":      msg.Types.String(),
		"id_name":   msg.IDName,
		"id_number": msg.IDNumber,
	})

	switch action {
	case ActionLog:
		if msg.Severity == SeverityVerbose {
			entry.Debug(msg.Text)
		} else {
			entry.Info(msg.Text)
		}
	case ActionWarn:
		entry.Warn(msg.Text)
	case ActionAbort:
		entry.Error(msg.Text)
		s.mu.Lock()
		s.aborted = append(s.aborted, msg)
		s.mu.Unlock()
	}

	return false
}

// Err returns a ErrValidationFailed error for the first message that
// requested an abort, or nil.
func (s *DiagnosticsSink) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.aborted) == 0 {
		return nil
	}

	err := errors.Newf("%d diagnostic(s) requested abort, first: %s", len(s.aborted), s.aborted[0])
	return errors.Mark(err, ErrValidationFailed)
}
