package clock

import (
	"fmt"

	"google.golang.org/grpc/codes"
)

// ConfigError reports an invalid configuration supplied by the caller, such
// as a zero interval or a stop instant at or before its start. Recoverable:
// the call that produced it simply fails, the clock's state is unchanged.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string    { return fmt.Sprintf("config error: %s", e.Msg) }
func (e *ConfigError) Code() codes.Code { return codes.InvalidArgument }

// NewConfigError builds a ConfigError with a formatted message.
func NewConfigError(format string, args ...any) *ConfigError {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

// TemporalError reports a request that is well-formed but inconsistent with
// the clock's current notion of time, such as setting a timer to start
// before "now" when the clock disallows past instants. Recoverable.
type TemporalError struct {
	Msg string
}

func (e *TemporalError) Error() string    { return fmt.Sprintf("temporal error: %s", e.Msg) }
func (e *TemporalError) Code() codes.Code { return codes.FailedPrecondition }

// NewTemporalError builds a TemporalError with a formatted message.
func NewTemporalError(format string, args ...any) *TemporalError {
	return &TemporalError{Msg: fmt.Sprintf(format, args...)}
}

// InvariantViolation reports a condition that should be unreachable given
// the core's own invariants (for example, a heap returning events out of
// order). Fatal in SimClock: deterministic replay depends on every
// assumption holding, so the clock panics rather than silently continuing
// on corrupted state. Non-fatal in LiveClock: a live system must stay up,
// so dispatch logs the violation and drops the offending event instead.
type InvariantViolation struct {
	Msg string
}

func (e *InvariantViolation) Error() string    { return fmt.Sprintf("invariant violation: %s", e.Msg) }
func (e *InvariantViolation) Code() codes.Code { return codes.Internal }

// Fatal reports that, in a simulation context, this violation must abort
// the run rather than be tolerated.
func (e *InvariantViolation) Fatal() bool { return true }

// NewInvariantViolation builds an InvariantViolation with a formatted message.
func NewInvariantViolation(format string, args ...any) *InvariantViolation {
	return &InvariantViolation{Msg: fmt.Sprintf(format, args...)}
}
