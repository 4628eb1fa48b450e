// Package agentfatal implements the fatal/warning error split of the
// original agent_error/agent_warning macros: a warning logs and continues,
// a fatal condition logs and aborts the process, since reports are
// best-effort and there is no recovery path once a dbgapi invariant is
// violated (spec.md §5 "Cancellation/timeout: none").
package agentfatal

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Fatal logs format/args at error level and terminates the process. There is
// no panic/recover contract here: a fatal dbgapi error means the agent's
// model of the runtime's state can no longer be trusted.
//
// The message bypasses the configured -l/--log-level gate: a process about
// to exit must report why, the same way the original's agent_error writes
// straight to stderr regardless of the configured verbosity.
func Fatal(log *logrus.Entry, format string, args ...interface{}) {
	unleveled := logrus.New()
	unleveled.SetLevel(logrus.ErrorLevel)
	unleveled.WithFields(log.Data).Errorf(format, args...)
	os.Exit(1)
}

// Warning logs format/args at warning level and returns, for conditions the
// spec explicitly tolerates (INVALID_WAVE_ID, NOT_SUPPORTED, NOT_AVAILABLE).
func Warning(log *logrus.Entry, format string, args ...interface{}) {
	log.Warnf(format, args...)
}

// CheckFatal calls Fatal if err is non-nil, formatting err into the message.
func CheckFatal(log *logrus.Entry, err error, context string) {
	if err != nil {
		Fatal(log, "%s: %v", context, err)
	}
}
