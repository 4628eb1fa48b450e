// Package logflags centralizes per-subsystem logging, mirroring the
// teacher's pkg/logflags: one *logrus.Entry per layer, gated by a single
// level instead of delve's per-flag booleans, since this agent has one
// -l/--log-level option rather than a flag per subsystem.
package logflags

import (
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	mu    sync.Mutex
	level = logrus.WarnLevel
)

// SetLevel sets the level used by every logger vended from this package.
// Called once, from bootstrap, after ParseEnv resolves -l/--log-level.
func SetLevel(l logrus.Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

func currentLevel() logrus.Level {
	mu.Lock()
	defer mu.Unlock()
	return level
}

func makeLogger(fields logrus.Fields) *logrus.Entry {
	logger := logrus.New()
	logger.SetLevel(currentLevel())
	return logger.WithFields(fields)
}

// CodeObjectLogger logs ELF/DWARF parsing, URI resolution and disassembly
// warnings (internal/codeobject).
func CodeObjectLogger() *logrus.Entry { return makeLogger(logrus.Fields{"layer": "codeobject"}) }

// WaveLogger logs the stop-all convergence loop (internal/wave).
func WaveLogger() *logrus.Entry { return makeLogger(logrus.Fields{"layer": "wave"}) }

// EventPumpLogger logs event classification (internal/eventpump).
func EventPumpLogger() *logrus.Entry { return makeLogger(logrus.Fields{"layer": "eventpump"}) }

// WorkerLogger logs the epoll loop and attach protocol (internal/worker).
func WorkerLogger() *logrus.Entry { return makeLogger(logrus.Fields{"layer": "worker"}) }

// ControllerLogger logs the controller's synchronous RPC (internal/controller).
func ControllerLogger() *logrus.Entry { return makeLogger(logrus.Fields{"layer": "controller"}) }

// ReportLogger logs register/local-memory formatting (internal/report).
func ReportLogger() *logrus.Entry { return makeLogger(logrus.Fields{"layer": "report"}) }

// InterceptLogger logs the HSA executable_freeze/destroy shims (internal/intercept).
func InterceptLogger() *logrus.Entry { return makeLogger(logrus.Fields{"layer": "intercept"}) }

// BootstrapLogger logs OnLoad/OnUnload orchestration (internal/bootstrap).
func BootstrapLogger() *logrus.Entry { return makeLogger(logrus.Fields{"layer": "bootstrap"}) }
