// Package controller is the host-facing façade over internal/worker: it
// owns the command pipe and worker goroutine, and exposes the three
// operations the intercept shims and the SIGQUIT handler need — spec.md
// §4.6, §4.7, §8 property 8 ("update_code_object_list is synchronous").
//
// Grounded on debug_agent.cpp's DebugAgentWorker (the pipe + thread pair)
// and WorkerThreadAccess/get_worker_thread (the process-wide, mutex-guarded
// singleton accessor) — translated from pthreads + a mutex-guarded
// std::optional to a goroutine + a mutex-guarded pointer, the teacher's own
// idiom for an optional background worker (see proc.go's lazily started
// auxiliary goroutines).
package controller

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/peterjunpark/rocr-debug-agent/internal/agentfatal"
	"github.com/peterjunpark/rocr-debug-agent/internal/logflags"
	"github.com/peterjunpark/rocr-debug-agent/internal/report"
	"github.com/peterjunpark/rocr-debug-agent/internal/worker"
)

// Controller owns at most one running worker.Worker and the pipe used to
// command it. A nil-receiver-shaped "not started" state is represented by
// running == nil, matching the original's std::optional<DebugAgentWorker>.
type Controller struct {
	mu      sync.Mutex
	running *instance

	// updateMu serializes UpdateCodeObjectList calls, mirroring the
	// original's g_rbrk_sync guard: only one breakpoint-hit handshake may
	// be in flight at a time.
	updateMu sync.Mutex
}

type instance struct {
	writeFD int
	w       *worker.Worker
	done    chan error
}

var (
	singletonMu sync.Mutex
	singleton   *Controller
)

// Get returns the process-wide Controller singleton, creating it on first
// use — the Go analogue of get_worker_thread's function-local static.
func Get() *Controller {
	singletonMu.Lock()
	defer singletonMu.Unlock()
	if singleton == nil {
		singleton = &Controller{}
	}
	return singleton
}

// Start launches the worker goroutine if one is not already running.
func (c *Controller) Start(cfg worker.Config, formatter *report.Formatter) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running != nil {
		return nil
	}

	fds := make([]int, 2)
	if err := unix.Pipe2(fds, unix.O_CLOEXEC|unix.O_NONBLOCK); err != nil {
		return fmt.Errorf("pipe2: %w", err)
	}
	readFD, writeFD := fds[0], fds[1]

	w := worker.New(cfg, formatter)
	done := make(chan error, 1)

	go func() {
		err := w.Run(readFD)
		unix.Close(readFD)
		if err != nil {
			// A worker error is a dbgapi or setup failure with no recovery
			// path: report it and terminate the process.
			agentfatal.Fatal(logflags.ControllerLogger(), "debug agent worker: %v", err)
		}
		done <- err
	}()

	c.running = &instance{writeFD: writeFD, w: w, done: done}
	return nil
}

// Stop signals the worker to exit and waits for it to do so, then releases
// the command pipe. Safe to call when no worker is running.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running == nil {
		return
	}

	log := logflags.ControllerLogger()
	if err := writeByte(c.running.writeFD, worker.CommandQuit); err != nil {
		log.Errorf("failed to notify worker to stop: %v", err)
	}
	if err := <-c.running.done; err != nil {
		log.Errorf("worker exited with error: %v", err)
	}
	unix.Close(c.running.writeFD)
	c.running = nil
}

// QueryPrintWaves asks the worker to print every wave. A no-op if no
// worker is running.
func (c *Controller) QueryPrintWaves() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running == nil {
		return nil
	}
	return writeByte(c.running.writeFD, worker.CommandPrintWaves)
}

// UpdateCodeObjectList synchronously asks the worker to re-synchronize its
// view of the runtime's loaded code objects, by synthesizing a hit of the
// runtime's rendezvous breakpoint and blocking until the worker has
// processed it. A no-op if no worker is running, matching
// WorkerThreadAccess::update_code_object_list's "if (m_worker.has_value())"
// guard.
func (c *Controller) UpdateCodeObjectList() error {
	c.mu.Lock()
	running := c.running
	c.mu.Unlock()

	if running == nil {
		return nil
	}

	c.updateMu.Lock()
	defer c.updateMu.Unlock()

	if err := writeByte(running.writeFD, worker.CommandBreakpointHit); err != nil {
		return err
	}

	<-running.w.BreakpointHit()
	return nil
}

func writeByte(fd int, b byte) error {
	n, err := unix.Write(fd, []byte{b})
	if err != nil {
		return fmt.Errorf("write command pipe: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("short write to command pipe: wrote %d bytes", n)
	}
	return nil
}
