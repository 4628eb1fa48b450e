// Package worker runs the attach protocol and the epoll-driven event loop
// that keeps one dbgapi-attached process alive for the lifetime of the
// agent — spec.md §4.7, grounded on debug_agent.cpp:dbgapi_worker.
package worker

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/peterjunpark/rocr-debug-agent/internal/dbgapi"
	"github.com/peterjunpark/rocr-debug-agent/internal/eventpump"
	"github.com/peterjunpark/rocr-debug-agent/internal/hsabi"
	"github.com/peterjunpark/rocr-debug-agent/internal/logflags"
	"github.com/peterjunpark/rocr-debug-agent/internal/report"
)

// Config mirrors the two command-line options dbgapi_worker's signature
// carries through from OnLoad.
type Config struct {
	AllWavefronts bool
	PreciseMemory bool
}

// Commands written to the read end of a Worker's command pipe.
const (
	CommandPrintWaves    = 'p'
	CommandQuit          = 'q'
	CommandBreakpointHit = 'b'
)

// Worker owns one dbgapi attachment and its epoll loop. A Worker is driven
// entirely through its command pipe (see internal/controller) — Run blocks
// until it reads CommandQuit.
type Worker struct {
	cfg       Config
	formatter *report.Formatter

	process    dbgapi.ProcessID
	breakpoint dbgapi.BreakpointID
	haveBrk    bool

	// breakpointHit is signaled by Run's epoll loop once it has called
	// amd_dbgapi_report_breakpoint_hit in response to CommandBreakpointHit,
	// letting the controller's synchronous UpdateCodeObjectList return.
	breakpointHit chan struct{}

	// rBrkAddress is hsabi.RBrkAddress by default; overridable in tests so
	// insertBreakpoint's address check doesn't need a live HSA runtime.
	rBrkAddress func() uint64
}

// New constructs a Worker. formatter may be nil in tests that only exercise
// the attach/classify plumbing without producing reports.
func New(cfg Config, formatter *report.Formatter) *Worker {
	return &Worker{
		cfg:           cfg,
		formatter:     formatter,
		breakpointHit: make(chan struct{}, 1),
		rBrkAddress:   hsabi.RBrkAddress,
	}
}

// insertBreakpoint is wired as the dbgapi InsertBreakpoint callback: dbgapi
// asks the client to place a breakpoint at a given address, and the only
// address this agent ever tracks is the runtime's code-object rendezvous
// breakpoint (hsabi.RBrkAddress) — the breakpoint itself is never actually
// inserted into GPU code, it exists purely so dbgapi can later ask "has
// this virtual breakpoint fired".
func (w *Worker) insertBreakpoint(addr uint64, bp dbgapi.BreakpointID) error {
	if addr != w.rBrkAddress() {
		return fmt.Errorf("insert_breakpoint: unexpected address %#x", addr)
	}
	w.breakpoint = bp
	w.haveBrk = true
	return nil
}

func (w *Worker) removeBreakpoint(bp dbgapi.BreakpointID) error {
	if w.haveBrk && w.breakpoint == bp {
		w.haveBrk = false
		return nil
	}
	return fmt.Errorf("remove_breakpoint: unknown breakpoint %v", bp)
}

func (w *Worker) xferGlobalMemory(addr uint64, buf []byte, write bool) (int, error) {
	memFile := selfMem
	if write {
		return unix.Pwrite(int(memFile.Fd()), buf, int64(addr))
	}
	return unix.Pread(int(memFile.Fd()), buf, int64(addr))
}

// selfMem is the /proc/self/mem descriptor backing xfer_global_memory for
// the lifetime of the attachment. Opened once in Run.
var selfMem *os.File

// Run performs the attach protocol (spec.md §4.7), then services
// commandFD (the read end of the controller's command pipe) and the
// dbgapi notifier until it reads CommandQuit, or a fatal dbgapi error
// occurs. It is meant to run on its own goroutine.
func (w *Worker) Run(commandFD int) error {
	log := logflags.WorkerLogger()

	var err error
	selfMem, err = os.OpenFile("/proc/self/mem", os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("open /proc/self/mem: %w", err)
	}
	defer selfMem.Close()

	if err := dbgapi.Initialize(dbgapi.Callbacks{
		GetOSPID:         func() uint32 { return uint32(os.Getpid()) },
		XferGlobalMemory: w.xferGlobalMemory,
		InsertBreakpoint: w.insertBreakpoint,
		RemoveBreakpoint: w.removeBreakpoint,
		LogMessage: func(level int, msg string) {
			log.Infof("rocm-dbgapi: %s", msg)
		},
	}); err != nil {
		return fmt.Errorf("amd_dbgapi_initialize: %w", err)
	}
	defer dbgapi.Finalize()

	process, err := dbgapi.Attach(int(selfMem.Fd()))
	if err != nil {
		return fmt.Errorf("amd_dbgapi_process_attach: %w", err)
	}
	w.process = process
	defer dbgapi.Detach(process)

	if err := w.expectRuntimeLoaded(); err != nil {
		return err
	}

	notifierFD, err := dbgapi.NotifierFD(process)
	if err != nil {
		return fmt.Errorf("process_get_info(NOTIFIER): %w", err)
	}

	epollFD, err := unix.EpollCreate1(0)
	if err != nil {
		return fmt.Errorf("epoll_create1: %w", err)
	}
	defer unix.Close(epollFD)

	for _, fd := range []int{commandFD, notifierFD} {
		ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fd)}
		if err := unix.EpollCtl(epollFD, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
			return fmt.Errorf("epoll_ctl(add %d): %w", fd, err)
		}
	}

	if w.cfg.PreciseMemory {
		if err := dbgapi.SetMemoryPrecision(process, dbgapi.MemoryPrecisionPrecise); err != nil {
			if dbgapi.IsNotSupported(err) {
				log.Warnf("precise memory not supported for all the agents of this process")
			} else {
				return fmt.Errorf("amd_dbgapi_set_memory_precision: %w", err)
			}
		}
	}

	pump := &eventpump.Pump{Process: process, Formatter: w.formatter, AllWavefronts: w.cfg.AllWavefronts}

	events := make([]unix.EpollEvent, 2)
	for {
		n, err := unix.EpollWait(epollFD, events, -1)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return fmt.Errorf("epoll_wait: %w", err)
		}

		for i := 0; i < n; i++ {
			fd := int(events[i].Fd)
			switch fd {
			case commandFD:
				quit, err := w.handleCommand(commandFD)
				if err != nil {
					return err
				}
				if quit {
					return nil
				}

			case notifierFD:
				drainNotifier(notifierFD)
				if err := pump.Drain(); err != nil {
					return err
				}

			default:
				return fmt.Errorf("unknown epoll fd %d", fd)
			}
		}
	}
}

func (w *Worker) expectRuntimeLoaded() error {
	eventID, kind, err := dbgapi.NextPendingEvent(w.process)
	if err != nil {
		return fmt.Errorf("process_next_pending_event: %w", err)
	}
	if kind != dbgapi.EventKindRuntime {
		return fmt.Errorf("unexpected event kind %d while waiting for runtime load", kind)
	}

	state, err := dbgapi.EventRuntimeState(eventID)
	if err != nil {
		return fmt.Errorf("event_get_info(RUNTIME_STATE): %w", err)
	}

	switch state {
	case dbgapi.RuntimeStateLoadedSuccess:
	case dbgapi.RuntimeStateUnloaded:
		return fmt.Errorf("invalid runtime state %d", state)
	case dbgapi.RuntimeStateLoadedErrorRestriction:
		return fmt.Errorf("unable to enable GPU debugging due to a restriction error")
	default:
		return fmt.Errorf("unexpected runtime state %d", state)
	}

	return dbgapi.EventProcessed(eventID)
}

// handleCommand reads and purges a single command byte from the command
// pipe and acts on it, reporting whether the caller should stop the event
// loop.
func (w *Worker) handleCommand(commandFD int) (quit bool, err error) {
	var buf [1]byte
	for {
		_, err = unix.Read(commandFD, buf[:])
		if err == unix.EINTR {
			continue
		}
		break
	}
	if err != nil {
		return false, fmt.Errorf("read command pipe: %w", err)
	}

	switch buf[0] {
	case CommandPrintWaves:
		if w.formatter != nil {
			if err := w.formatter.PrintWavefronts(w.process, true); err != nil {
				return false, fmt.Errorf("print_wavefronts: %w", err)
			}
		}

	case CommandQuit:
		return true, nil

	case CommandBreakpointHit:
		if !w.haveBrk {
			return false, fmt.Errorf("breakpoint-hit command with no registered breakpoint")
		}
		if err := dbgapi.ReportBreakpointHit(w.breakpoint); err != nil {
			return false, fmt.Errorf("report_breakpoint_hit: %w", err)
		}
		select {
		case w.breakpointHit <- struct{}{}:
		default:
		}
	}

	return false, nil
}

// BreakpointHit returns the channel the controller waits on after writing
// CommandBreakpointHit, fulfilling the synchronous update-code-object-list
// handshake.
func (w *Worker) BreakpointHit() <-chan struct{} { return w.breakpointHit }

// drainNotifier empties the dbgapi notifier pipe — its content carries no
// information, it is level-triggered only to wake epoll_wait.
func drainNotifier(fd int) {
	var buf [1]byte
	for {
		n, err := unix.Read(fd, buf[:])
		if n <= 0 && err != unix.EINTR {
			return
		}
	}
}
