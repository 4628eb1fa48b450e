// Package bootstrap implements the OnLoad/OnUnload orchestration: parse
// ROCM_DEBUG_AGENT_OPTIONS, pick the log level and output sink, start the
// controller/worker pair, install the SIGQUIT handler, and install the HSA
// intercept shims — spec.md §4.6, §6, grounded on debug_agent.cpp's
// OnLoad/OnUnload.
package bootstrap

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"unsafe"

	"github.com/sirupsen/logrus"

	"github.com/peterjunpark/rocr-debug-agent/internal/agentfatal"
	"github.com/peterjunpark/rocr-debug-agent/internal/controller"
	"github.com/peterjunpark/rocr-debug-agent/internal/hsabi"
	"github.com/peterjunpark/rocr-debug-agent/internal/intercept"
	"github.com/peterjunpark/rocr-debug-agent/internal/logflags"
	"github.com/peterjunpark/rocr-debug-agent/internal/options"
	"github.com/peterjunpark/rocr-debug-agent/internal/report"
	"github.com/peterjunpark/rocr-debug-agent/internal/worker"
)

// outputFile holds the process-lifetime *os.File a report.Formatter writes
// to, kept alive so it isn't garbage collected and so OnUnload can flush
// and close it.
var outputFile *os.File

// sigquitCh stops receiving once OnUnload runs; nil if -d was given.
var sigquitCh chan os.Signal

const usage = `ROCdebug-agent usage:
  -a, --all                   Print all wavefronts.
  -s, --save-code-objects[=DIR]   Save all loaded code objects. If the directory
                              is not specified, the code objects are saved in
                              the current directory.
  -p, --precise-memory        Enable precise memory mode which ensures that
                              when an exception is reported, the PC points to
                              the instruction immediately after the one that
                              caused the exception.
  -o, --output=FILE           Save the output in FILE. By default, the output
                              is redirected to stderr.
  -d, --disable-linux-signals Disable installing a SIGQUIT signal handler, so
                              that the default Linux handler may dump a core
                              file.
  -l, --log-level={none|error|warning|info|verbose}
                              Change the Debug Agent and Debugger API log
                              level. The default log level is 'none'.
  -h, --help                  Display a usage message and abort the process.
`

func printUsageAndAbort() {
	fmt.Fprint(os.Stderr, usage)
	os.Exit(134) // mirror abort()'s SIGABRT exit status
}

func logLevelToLogrus(l options.LogLevel) logrus.Level {
	switch l {
	case options.LogLevelNone:
		return logrus.PanicLevel // effectively silent: nothing the agent logs reaches panic level
	case options.LogLevelError:
		return logrus.ErrorLevel
	case options.LogLevelWarning:
		return logrus.WarnLevel
	case options.LogLevelInfo:
		return logrus.InfoLevel
	case options.LogLevelVerbose:
		return logrus.TraceLevel
	default:
		return logrus.WarnLevel
	}
}

// OnLoad parses ROCM_DEBUG_AGENT_OPTIONS, resolves the output sink,
// starts the worker/controller pair, installs the SIGQUIT handler, and
// installs the two HSA shims into tablePtr (the raw HsaApiTable* OnLoad
// received). freezeShim/destroyShim are the cgo-exported function
// pointers cmd/rocm-debug-agent's //export shims resolve to. It always
// returns true: an options parse error or -h/--help ends the process in
// printUsageAndAbort before OnLoad returns, matching the original's abort().
func OnLoad(tablePtr unsafe.Pointer, freezeShim, destroyShim uintptr) bool {
	opts, err := options.ParseEnv(os.Getenv("ROCM_DEBUG_AGENT_OPTIONS"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		printUsageAndAbort()
	}
	if opts.Help {
		printUsageAndAbort()
	}

	logflags.SetLevel(logLevelToLogrus(opts.LogLevel))
	log := logflags.BootstrapLogger()

	var out = os.Stderr
	if opts.OutputPath != "" {
		f, err := os.Create(opts.OutputPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not open `%s'\n", opts.OutputPath)
			os.Exit(134)
		}
		outputFile = f
		out = f
	}

	formatter := report.New(out)
	if opts.SaveCodeObjects {
		formatter.CodeObjectsDir = opts.SaveCodeObjectsDir
	}

	ctrl := controller.Get()
	if err := ctrl.Start(worker.Config{
		AllWavefronts: opts.All,
		PreciseMemory: opts.PreciseMemory,
	}, formatter); err != nil {
		agentfatal.Fatal(log, "failed to start worker: %v", err)
	}

	if !opts.DisableLinuxSignals {
		sigquitCh = make(chan os.Signal, 1)
		signal.Notify(sigquitCh, syscall.SIGQUIT)
		go func() {
			for range sigquitCh {
				fmt.Fprintln(out)
				if err := ctrl.QueryPrintWaves(); err != nil {
					log.Errorf("query_print_waves: %v", err)
				}
			}
		}()
	}

	table := hsabi.NewTable(tablePtr)
	intercept.Install(table, freezeShim, destroyShim)

	return true
}

// OnUnload stops the worker, restoring the agent to an inert state.
func OnUnload() {
	if sigquitCh != nil {
		signal.Stop(sigquitCh)
		close(sigquitCh)
		sigquitCh = nil
	}

	controller.Get().Stop()

	if outputFile != nil {
		outputFile.Close()
		outputFile = nil
	}
}
