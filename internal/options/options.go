// Package options parses the ROCM_DEBUG_AGENT_OPTIONS environment variable
// into a structured Options value, spec.md §6. Grounded on the teacher's
// own flag-parsing layer (cmd/dlv builds a pflag.FlagSet under cobra) and
// the original OnLoad's getopt_long table, translated option-for-option.
package options

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/sys/unix"
)

// LogLevel mirrors the original's log_level_t, spec.md §6 -l/--log-level.
type LogLevel int

const (
	LogLevelNone LogLevel = iota
	LogLevelError
	LogLevelWarning
	LogLevelInfo
	LogLevelVerbose
)

func parseLogLevel(s string) (LogLevel, error) {
	switch s {
	case "none":
		return LogLevelNone, nil
	case "error":
		return LogLevelError, nil
	case "warning":
		return LogLevelWarning, nil
	case "info":
		return LogLevelInfo, nil
	case "verbose":
		return LogLevelVerbose, nil
	default:
		return 0, fmt.Errorf("invalid log level %q (want none|error|warning|info|verbose)", s)
	}
}

// Options is the parsed form of ROCM_DEBUG_AGENT_OPTIONS.
type Options struct {
	All                 bool
	DisableLinuxSignals bool
	PreciseMemory       bool
	LogLevel            LogLevel
	OutputPath          string
	SaveCodeObjects     bool
	SaveCodeObjectsDir  string
	Help                bool
}

// defaultOptions mirrors the original's global defaults before getopt runs.
func defaultOptions() Options {
	return Options{LogLevel: LogLevelNone}
}

// ParseEnv splits env the way the original splits ROCM_DEBUG_AGENT_OPTIONS
// (whitespace-separated argv fragments, istream_iterator<string> semantics:
// no quoting, consecutive whitespace collapses) and parses it with the
// long/short flag table spec.md §6 defines. An empty env yields all
// defaults. Unknown options or a malformed argument to -l/-s/-o return an
// error — the caller (bootstrap) treats that as "print usage and abort".
func ParseEnv(env string) (Options, error) {
	opts := defaultOptions()

	fs := pflag.NewFlagSet("rocm-debug-agent", pflag.ContinueOnError)
	fs.SetOutput(new(discard))

	fs.BoolVarP(&opts.All, "all", "a", false, "stop every wave before reporting")
	fs.BoolVarP(&opts.DisableLinuxSignals, "disable-linux-signals", "d", false, "skip the SIGQUIT handler")
	fs.BoolVarP(&opts.PreciseMemory, "precise-memory", "p", false, "request precise-memory mode")

	var logLevel string
	fs.StringVarP(&logLevel, "log-level", "l", "none", "none|error|warning|info|verbose")

	fs.StringVarP(&opts.OutputPath, "output", "o", "", "redirect the report sink to this path")

	fs.StringVarP(&opts.SaveCodeObjectsDir, "save-code-objects", "s", "", "persist every opened code object to this directory")
	fs.Lookup("save-code-objects").NoOptDefVal = "."

	fs.BoolVarP(&opts.Help, "help", "h", false, "print usage and exit")

	// -s/--save-code-objects takes its directory either attached (-s=DIR,
	// --save-code-objects=DIR) or as the following token when that token is
	// not itself an option.
	args := splitArgs(env)
	for i := 0; i+1 < len(args); i++ {
		if (args[i] == "-s" || args[i] == "--save-code-objects") && !strings.HasPrefix(args[i+1], "-") {
			args = append(append(args[:i:i], args[i]+"="+args[i+1]), args[i+2:]...)
		}
	}

	if err := fs.Parse(append([]string{"rocm-debug-agent"}, args...)); err != nil {
		return Options{}, err
	}

	if opts.Help {
		return opts, nil
	}

	level, err := parseLogLevel(logLevel)
	if err != nil {
		return Options{}, err
	}
	opts.LogLevel = level

	if fs.Changed("save-code-objects") {
		opts.SaveCodeObjects = true
		if err := validateSaveDir(opts.SaveCodeObjectsDir); err != nil {
			return Options{}, err
		}
	}

	return opts, nil
}

// splitArgs reproduces istream_iterator<std::string>'s whitespace split:
// any run of whitespace separates tokens, leading/trailing whitespace is
// ignored, there is no quoting.
func splitArgs(env string) []string {
	return strings.Fields(env)
}

// validateSaveDir matches the original's stat()/S_ISDIR check rather than
// os.Stat, since the original treats "exists but is not a directory" the
// same as "does not exist" via a single syscall-level predicate.
func validateSaveDir(dir string) error {
	var st unix.Stat_t
	if err := unix.Stat(dir, &st); err != nil {
		return fmt.Errorf("cannot access code object save directory `%s'", dir)
	}
	if st.Mode&unix.S_IFMT != unix.S_IFDIR {
		return fmt.Errorf("cannot access code object save directory `%s'", dir)
	}
	return nil
}

// discard is an io.Writer that throws everything away, used to silence
// pflag's own usage printing since ParseEnv reports errors to its caller
// instead.
type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
