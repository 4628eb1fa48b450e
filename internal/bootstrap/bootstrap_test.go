package bootstrap

import (
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/peterjunpark/rocr-debug-agent/internal/options"
)

func TestLogLevelToLogrusOrdering(t *testing.T) {
	cases := []struct {
		in   options.LogLevel
		want logrus.Level
	}{
		{options.LogLevelNone, logrus.PanicLevel},
		{options.LogLevelError, logrus.ErrorLevel},
		{options.LogLevelWarning, logrus.WarnLevel},
		{options.LogLevelInfo, logrus.InfoLevel},
		{options.LogLevelVerbose, logrus.TraceLevel},
	}
	for _, c := range cases {
		if got := logLevelToLogrus(c.in); got != c.want {
			t.Errorf("logLevelToLogrus(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}
