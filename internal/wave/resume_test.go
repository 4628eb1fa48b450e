package wave

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/peterjunpark/rocr-debug-agent/internal/dbgapi"
)

func TestResumeExceptionMapsEachBit(t *testing.T) {
	reasons := dbgapi.StopReasonFPOverflow | dbgapi.StopReasonMemoryViolation | dbgapi.StopReasonDebugTrap

	got := ResumeException(reasons)
	want := dbgapi.ExceptionWaveMathError | dbgapi.ExceptionWaveMemoryViolation

	assert.Equal(t, want, got)
}

func TestResumeExceptionNoneForBenignReasons(t *testing.T) {
	reasons := dbgapi.StopReasonNone | dbgapi.StopReasonDebugTrap | dbgapi.StopReasonSingleStep
	assert.Equal(t, dbgapi.ExceptionNone, ResumeException(reasons))
}

func TestResumeExceptionMultipleTrapBitsCollapseToOneFlag(t *testing.T) {
	reasons := dbgapi.StopReasonBreakpoint | dbgapi.StopReasonWatchpoint | dbgapi.StopReasonTrap
	assert.Equal(t, dbgapi.ExceptionWaveTrap, ResumeException(reasons))
}

func TestResumeExceptionAbortBits(t *testing.T) {
	reasons := dbgapi.StopReasonECCError | dbgapi.StopReasonFatalHalt
	assert.Equal(t, dbgapi.ExceptionWaveAbort, ResumeException(reasons))
}
