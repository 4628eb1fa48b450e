package wave

import "github.com/peterjunpark/rocr-debug-agent/internal/dbgapi"

// ResumeException maps a stop-reason bitmask onto the resume exception
// mask to pass to wave_resume, per spec.md §4.4's per-bit table. Unlike the
// original, which switches on only the last extracted bit (a bug — see
// DESIGN.md Open Question decisions), every set bit contributes.
func ResumeException(reasons dbgapi.StopReason) dbgapi.Exception {
	var exc dbgapi.Exception
	for _, bit := range reasons.Bits() {
		switch bit {
		case dbgapi.StopReasonBreakpoint, dbgapi.StopReasonWatchpoint,
			dbgapi.StopReasonAssertTrap, dbgapi.StopReasonTrap:
			exc |= dbgapi.ExceptionWaveTrap
		case dbgapi.StopReasonFPInputDenormal, dbgapi.StopReasonFPDivideByZero,
			dbgapi.StopReasonFPOverflow, dbgapi.StopReasonFPUnderflow,
			dbgapi.StopReasonFPInexact, dbgapi.StopReasonFPInvalidOperation,
			dbgapi.StopReasonIntDivideByZero:
			exc |= dbgapi.ExceptionWaveMathError
		case dbgapi.StopReasonMemoryViolation:
			exc |= dbgapi.ExceptionWaveMemoryViolation
		case dbgapi.StopReasonAddressError:
			exc |= dbgapi.ExceptionWaveAddressError
		case dbgapi.StopReasonIllegalInstruction:
			exc |= dbgapi.ExceptionWaveIllegalInstruction
		case dbgapi.StopReasonECCError, dbgapi.StopReasonFatalHalt:
			exc |= dbgapi.ExceptionWaveAbort
		// StopReasonNone, StopReasonDebugTrap, StopReasonSingleStep
		// contribute nothing.
		}
	}
	return exc
}
