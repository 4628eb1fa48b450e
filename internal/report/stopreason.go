package report

import "github.com/peterjunpark/rocr-debug-agent/internal/dbgapi"

// stopReasonString joins every set bit's name with "|", e.g.
// "BREAKPOINT|MEMORY_VIOLATION".
func stopReasonString(reason dbgapi.StopReason) string {
	return reason.String()
}
