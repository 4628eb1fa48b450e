package intercept

import "testing"

func TestOnExecutableFreezeAndDestroyAreNoOpsWithoutARunningController(t *testing.T) {
	// controller.Get() with no Start call has no running worker, so both
	// hooks should return without blocking or panicking.
	OnExecutableFreeze()
	OnExecutableDestroy()
}
