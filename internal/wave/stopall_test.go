package wave

import (
	"testing"

	"github.com/peterjunpark/rocr-debug-agent/internal/dbgapi"
)

// fakeBackend scripts a convergence scenario: wave states are fixed up
// front, WaveStop just records the request and queues a wave-stop event for
// it (simulating a wave that converges asynchronously after being stopped),
// and NextPendingEvent replays those queued events before signalling
// EventKindNone.
type fakeBackend struct {
	waves   []dbgapi.WaveID
	states  map[dbgapi.WaveID]dbgapi.WaveState
	stopped map[dbgapi.WaveID]bool

	pending     []dbgapi.WaveID
	eventWave   map[dbgapi.EventID]dbgapi.WaveID
	nextEventID uint64
}

func (f *fakeBackend) NextPendingEvent(p dbgapi.ProcessID) (dbgapi.EventID, dbgapi.EventKind, error) {
	if len(f.pending) == 0 {
		return dbgapi.EventID{}, dbgapi.EventKindNone, nil
	}

	w := f.pending[0]
	f.pending = f.pending[1:]

	f.nextEventID++
	id := dbgapi.EventID{Handle: f.nextEventID}
	if f.eventWave == nil {
		f.eventWave = make(map[dbgapi.EventID]dbgapi.WaveID)
	}
	f.eventWave[id] = w

	return id, dbgapi.EventKindWaveStop, nil
}

func (f *fakeBackend) EventProcessed(id dbgapi.EventID) error { return nil }

func (f *fakeBackend) EventWaveID(id dbgapi.EventID) (dbgapi.WaveID, error) {
	return f.eventWave[id], nil
}

func (f *fakeBackend) WaveList(p dbgapi.ProcessID) ([]dbgapi.WaveID, error) {
	return f.waves, nil
}

func (f *fakeBackend) GetWaveState(w dbgapi.WaveID) (dbgapi.WaveState, error) {
	return f.states[w], nil
}

func (f *fakeBackend) WaveStop(w dbgapi.WaveID) error {
	f.stopped[w] = true
	f.pending = append(f.pending, w)
	return nil
}

func TestStopAllConvergesRunningAndLeavesSingleStepAlone(t *testing.T) {
	var w1, w2, w3 = dbgapi.WaveID{Handle: 1}, dbgapi.WaveID{Handle: 2}, dbgapi.WaveID{Handle: 3}

	f := &fakeBackend{
		waves: []dbgapi.WaveID{w1, w2, w3},
		states: map[dbgapi.WaveID]dbgapi.WaveState{
			w1: dbgapi.WaveStateRun,
			w2: dbgapi.WaveStateSingleStep,
			w3: dbgapi.WaveStateStop,
		},
		stopped: make(map[dbgapi.WaveID]bool),
	}

	stopped, err := stopAll(dbgapi.ProcessID{Handle: 1}, f)
	if err != nil {
		t.Fatalf("stopAll returned error: %v", err)
	}

	if _, ok := stopped[w1]; !ok {
		t.Errorf("expected w1 (running, issued a stop) to converge into already_stopped")
	}
	if _, ok := stopped[w3]; !ok {
		t.Errorf("expected w3 (already stopped) to be in already_stopped")
	}
	if _, ok := stopped[w2]; ok {
		t.Errorf("expected w2 (single-step) not to be in already_stopped — it converges on its own")
	}
	if !f.stopped[w1] {
		t.Errorf("expected wave_stop to have been issued for w1")
	}
	if f.stopped[w2] {
		t.Errorf("did not expect wave_stop to have been issued for w2 (single-step)")
	}
	if f.stopped[w3] {
		t.Errorf("did not expect wave_stop to have been issued for w3 (already stopped)")
	}
}

func TestStopAllNoWavesReturnsEmptySet(t *testing.T) {
	f := &fakeBackend{stopped: make(map[dbgapi.WaveID]bool)}

	stopped, err := stopAll(dbgapi.ProcessID{Handle: 1}, f)
	if err != nil {
		t.Fatalf("stopAll returned error: %v", err)
	}
	if len(stopped) != 0 {
		t.Fatalf("expected empty already_stopped set, got %v", stopped)
	}
}
