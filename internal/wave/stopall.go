// Package wave implements the stop-all convergence loop and the
// stop-reason-to-resume-exception mapping of spec.md §4.4, grounded on
// debug_agent.cpp:stop_all_wavefronts and its resume switch.
package wave

import (
	"fmt"

	"github.com/peterjunpark/rocr-debug-agent/internal/dbgapi"
)

// backend is the slice of the dbgapi surface StopAll needs, broken out as
// an interface (the teacher's own backend-abstraction idiom — pkg/proc
// tests multiple process backends through one interface) so the
// convergence loop can be exercised against a fake in tests without a real
// amd-dbgapi attachment.
type backend interface {
	NextPendingEvent(p dbgapi.ProcessID) (dbgapi.EventID, dbgapi.EventKind, error)
	EventProcessed(id dbgapi.EventID) error
	EventWaveID(id dbgapi.EventID) (dbgapi.WaveID, error)
	WaveList(p dbgapi.ProcessID) ([]dbgapi.WaveID, error)
	GetWaveState(w dbgapi.WaveID) (dbgapi.WaveState, error)
	WaveStop(w dbgapi.WaveID) error
}

type liveBackend struct{}

func (liveBackend) NextPendingEvent(p dbgapi.ProcessID) (dbgapi.EventID, dbgapi.EventKind, error) {
	return dbgapi.NextPendingEvent(p)
}
func (liveBackend) EventProcessed(id dbgapi.EventID) error          { return dbgapi.EventProcessed(id) }
func (liveBackend) EventWaveID(id dbgapi.EventID) (dbgapi.WaveID, error) { return dbgapi.EventWaveID(id) }
func (liveBackend) WaveList(p dbgapi.ProcessID) ([]dbgapi.WaveID, error) { return dbgapi.WaveList(p) }
func (liveBackend) GetWaveState(w dbgapi.WaveID) (dbgapi.WaveState, error) {
	return dbgapi.GetWaveState(w)
}
func (liveBackend) WaveStop(w dbgapi.WaveID) error { return dbgapi.WaveStop(w) }

// StopAll implements stop_all_wavefronts(process): drain pending stop
// events, stop every wave not already stopped or pending, and repeat until
// every live wave has converged. Returns the final already-stopped set.
func StopAll(p dbgapi.ProcessID) (map[dbgapi.WaveID]struct{}, error) {
	return stopAll(p, liveBackend{})
}

func stopAll(p dbgapi.ProcessID, b backend) (map[dbgapi.WaveID]struct{}, error) {
	alreadyStopped := make(map[dbgapi.WaveID]struct{})
	waitingToStop := make(map[dbgapi.WaveID]struct{})

	for {
		if err := drainStopEvents(p, b, alreadyStopped, waitingToStop); err != nil {
			return nil, err
		}

		waves, err := b.WaveList(p)
		if err != nil {
			return nil, err
		}

		for _, w := range waves {
			if _, ok := alreadyStopped[w]; ok {
				continue
			}
			if _, ok := waitingToStop[w]; ok {
				continue
			}

			state, err := b.GetWaveState(w)
			if err != nil {
				if dbgapi.IsInvalidWaveID(err) {
					continue
				}
				return nil, fmt.Errorf("wave_get_state: %w", err)
			}

			switch state {
			case dbgapi.WaveStateStop:
				alreadyStopped[w] = struct{}{}
			case dbgapi.WaveStateSingleStep:
				// Left alone: it converges to STOP on its own.
			default:
				if err := b.WaveStop(w); err != nil {
					if dbgapi.IsInvalidWaveID(err) {
						continue
					}
					return nil, fmt.Errorf("wave_stop: %w", err)
				}
				waitingToStop[w] = struct{}{}
			}
		}

		if len(waitingToStop) == 0 {
			return alreadyStopped, nil
		}
	}
}

func drainStopEvents(p dbgapi.ProcessID, b backend, alreadyStopped, waitingToStop map[dbgapi.WaveID]struct{}) error {
	for {
		id, kind, err := b.NextPendingEvent(p)
		if err != nil {
			return fmt.Errorf("next_pending_event: %w", err)
		}
		if kind == dbgapi.EventKindNone {
			return nil
		}

		switch kind {
		case dbgapi.EventKindWaveStop:
			if w, werr := b.EventWaveID(id); werr == nil {
				delete(waitingToStop, w)
				alreadyStopped[w] = struct{}{}
			}
		case dbgapi.EventKindWaveCommandTerminated:
			if w, werr := b.EventWaveID(id); werr == nil {
				delete(waitingToStop, w)
			}
		}

		if err := b.EventProcessed(id); err != nil {
			return fmt.Errorf("event_processed: %w", err)
		}
	}
}
