// Package eventpump drains the dbgapi event queue, classifies each event,
// and decides whether a report is needed — spec.md §4.5, grounded on
// debug_agent.cpp:process_dbgapi_events.
package eventpump

import (
	"fmt"

	"github.com/peterjunpark/rocr-debug-agent/internal/dbgapi"
	"github.com/peterjunpark/rocr-debug-agent/internal/logflags"
	"github.com/peterjunpark/rocr-debug-agent/internal/report"
	"github.com/peterjunpark/rocr-debug-agent/internal/wave"
)

// Pump drains and dispatches dbgapi events for one process, invoking a
// Formatter when a report is warranted.
type Pump struct {
	Process       dbgapi.ProcessID
	Formatter     *report.Formatter
	AllWavefronts bool
}

// Drain consumes every pending event, classifies it, and — if the drain
// produced a reportable or resumable condition — stops forward progress,
// optionally prints a report, resumes every stopped wave with its mapped
// exception mask, and restores normal progress.
func (p *Pump) Drain() error {
	log := logflags.EventPumpLogger()

	needPrintWaves := false
	waveNeedResume := false

	for {
		eventID, kind, err := dbgapi.NextPendingEvent(p.Process)
		if err != nil {
			return fmt.Errorf("process_next_pending_event: %w", err)
		}
		if kind == dbgapi.EventKindNone {
			break
		}

		switch kind {
		case dbgapi.EventKindWaveStop:
			waveID, werr := dbgapi.EventWaveID(eventID)
			if werr != nil {
				return fmt.Errorf("event_get_info(WAVE): %w", werr)
			}
			stopReason, serr := dbgapi.GetWaveStopReason(waveID)
			if serr != nil {
				return fmt.Errorf("wave_get_info(STOP_REASON): %w", serr)
			}
			if stopReason == dbgapi.StopReasonDebugTrap {
				waveNeedResume = true
			} else {
				needPrintWaves = true
			}

		case dbgapi.EventKindQueueError:
			needPrintWaves = true

		case dbgapi.EventKindRuntime,
			dbgapi.EventKindCodeObjectListUpdated,
			dbgapi.EventKindBreakpointResume:
			// Acknowledge, no action.

		default:
			log.Warnf("unexpected event kind %d", kind)
		}

		if err := dbgapi.EventProcessed(eventID); err != nil {
			return fmt.Errorf("event_processed: %w", err)
		}
	}

	if !needPrintWaves && !waveNeedResume {
		return nil
	}

	if err := dbgapi.SetProgress(p.Process, dbgapi.ProgressNoForward); err != nil {
		return fmt.Errorf("process_set_progress(NO_FORWARD): %w", err)
	}
	if err := dbgapi.SetWaveCreation(p.Process, dbgapi.WaveCreationStop); err != nil {
		return fmt.Errorf("process_set_wave_creation(STOP): %w", err)
	}

	if needPrintWaves && p.Formatter != nil {
		if err := p.Formatter.PrintWavefronts(p.Process, p.AllWavefronts); err != nil {
			return fmt.Errorf("print_wavefronts: %w", err)
		}
	}

	if err := p.resumeStoppedWaves(); err != nil {
		return err
	}

	if err := dbgapi.SetWaveCreation(p.Process, dbgapi.WaveCreationNormal); err != nil {
		return fmt.Errorf("process_set_wave_creation(NORMAL): %w", err)
	}
	if err := dbgapi.SetProgress(p.Process, dbgapi.ProgressNormal); err != nil {
		return fmt.Errorf("process_set_progress(NORMAL): %w", err)
	}

	return nil
}

func (p *Pump) resumeStoppedWaves() error {
	waveIDs, err := dbgapi.WaveList(p.Process)
	if err != nil {
		return fmt.Errorf("process_wave_list: %w", err)
	}

	for _, waveID := range waveIDs {
		state, err := dbgapi.GetWaveState(waveID)
		if err != nil {
			if dbgapi.IsInvalidWaveID(err) {
				continue
			}
			return fmt.Errorf("wave_get_info(STATE): %w", err)
		}
		if state != dbgapi.WaveStateStop {
			continue
		}

		stopReason, err := dbgapi.GetWaveStopReason(waveID)
		if err != nil {
			return fmt.Errorf("wave_get_info(STOP_REASON): %w", err)
		}

		exceptions := wave.ResumeException(stopReason)
		if err := dbgapi.WaveResume(waveID, dbgapi.ResumeModeNormal, exceptions); err != nil {
			return fmt.Errorf("wave_resume: %w", err)
		}
	}

	return nil
}
