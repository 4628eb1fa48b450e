package report

import (
	"fmt"
	"io"

	"github.com/peterjunpark/rocr-debug-agent/internal/dbgapi"
)

// printRegisters renders every register of wave, grouped by register class,
// the "general" class always printed last, each register printed at most
// once even if it belongs to more than one class — spec.md §4.3.
func printRegisters(w io.Writer, waveID dbgapi.WaveID) error {
	architecture, err := dbgapi.GetWaveArchitecture(waveID)
	if err != nil {
		return fmt.Errorf("wave_get_info(ARCHITECTURE): %w", err)
	}

	classes, err := dbgapi.RegisterClassList(architecture)
	if err != nil {
		return fmt.Errorf("architecture_register_class_list: %w", err)
	}

	registers, err := dbgapi.WaveRegisterList(waveID)
	if err != nil {
		return fmt.Errorf("wave_register_list: %w", err)
	}

	classes = reorderGeneralLast(classes)

	printed := make(map[dbgapi.RegisterID]bool)

	for _, class := range classes {
		className, err := dbgapi.RegisterClassName(class)
		if err != nil {
			return fmt.Errorf("register_class_get_info(NAME): %w", err)
		}

		fmt.Fprintf(w, "\n%s registers:", className)

		var lastSize int
		column := 0

		for _, reg := range registers {
			if printed[reg] {
				continue
			}

			isMember, err := dbgapi.RegisterIsInClass(class, reg)
			if err != nil {
				return fmt.Errorf("register_is_in_register_class: %w", err)
			}
			if !isMember {
				continue
			}

			name, err := dbgapi.RegisterName(reg)
			if err != nil {
				return fmt.Errorf("register_get_info(NAME): %w", err)
			}
			regType, err := dbgapi.RegisterType(reg)
			if err != nil {
				return fmt.Errorf("register_get_info(TYPE): %w", err)
			}
			size, err := dbgapi.RegisterSize(reg)
			if err != nil {
				return fmt.Errorf("register_get_info(SIZE): %w", err)
			}

			buf, err := dbgapi.ReadRegister(waveID, reg, size)
			if err != nil {
				return fmt.Errorf("read_register(%s): %w", name, err)
			}

			perLine := 0
			if size > 0 {
				perLine = 16 / size
			}

			preColumn := column
			column++
			if size > 8 || size != lastSize || (perLine > 0 && preColumn%perLine == 0) {
				fmt.Fprintln(w)
				column = 1
			}
			lastSize = size

			fmt.Fprintf(w, "%16s%s", name+": ", registerValueString(regType, buf))

			printed[reg] = true
		}

		fmt.Fprintln(w)
	}

	return nil
}

// reorderGeneralLast moves the register class named "general" to the end of
// the list, matching print_registers's in-place swap-and-retry.
func reorderGeneralLast(classes []dbgapi.RegisterClass) []dbgapi.RegisterClass {
	for i := 0; i < len(classes)-1; i++ {
		name, err := dbgapi.RegisterClassName(classes[i])
		if err == nil && name == "general" {
			general := classes[i]
			copy(classes[i:], classes[i+1:])
			classes[len(classes)-1] = general
		}
	}
	return classes
}
