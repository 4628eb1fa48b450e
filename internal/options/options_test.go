package options

import "testing"

func TestParseEnvDefaults(t *testing.T) {
	opts, err := ParseEnv("")
	if err != nil {
		t.Fatalf("ParseEnv(\"\") returned error: %v", err)
	}
	if opts.All || opts.DisableLinuxSignals || opts.PreciseMemory || opts.SaveCodeObjects {
		t.Fatalf("expected all flags false by default, got %+v", opts)
	}
	if opts.LogLevel != LogLevelNone {
		t.Fatalf("expected default log level none, got %v", opts.LogLevel)
	}
}

func TestParseEnvLongAndShortFlags(t *testing.T) {
	opts, err := ParseEnv("--all -p -d")
	if err != nil {
		t.Fatalf("ParseEnv returned error: %v", err)
	}
	if !opts.All || !opts.PreciseMemory || !opts.DisableLinuxSignals {
		t.Fatalf("expected all/precise-memory/disable-linux-signals set, got %+v", opts)
	}
}

func TestParseEnvLogLevel(t *testing.T) {
	opts, err := ParseEnv("-l verbose")
	if err != nil {
		t.Fatalf("ParseEnv returned error: %v", err)
	}
	if opts.LogLevel != LogLevelVerbose {
		t.Fatalf("expected verbose log level, got %v", opts.LogLevel)
	}
}

func TestParseEnvInvalidLogLevel(t *testing.T) {
	if _, err := ParseEnv("-l bogus"); err == nil {
		t.Fatal("expected an error for an invalid log level")
	}
}

func TestParseEnvSaveCodeObjectsDefaultsToCurrentDir(t *testing.T) {
	opts, err := ParseEnv("-s")
	if err != nil {
		t.Fatalf("ParseEnv returned error: %v", err)
	}
	if !opts.SaveCodeObjects || opts.SaveCodeObjectsDir != "." {
		t.Fatalf("expected save-code-objects=true dir=\".\", got %+v", opts)
	}
}

func TestParseEnvSaveCodeObjectsExplicitDir(t *testing.T) {
	opts, err := ParseEnv("-s /tmp")
	if err != nil {
		t.Fatalf("ParseEnv returned error: %v", err)
	}
	if !opts.SaveCodeObjects || opts.SaveCodeObjectsDir != "/tmp" {
		t.Fatalf("expected save-code-objects dir /tmp, got %+v", opts)
	}
}

func TestParseEnvSaveCodeObjectsRejectsNonDirectory(t *testing.T) {
	if _, err := ParseEnv("-s /etc/hostname"); err == nil {
		t.Fatal("expected an error when the save directory is not a directory")
	}
}

func TestParseEnvUnknownFlagErrors(t *testing.T) {
	if _, err := ParseEnv("--not-a-real-flag"); err == nil {
		t.Fatal("expected an error for an unrecognized flag")
	}
}

func TestSplitArgsCollapsesWhitespace(t *testing.T) {
	got := splitArgs("  --all   -p  ")
	want := []string{"--all", "-p"}
	if len(got) != len(want) {
		t.Fatalf("splitArgs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("splitArgs = %v, want %v", got, want)
		}
	}
}
