package controller

import (
	"testing"

	"golang.org/x/sys/unix"
)

func TestGetReturnsSameSingleton(t *testing.T) {
	a := Get()
	b := Get()
	if a != b {
		t.Fatal("expected Get to return the same Controller instance")
	}
}

func TestStopOnNeverStartedControllerIsANoOp(t *testing.T) {
	c := &Controller{}
	c.Stop() // must not panic or block
}

func TestQueryPrintWavesOnNeverStartedControllerIsANoOp(t *testing.T) {
	c := &Controller{}
	if err := c.QueryPrintWaves(); err != nil {
		t.Fatalf("expected nil error when no worker is running, got %v", err)
	}
}

func TestUpdateCodeObjectListOnNeverStartedControllerIsANoOp(t *testing.T) {
	c := &Controller{}
	if err := c.UpdateCodeObjectList(); err != nil {
		t.Fatalf("expected nil error when no worker is running, got %v", err)
	}
}

func TestWriteByteRoundTrips(t *testing.T) {
	fds := make([]int, 2)
	if err := unix.Pipe2(fds, 0); err != nil {
		t.Fatalf("pipe2: %v", err)
	}
	defer unix.Close(fds[0])
	defer unix.Close(fds[1])

	if err := writeByte(fds[1], 'p'); err != nil {
		t.Fatalf("writeByte: %v", err)
	}

	var buf [1]byte
	if n, err := unix.Read(fds[0], buf[:]); err != nil || n != 1 {
		t.Fatalf("read back: n=%d err=%v", n, err)
	}
	if buf[0] != 'p' {
		t.Fatalf("got byte %q, want 'p'", buf[0])
	}
}
