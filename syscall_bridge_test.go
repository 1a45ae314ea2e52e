// syscall_bridge_test.go - MINIX message-bridge tests.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package main

import (
	"io"
	"os"
	"testing"
)

// TestSyscallBridge_Write covers seed scenario D: a WRITE of "hi" through a
// real host file descriptor.
func TestSyscallBridge_Write(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	defer r.Close()
	defer w.Close()

	cpu := NewCPU()
	cpu.TextSize = 0x100
	bridge := NewSyscallBridge(cpu)

	base := uint16(0x00)
	cpu.WriteByte(0x10, 'h')
	cpu.WriteByte(0x11, 'i')

	cpu.WriteWord(base+msgType, sysWrite)
	cpu.WriteWord(base+msgFD, uint16(w.Fd()))
	cpu.WriteWord(base+msgSize, 2)
	cpu.WriteWord(base+msgBufPtr, 0x10)
	cpu.SetBX(base)

	halt, _ := bridge.Dispatch()
	if halt {
		t.Fatal("WRITE should not request halt")
	}
	w.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("reading pipe: %v", err)
	}
	if string(out) != "hi" {
		t.Fatalf("host received %q, want %q", out, "hi")
	}

	if ret := cpu.ReadWord(base + 2); ret != 2 {
		t.Fatalf("message-return slot: got %d, want 2", ret)
	}
	if cpu.AX() != 0 {
		t.Fatalf("AX after syscall: got 0x%04x, want 0", cpu.AX())
	}
}

func TestSyscallBridge_ExitCarriesRealStatus(t *testing.T) {
	cpu := NewCPU()
	cpu.TextSize = 0x100
	bridge := NewSyscallBridge(cpu)

	base := uint16(0x00)
	cpu.WriteWord(base+msgType, sysExit)
	cpu.WriteWord(base+msgFD, 42)
	cpu.SetBX(base)

	halt, code := bridge.Dispatch()
	if !halt {
		t.Fatal("EXIT should request halt")
	}
	if code != 42 {
		t.Fatalf("exit code: got %d, want 42 (real status, not a hardcoded 1)", code)
	}
}
