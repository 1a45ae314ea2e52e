// syscall_bridge.go - MINIX message-based syscall bridge, invoked on
// INT 0x20. Reads a 20-byte message from data memory, forwards the request
// to the host via golang.org/x/sys/unix, and writes the result back.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package main

import (
	"log"

	"golang.org/x/sys/unix"
)

const (
	sysExit  = 1
	sysRead  = 3
	sysWrite = 4
	sysOpen  = 5
	sysClose = 6
	sysBrk   = 17
	sysLseek = 19
	sysIoctl = 54
)

// message field byte offsets within the 20-byte MINIX block.
const (
	msgSource = 0
	msgType   = 2
	msgFD     = 4
	msgSize   = 6
	msgAux    = 8
	msgBufPtr = 10
	msgData   = 18
)

// SyscallBridge services MINIX syscalls on behalf of a CPU's memory-resident
// message block, translating each into a real host call.
type SyscallBridge struct {
	cpu *CPU
	brk uint32
}

// NewSyscallBridge binds a bridge to the CPU whose BX register points at
// the message block on each INT 0x20.
func NewSyscallBridge(cpu *CPU) *SyscallBridge {
	return &SyscallBridge{cpu: cpu}
}

// Dispatch reads the message at BX, performs the requested syscall, and
// writes the result back at offset 2. It returns halt=true with the
// process's intended exit code on EXIT.
func (b *SyscallBridge) Dispatch() (halt bool, code int32) {
	c := b.cpu
	base := c.BX()

	msgType := c.ReadWord(base + msgType)
	fd := int(int16(c.ReadWord(base + msgFD)))
	size := int(c.ReadWord(base + msgSize))
	bufPtr := c.ReadWord(base + msgBufPtr)

	var ret int16

	switch msgType {
	case sysExit:
		return true, int32(int16(c.ReadWord(base + msgFD)))

	case sysWrite:
		buf := b.readBuf(bufPtr, size)
		n, err := unix.Write(fd, buf)
		if err != nil {
			log.Printf("syscall bridge: write(fd=%d) failed: %v", fd, err)
			ret = errnoReturn(err)
		} else {
			ret = int16(n)
		}

	case sysRead:
		buf := make([]byte, size)
		n, err := unix.Read(fd, buf)
		if err != nil {
			log.Printf("syscall bridge: read(fd=%d) failed: %v", fd, err)
			ret = errnoReturn(err)
		} else {
			b.writeBuf(bufPtr, buf[:n])
			ret = int16(n)
		}

	case sysOpen:
		namePtr := c.ReadWord(base + msgAux)
		name := b.readCString(namePtr)
		flags := size
		newFD, err := unix.Open(name, flags, 0o644)
		if err != nil {
			log.Printf("syscall bridge: open(%q) failed: %v", name, err)
			ret = errnoReturn(err)
		} else {
			ret = int16(newFD)
		}

	case sysClose:
		if err := unix.Close(fd); err != nil {
			log.Printf("syscall bridge: close(fd=%d) failed: %v", fd, err)
			ret = errnoReturn(err)
		}

	case sysLseek:
		offset := int64(int16(c.ReadWord(base + msgAux)))
		whence := size
		off, err := unix.Seek(fd, offset, whence)
		if err != nil {
			log.Printf("syscall bridge: lseek(fd=%d) failed: %v", fd, err)
			ret = errnoReturn(err)
		} else {
			ret = int16(off)
		}

	case sysBrk:
		newBreak := uint32(c.ReadWord(base + msgAux))
		if newBreak > b.brk {
			b.brk = newBreak
		}
		c.WriteWord(base+msgData, uint16(b.brk))

	case sysIoctl:
		request := uint(c.ReadWord(base + msgAux))
		_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(request), uintptr(bufPtr))
		if errno != 0 {
			// Unmodeled requests (most terminal-attribute probes from
			// programs not actually attached to a tty) report success
			// rather than wedging the caller on an unrecognized ioctl.
			ret = 0
		}

	default:
		log.Printf("syscall bridge: unsupported syscall id %d", msgType)
		ret = -1
	}

	c.WriteWord(base+2, uint16(ret))
	c.SetAX(0)
	return false, 0
}

func (b *SyscallBridge) readBuf(ptr uint16, size int) []byte {
	buf := make([]byte, size)
	for i := 0; i < size; i++ {
		buf[i] = b.cpu.ReadByte(ptr + uint16(i))
	}
	return buf
}

func (b *SyscallBridge) writeBuf(ptr uint16, data []byte) {
	for i, v := range data {
		b.cpu.WriteByte(ptr+uint16(i), v)
	}
}

func (b *SyscallBridge) readCString(ptr uint16) string {
	var buf []byte
	for {
		ch := b.cpu.ReadByte(ptr)
		if ch == 0 {
			break
		}
		buf = append(buf, ch)
		ptr++
	}
	return string(buf)
}

func errnoReturn(err error) int16 {
	if errno, ok := err.(unix.Errno); ok {
		return int16(-int32(errno))
	}
	return -1
}
