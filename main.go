// main.go - CLI entry point: disassemble, interpret-with-trace, or plain
// interpret, selected via a mode flag rather than subcommands, built on
// cobra.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package main

import (
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// RunConfig threads the small set of mode flags explicitly through the run
// loop instead of reading process-wide globals.
type RunConfig struct {
	Trace       bool
	Disassemble bool
	DebugDump   bool
}

func main() {
	var cfg RunConfig

	root := &cobra.Command{
		Use:           "minix86vm <file> [args...]",
		Short:         "decode and run MINIX-era 8086 a.out binaries",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], args[1:], cfg)
		},
	}

	root.Flags().BoolVarP(&cfg.Disassemble, "disassemble", "d", false, "disassemble the binary instead of running it")
	root.Flags().BoolVarP(&cfg.Trace, "trace", "m", false, "interpret with a per-instruction trace")
	root.Flags().BoolVar(&cfg.DebugDump, "debug", false, "dump full CPU state on an undefined opcode")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(path string, args []string, cfg RunConfig) error {
	image, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}

	cpu := NewCPU()
	entry, err := Load(cpu, image, append([]string{path}, args...))
	if err != nil {
		return errors.Wrap(err, "loading a.out image")
	}
	cpu.IP = entry

	if cfg.Disassemble {
		disassemble(cpu)
		return nil
	}

	code := interpret(cpu, cfg)
	os.Exit(int(code))
	return nil
}

// disassemble prints one formatted line per instruction and halts cleanly
// at end-of-text.
func disassemble(cpu *CPU) {
	for {
		asm := cpu.Decode()
		if asm == nil {
			return
		}
		fmt.Println(FormatDisasmLine(cpu, asm))
		if asm.Instr.Opcode == OpUndefined {
			return
		}
	}
}

func interpret(cpu *CPU, cfg RunConfig) int32 {
	bridge := NewSyscallBridge(cpu)
	highlight := cfg.Trace && term.IsTerminal(int(os.Stdout.Fd()))

	for {
		asm := cpu.Decode()
		if asm == nil {
			return 0
		}

		if cfg.Trace {
			printTraceLine(cpu, asm, highlight)
		}

		if asm.Instr.Opcode == OpUndefined {
			if cfg.DebugDump {
				dumpCPUState(cpu, asm)
			}
			return 1
		}

		outcome := cpu.Execute(asm, bridge)
		if outcome.Halt {
			return outcome.Code
		}
		if cpu.Halted {
			return 0
		}
	}
}

// printTraceLine prints a trace line, wrapping it in an ANSI bold sequence
// when stdout is a terminal.
func printTraceLine(cpu *CPU, asm *Assembly, highlight bool) {
	line := FormatTraceLine(cpu, asm)
	if highlight {
		fmt.Printf("\x1b[1m%s\x1b[0m\n", line)
		return
	}
	fmt.Println(line)
}

func dumpCPUState(cpu *CPU, asm *Assembly) {
	fmt.Fprintln(os.Stderr, "undefined opcode encountered, dumping CPU state:")
	spew.Fdump(os.Stderr, cpu)
	spew.Fdump(os.Stderr, asm)
}
