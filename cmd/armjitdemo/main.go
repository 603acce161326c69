// Command armjitdemo is a small harness around the armjit engine: it loads
// a JSON action-list program, assembles it, and either writes the raw
// machine code to a file, executes it in freshly mmap'd RX memory, or
// prints a disassembly trace of the linked result.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"unsafe"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/xyproto/armjit"
	"github.com/xyproto/armjit/internal/config"
)

// group is one Put call: the action-list index to begin interpreting at,
// and the arguments that call's IMM/REL_APC/VRLIST actions consume.
type group struct {
	Start int     `json:"start"`
	Args  []int32 `json:"args"`
}

// program is the on-disk JSON shape armjitdemo reads: an action list plus
// the Put groups that drive it, and the resources (sections, globals) the
// engine needs set up before Put can run.
type program struct {
	Actions  []uint32 `json:"actions"`
	Groups   []group  `json:"groups"`
	Sections int      `json:"sections"`
	Globals  int      `json:"globals"`
}

func loadProgram(path string) (*program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var p program
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &p, nil
}

// assembleProgram runs a program through the full emit/link/encode
// pipeline and returns the finished machine code.
func assembleProgram(p *program, cfg config.Config) (*armjit.State, []byte, error) {
	sections := p.Sections
	if sections <= 0 {
		sections = cfg.SectionCapacity
	}
	st, err := armjit.New(armjit.Options{MaxSections: sections})
	if err != nil {
		return nil, nil, err
	}
	st.Setup(p.Actions)
	globals := p.Globals
	if globals <= 0 {
		globals = cfg.LabelCapacity
	}
	st.SetupGlobals(make([]uintptr, globals))

	for _, g := range p.Groups {
		if status := st.Put(g.Start, g.Args...); !status.OK() {
			return st, nil, fmt.Errorf("put at action %d: %w", g.Start, status)
		}
	}

	size, err := st.Link()
	if err != nil {
		return st, nil, fmt.Errorf("link: %w", err)
	}

	code := make([]byte, size)
	if _, err := st.Encode(code); err != nil {
		return st, nil, fmt.Errorf("encode: %w", err)
	}
	return st, code, nil
}

func main() {
	cfg := config.Load()
	rootCmd := &cobra.Command{
		Use:   "armjitdemo",
		Short: "Assemble and run Thumb-2/VFP action lists with the armjit engine",
	}

	var outPath string
	assembleCmd := &cobra.Command{
		Use:   "assemble <program.json>",
		Short: "Assemble a program and write the resulting machine code to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProgram(args[0])
			if err != nil {
				return err
			}
			_, code, err := assembleProgram(p, cfg)
			if err != nil {
				return err
			}
			if outPath == "" {
				outPath = args[0] + ".bin"
			}
			if err := os.WriteFile(outPath, code, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", outPath, err)
			}
			fmt.Printf("wrote %d bytes to %s\n", len(code), outPath)
			return nil
		},
	}
	assembleCmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default: <program>.bin)")

	runCmd := &cobra.Command{
		Use:   "run <program.json>",
		Short: "Assemble a program, execute it in RX-mapped memory, and print its return value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProgram(args[0])
			if err != nil {
				return err
			}
			_, code, err := assembleProgram(p, cfg)
			if err != nil {
				return err
			}
			ret, err := executeJIT(code)
			if err != nil {
				return err
			}
			fmt.Printf("returned %d\n", ret)
			return nil
		},
	}

	var dumpSection int
	dumpCmd := &cobra.Command{
		Use:   "dump <program.json>",
		Short: "Assemble a program and print a disassembly trace of one section",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProgram(args[0])
			if err != nil {
				return err
			}
			st, _, err := assembleProgram(p, cfg)
			if err != nil {
				return err
			}
			entries, err := st.DisassembleTrace(dumpSection)
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Printf("%4d  %-9s %s\n", e.Offset, e.Action, e.Operand)
			}
			return nil
		},
	}
	dumpCmd.Flags().IntVar(&dumpSection, "section", 0, "section index to disassemble")

	rootCmd.AddCommand(assembleCmd, runCmd, dumpCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// executeJIT copies code into freshly mmap'd RW memory, flips it to RX,
// and calls it as a no-argument function returning an int32. This relies
// on the host CPU actually being able to execute the assembled
// instructions (i.e. running on ARMv7-M-compatible hardware, or under an
// emulator that intercepts the mapping) — armjitdemo is a harness for
// exercising the encoder, not a portable ARM interpreter.
func executeJIT(code []byte) (int32, error) {
	mem, err := unix.Mmap(-1, 0, len(code), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return 0, fmt.Errorf("mmap: %w", err)
	}
	defer unix.Munmap(mem)

	copy(mem, code)

	if err := unix.Mprotect(mem, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		return 0, fmt.Errorf("mprotect: %w", err)
	}

	// A Go func value is a single word pointing at a funcval struct whose
	// first field is the entry address. Pointing that word at &mem (whose
	// own first field, as a slice header, is mem's data pointer) makes
	// calling fn jump straight into the mapped code.
	var fn func() int32
	*(*unsafe.Pointer)(unsafe.Pointer(&fn)) = unsafe.Pointer(&mem)
	return fn(), nil
}
