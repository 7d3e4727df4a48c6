// Completion: 100% - Run command complete
package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/xyproto/bfjit/internal/diag"
	"github.com/xyproto/bfjit/internal/engine"
	"github.com/xyproto/bfjit/internal/ir"
	"github.com/xyproto/bfjit/internal/jit"
	"github.com/xyproto/bfjit/internal/tape"
)

// RunContext holds everything one invocation needs
type RunContext struct {
	Config   Config
	Code     string // inline source from -e
	File     string // source file, empty for the built-in sample
	DumpIR   bool
	EmitIR   string // path for the CBOR encoded program
	DumpCode string // path prefix for the .bin and .s machine code dumps
	Stdin    io.Reader
	Stdout   io.Writer
	Stderr   io.Writer
	// Stream, when set, is used instead of a stream over Stdin and Stdout
	Stream *tape.Stream
}

// loadSource returns the program text and a name to show in messages
func loadSource(code, file string) ([]byte, string, error) {
	switch {
	case code != "":
		return []byte(code), "-e", nil
	case file != "":
		src, err := os.ReadFile(file)
		if err != nil {
			return nil, file, fmt.Errorf("could not read %s: %w", file, err)
		}
		return blankShebang(src), file, nil
	}
	return []byte(sampleProgram), "sample", nil
}

// parseBackend is jit.ParseMode with a suggestion for typos
func parseBackend(name string) (jit.Mode, error) {
	mode, err := jit.ParseMode(name)
	if err == nil {
		return mode, nil
	}
	if s := engine.Suggest(strings.ToLower(name), jit.ModeNames, 1); len(s) > 0 {
		return mode, fmt.Errorf("%w (did you mean %q?)", err, s[0])
	}
	return mode, fmt.Errorf("%w (expected one of %s)", err, strings.Join(jit.ModeNames, ", "))
}

// useColor reports whether diagnostics written to w should be coloured
func useColor(cfg Config, w io.Writer) bool {
	if cfg.NoColor {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// assemblyListing renders code as .byte directives, sixteen bytes per line
func assemblyListing(code []byte) string {
	var sb strings.Builder
	sb.WriteString("\t.text\n")
	for len(code) > 0 {
		n := min(16, len(code))
		sb.WriteString("\t.byte ")
		for i, b := range code[:n] {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "0x%02x", b)
		}
		sb.WriteString("\n")
		code = code[n:]
	}
	return sb.String()
}

// writeCodeDump writes prefix.bin and prefix.s
func writeCodeDump(prefix string, code []byte) error {
	if err := os.WriteFile(prefix+".bin", code, 0o644); err != nil {
		return err
	}
	return os.WriteFile(prefix+".s", []byte(assemblyListing(code)), 0o644)
}

// Run compiles and executes one program, returning the process exit code
func Run(ctx *RunContext) int {
	cfg := ctx.Config
	mode, err := parseBackend(cfg.Backend)
	if err != nil {
		fmt.Fprintf(ctx.Stderr, "Error: %v\n", err)
		return 1
	}

	src, name, err := loadSource(ctx.Code, ctx.File)
	if err != nil {
		fmt.Fprintf(ctx.Stderr, "Error: %v\n", err)
		return 1
	}

	opts := jit.Options{
		Mode:       mode,
		TapeSize:   cfg.TapeSize,
		NoOptimize: cfg.NoOptimize,
	}
	var (
		dumped  bool
		dumpErr error
	)
	if ctx.DumpCode != "" {
		opts.DumpCode = func(code []byte) {
			dumped = true
			dumpErr = writeCodeDump(ctx.DumpCode, code)
		}
	}

	prog, err := jit.Compile(src, opts)
	if err != nil {
		report(ctx, name, src, err)
		return 1
	}

	if ctx.DumpIR {
		if err := ir.Dump(ctx.Stderr, prog); err != nil {
			fmt.Fprintf(ctx.Stderr, "Error: could not dump the program: %v\n", err)
			return 1
		}
	}
	if ctx.EmitIR != "" {
		data, err := ir.MarshalProgram(prog)
		if err == nil {
			err = os.WriteFile(ctx.EmitIR, data, 0o644)
		}
		if err != nil {
			fmt.Fprintf(ctx.Stderr, "Error: could not write %s: %v\n", ctx.EmitIR, err)
			return 1
		}
	}

	stream := ctx.Stream
	if stream == nil {
		stream = tape.NewStream(ctx.Stdin, ctx.Stdout)
	}
	err = jit.Execute(prog, tape.New(cfg.TapeSize), stream, opts)
	if ferr := stream.Flush(); err == nil && ferr != nil {
		err = fmt.Errorf("could not write output: %w", ferr)
	}
	if err != nil {
		report(ctx, name, src, err)
		return 1
	}
	if dumpErr != nil {
		fmt.Fprintf(ctx.Stderr, "Error: could not write the code dump: %v\n", dumpErr)
		return 1
	}
	if ctx.DumpCode != "" && !dumped {
		fmt.Fprintf(ctx.Stderr, "Warning: no machine code was generated, %s.bin not written\n", ctx.DumpCode)
	}
	return 0
}

// report prints err, with the source line and a caret when it carries a position
func report(ctx *RunContext, name string, src []byte, err error) {
	var de *diag.Error
	if errors.As(err, &de) && de.Offset >= 0 {
		fmt.Fprintf(ctx.Stderr, "%s: %s", name, de.Format(src, useColor(ctx.Config, ctx.Stderr)))
		return
	}
	fmt.Fprintf(ctx.Stderr, "%s: error: %v\n", name, err)
}

// blankShebang replaces a leading #! line with spaces, since a path like
// /usr/bin/bf-run would otherwise contribute commands. Offsets stay the same.
func blankShebang(src []byte) []byte {
	if !bytes.HasPrefix(src, []byte("#!")) {
		return src
	}
	end := bytes.IndexByte(src, '\n')
	if end < 0 {
		end = len(src)
	}
	out := bytes.Clone(src)
	for i := 0; i < end; i++ {
		out[i] = ' '
	}
	return out
}
