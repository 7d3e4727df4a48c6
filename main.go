// Completion: 100% - CLI interface complete, all flags working
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tebeka/atexit"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/xyproto/bfjit/internal/engine"
	"github.com/xyproto/bfjit/internal/native"
	"github.com/xyproto/bfjit/internal/tape"
)

// A just-in-time compiler for the eight command tape language, for x86_64 and aarch64

const versionString = "bfjit 1.0.0"

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: bfjit [flags] [file]\n\n")
	fmt.Fprintf(os.Stderr, "Runs the given program, the -e code, or a built-in sample.\n\n")
	flag.PrintDefaults()
}

func main() {
	cfg := configFromEnv()

	// NOTE: flags must come before the filename: bfjit -O0 program.b
	var backendFlag = flag.String("backend", cfg.Backend, "execution backend (auto, native, interp)")
	var noOpt = flag.Bool("O0", cfg.NoOptimize, "disable the clear and copy/multiply loop rewrites")
	var tapeSize = flag.Int("tape", cfg.TapeSize, "tape size in cells (0 for the default of 65536)")
	var codeFlag = flag.String("e", "", "run code from the command line")
	var versionShort = flag.Bool("V", false, "print version information and exit")
	var version = flag.Bool("version", false, "print version information and exit")
	var verbose = flag.Bool("v", cfg.Verbose, "verbose mode (log backend selection and code size)")
	var verboseLong = flag.Bool("verbose", cfg.Verbose, "verbose mode (log backend selection and code size)")
	var debug = flag.Bool("debug", cfg.Debug, "debug mode (also log every loop rewrite)")
	var dumpIR = flag.Bool("dump-ir", false, "print the compiled program to stderr")
	var emitIR = flag.String("emit-ir", "", "write the compiled program as CBOR to this file")
	var dumpCode = flag.String("dump-code", "", "write generated machine code to PREFIX.bin and PREFIX.s")
	flag.Usage = usage
	flag.Parse()

	if *version || *versionShort {
		fmt.Println(versionString)
		atexit.Exit(0)
	}

	cfg.Backend = *backendFlag
	cfg.NoOptimize = *noOpt
	cfg.TapeSize = *tapeSize
	cfg.Verbose = *verbose || *verboseLong
	cfg.Debug = *debug
	if cfg.TapeSize < 0 {
		fmt.Fprintf(os.Stderr, "Error: -tape must not be negative, got %d\n", cfg.TapeSize)
		atexit.Exit(1)
	}

	commonlog.Configure(cfg.Verbosity(), nil)
	if cfg.Verbose || cfg.Debug {
		fmt.Fprintf(os.Stderr, "%s on %s, native runner: %v\n", versionString, engine.Host(), native.Available)
	}

	args := flag.Args()
	if len(args) > 1 {
		fmt.Fprintf(os.Stderr, "Error: expected at most one file, got %d\n", len(args))
		atexit.Exit(1)
	}
	var file string
	if len(args) == 1 {
		file = args[0]
	}
	if file != "" && *codeFlag != "" {
		fmt.Fprintf(os.Stderr, "Error: give either -e or a file, not both\n")
		atexit.Exit(1)
	}

	stream := tape.NewStream(os.Stdin, os.Stdout)
	atexit.Register(func() {
		stream.Flush()
	})

	atexit.Exit(Run(&RunContext{
		Config:   cfg,
		Code:     *codeFlag,
		File:     file,
		DumpIR:   *dumpIR,
		EmitIR:   *emitIR,
		DumpCode: *dumpCode,
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Stream:   stream,
	}))
}
