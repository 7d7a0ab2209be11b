package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/wippyai/object-abi/dispatch"
	"github.com/wippyai/object-abi/iface"
	"github.com/wippyai/object-abi/internal/config"
	"github.com/wippyai/object-abi/internal/itest"
	"github.com/wippyai/object-abi/wasmhost"
)

func main() {
	var (
		declFile    = flag.String("decl", "", "Interface declaration file (TOML); built-in test interfaces when empty")
		ifaceName   = flag.String("iface", "", "Only show this interface")
		list        = flag.Bool("list", false, "Print method slot layouts and exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		selftest    = flag.Bool("selftest", false, "Run end-to-end invocation scenarios")
		configFile  = flag.String("config", "", "Configuration file (TOML)")
		verbose     = flag.Bool("v", false, "Debug logging")
	)
	flag.Parse()

	if !*list && !*interactive && !*selftest {
		fmt.Fprintln(os.Stderr, "Usage: objabi [-decl file.toml] [-iface name] -list")
		fmt.Fprintln(os.Stderr, "       objabi [-decl file.toml] -i  (interactive mode)")
		fmt.Fprintln(os.Stderr, "       objabi [-config objabi.toml] [-v] -selftest")
		os.Exit(1)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log, err := newLogger(cfg, *verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	dispatch.SetLogger(log)
	wasmhost.SetLogger(log)

	st := plainStyles()
	if term.IsTerminal(int(os.Stdout.Fd())) {
		st = colorStyles()
	}

	if *selftest {
		if !runSelftest(context.Background(), cfg, os.Stdout, st) {
			log.Sync()
			os.Exit(1)
		}
		return
	}

	ifcs, err := loadInterfaces(*declFile, *ifaceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *interactive {
		if err := runInteractive(*declFile, ifcs); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	for _, ifc := range ifcs {
		renderInterface(os.Stdout, ifc, st)
	}
}

func newLogger(cfg *config.Config, verbose bool) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc := zap.NewProductionConfig()
	if cfg.Log.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

func loadInterfaces(declFile, name string) ([]*iface.Interface, error) {
	var (
		doc *iface.Document
		err error
	)
	if declFile == "" {
		doc, err = itest.ParseDeclaration()
	} else {
		doc, err = iface.Load(declFile)
	}
	if err != nil {
		return nil, fmt.Errorf("load declarations: %w", err)
	}
	if name == "" {
		return doc.Interfaces(), nil
	}
	ifc, ok := doc.Interface(name)
	if !ok {
		return nil, fmt.Errorf("interface %q not declared", name)
	}
	return []*iface.Interface{ifc}, nil
}
