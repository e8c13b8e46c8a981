// Command bessambly compiles a Bessambly source file into a flat RV32I
// machine-code image. It also hosts the artifact viewers
// (-tui, -gui) and the compile-as-a-service HTTP API (-api-server) on top
// of the base compile pipeline.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/stanimation3d/bessambly/api"
	"github.com/stanimation3d/bessambly/config"
	"github.com/stanimation3d/bessambly/encode"
	"github.com/stanimation3d/bessambly/gui"
	"github.com/stanimation3d/bessambly/lower"
	"github.com/stanimation3d/bessambly/optimize"
	"github.com/stanimation3d/bessambly/output"
	"github.com/stanimation3d/bessambly/parser"
	"github.com/stanimation3d/bessambly/semantic"
	"github.com/stanimation3d/bessambly/symtab"
	"github.com/stanimation3d/bessambly/tui"
)

// Version information, overridable at build time:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		outputPath  = flag.String("o", "", "Output file path (default: a.out)")
		optLevel    = flag.String("O", "0", "Optimization level: 0,1,2,3,fast,flash,s,z,nano")
		targetName  = flag.String("target", "unix", "Output target: unix or baremetal")
		verboseMode = flag.Bool("verbose", false, "Verbose stage-by-stage output")
		dumpSymbols = flag.Bool("dump-symbols", false, "Dump the resolved label table and exit")
		configPath  = flag.String("config", "", "Path to a TOML config file (default: platform config directory)")

		tuiMode   = flag.Bool("tui", false, "View the compiled artifact in a terminal UI instead of writing it")
		guiMode   = flag.Bool("gui", false, "View the compiled artifact in a desktop window instead of writing it")
		apiServer = flag.Bool("api-server", false, "Start the HTTP compile-as-a-service API server")
		apiPort   = flag.Int("port", 0, "API server port (used with -api-server; 0 = use config default)")
	)

	flag.Parse()

	if *showVersion {
		fmt.Printf("bessambly %s (%s)\n", Version, Commit)
		os.Exit(0)
	}

	if *showHelp {
		printHelp()
		os.Exit(0)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	explicit := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
	if !explicit["O"] && cfg.Compile.DefaultOptLevel != "" {
		*optLevel = cfg.Compile.DefaultOptLevel
	}
	if !explicit["target"] && cfg.Compile.DefaultTarget != "" {
		*targetName = cfg.Compile.DefaultTarget
	}

	if *apiServer {
		runAPIServer(cfg, *apiPort)
		return
	}

	if flag.NArg() == 0 {
		printHelp()
		os.Exit(0)
	}

	sourcePath := flag.Arg(0)
	source, err := os.ReadFile(sourcePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: cannot read %s: %v\n", sourcePath, err)
		os.Exit(1)
	}

	level, ok := optimize.ParseLevel(*optLevel)
	if !ok {
		fmt.Fprintf(os.Stderr, "error: unrecognized optimization level %q\n", *optLevel)
		os.Exit(1)
	}

	target, ok := output.ParseTarget(*targetName)
	if !ok {
		fmt.Fprintf(os.Stderr, "error: unrecognized target %q\n", *targetName)
		os.Exit(1)
	}

	verbose := func(format string, args ...interface{}) {
		if *verboseMode {
			fmt.Printf(format+"\n", args...)
		}
	}

	verbose("Parsing %s...", sourcePath)
	p := parser.New(string(source))
	prog, perr := p.Parse()
	if perr != nil {
		fmt.Fprintf(os.Stderr, "%s\n", perr)
		os.Exit(1)
	}
	verbose("Parsed %d statements", len(prog.Statements))

	verbose("Running semantic analysis...")
	symbols, serr := semantic.Analyze(prog)
	if serr != nil {
		fmt.Fprintf(os.Stderr, "%s\n", serr)
		os.Exit(1)
	}
	verbose("Resolved %d labels", symbols.Len())

	if *dumpSymbols {
		dumpSymbolTable(symbols)
		os.Exit(0)
	}

	verbose("Lowering to micro-IR...")
	lowered, lerr := lower.Lower(prog)
	if lerr != nil {
		fmt.Fprintf(os.Stderr, "%s\n", lerr)
		os.Exit(1)
	}
	verbose("Lowered to %d instructions", lowered.Buffer.Len())

	verbose("Optimizing (level %s)...", *optLevel)
	removed := optimize.Run(lowered.Buffer, level)
	verbose("Optimization removed %d instructions", removed)

	verbose("Encoding RV32I machine code...")
	enc := encode.New(encode.LabelMap(lowered.Labels))
	words, eerr := enc.EncodeBuffer(lowered.Buffer)
	if eerr != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", eerr)
		os.Exit(1)
	}

	if *tuiMode {
		viewer := tui.New(tui.Artifact{
			SourceFile: sourcePath,
			Source:     strings.Split(string(source), "\n"),
			Buffer:     lowered.Buffer,
			Symbols:    symbols,
			Words:      words,
		})
		if err := viewer.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "tui error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *guiMode {
		gui.Run(gui.Artifact{
			SourceFile: sourcePath,
			Source:     strings.Split(string(source), "\n"),
			Buffer:     lowered.Buffer,
			Symbols:    symbols,
			Words:      words,
		})
		return
	}

	destPath := *outputPath
	if destPath == "" {
		destPath = "a.out"
	}

	if err := output.WriteFile(destPath, words, target); err != nil {
		fmt.Fprintf(os.Stderr, "error writing output: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %d words (%d bytes) to %s\n", len(words), len(words)*4, destPath)
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func runAPIServer(cfg *config.Config, port int) {
	if port == 0 {
		port = cfg.Server.Port
	}
	server := api.NewServer(port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "api server error: %v\n", err)
			os.Exit(1)
		}
	}()

	<-sigChan
	fmt.Println("\nShutting down API server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error during shutdown: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("API server stopped")
}

func dumpSymbolTable(symbols *symtab.Table) {
	for name, sym := range symbols.All() {
		fmt.Printf("%-24s 0x%08x  %s\n", name, sym.Address, sym.Kind)
	}
}

func printHelp() {
	fmt.Println("bessambly - Bessambly-to-RV32I ahead-of-time compiler")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  bessambly [flags] <input-file>")
	fmt.Println()
	fmt.Println("Flags:")
	flag.PrintDefaults()
}
