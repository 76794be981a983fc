package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/ironsheep/shape-measure-mcp/internal/analysis"
	"github.com/ironsheep/shape-measure-mcp/internal/config"
	"github.com/ironsheep/shape-measure-mcp/internal/imaging"
	"github.com/ironsheep/shape-measure-mcp/internal/logger"
	"github.com/ironsheep/shape-measure-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 {
		switch args[0] {
		case "--version", "-v", "version":
			fmt.Fprintf(stdout, "shape-measure-mcp %s\n", Version)
			fmt.Fprintf(stdout, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
			return 0
		case "--help", "-h", "help":
			printHelp(stdout)
			return 0
		case "measure":
			return runMeasure(ctx, args[1:], stdout, stderr)
		case "config":
			return runConfig(args[1:], stdout, stderr)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "config error: %v\n", err)
		return 2
	}

	// stdout is for MCP protocol
	log := logger.New(stderr, cfg.LogLevel)
	log.Debug().Str("version", Version).Str("built", BuildTime).Str("commit", GitCommit).Msg("starting")

	server.Version = Version
	srv, err := server.New(cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to start server")
		return 1
	}
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("server error")
		return 1
	}
	return 0
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "shape-measure-mcp - measure objects in photos against a reference object of known size")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  shape-measure-mcp                          Run the MCP server on stdin/stdout")
	fmt.Fprintln(w, "  shape-measure-mcp measure [flags] <images>  Measure images and print JSON")
	fmt.Fprintln(w, "  shape-measure-mcp config [-w file]          Print or write the effective configuration")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  --version, -v    Print version information")
	fmt.Fprintln(w, "  --help, -h       Print this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Measure flags:")
	fmt.Fprintln(w, "  -o dir           Write <name>_measured.png annotated images to dir")
	fmt.Fprintln(w, "  -ref mm          Reference object size in millimeters")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables:")
	fmt.Fprintf(w, "  %s=file.json   Configuration file\n", config.EnvConfigPath)
	fmt.Fprintf(w, "  %s=5     Reference object size in millimeters\n", config.EnvReferenceMM)
	fmt.Fprintf(w, "  %s=top-right\n", config.EnvReferenceCorner)
	fmt.Fprintf(w, "  %s=canny|threshold\n", config.EnvPreprocessMode)
	fmt.Fprintf(w, "  %s=true\n", config.EnvStopAtReference)
	fmt.Fprintf(w, "  %s=debug    Enable debug logging\n", config.EnvLogLevel)
}

// runMeasure measures each image in turn, printing one JSON document per
// image. A failed image is reported and skipped.
func runMeasure(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("measure", flag.ContinueOnError)
	fs.SetOutput(stderr)
	outDir := fs.String("o", "", "directory for annotated images (none written when empty)")
	refMM := fs.Float64("ref", 0, "reference object size in millimeters (0 keeps the configured value)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "measure: no images given")
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "config error: %v\n", err)
		return 2
	}
	if *refMM != 0 {
		cfg.Measure.ReferenceSizeMM = *refMM
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(stderr, "measure: %v\n", err)
			return 2
		}
	}
	save := *outDir != ""
	if save {
		cfg.Output.Dir = *outDir
	}

	log := logger.NewConsole(stderr, cfg.LogLevel)
	a, err := analysis.New(cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to create analyzer")
		return 1
	}
	return measureAll(ctx, a, fs.Args(), save, stdout, log)
}

func measureAll(ctx context.Context, a *analysis.Analyzer, paths []string, save bool, stdout io.Writer, log zerolog.Logger) int {
	cache := imaging.NewImageCache()
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")

	code := 0
	for _, path := range paths {
		if ctx.Err() != nil {
			return 1
		}
		res, err := a.MeasureFile(ctx, cache, path, save)
		cache.Evict(path)
		if err != nil {
			log.Error().Err(err).Str("image", path).Msg("measurement failed")
			code = 1
			continue
		}
		if err := enc.Encode(res); err != nil {
			log.Error().Err(err).Msg("failed to write result")
			return 1
		}
	}
	return code
}

// runConfig prints the effective configuration (defaults, file and
// environment merged) or writes it to a file as a starting point for edits.
func runConfig(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(stderr)
	out := fs.String("w", "", "write the configuration to this file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "config error: %v\n", err)
		return 2
	}

	if *out != "" {
		if err := cfg.SaveToFile(*out); err != nil {
			fmt.Fprintf(stderr, "config: %v\n", err)
			return 1
		}
		return 0
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(cfg); err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}
	return 0
}
