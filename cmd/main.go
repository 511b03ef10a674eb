package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"ozon-extractor/extractor"
	"ozon-extractor/internal/config"
)

func main() {
	// Parse command line flags
	var (
		outputFlag  = flag.String("output", "", "Output file path (default: stdout)")
		timeout     = flag.Duration("timeout", 0, "Overall extraction timeout (default from config)")
		verbose     = flag.Bool("verbose", false, "Enable verbose output to stderr and show the browser window")
		showBrowser = flag.Bool("show-browser", false, "Show the browser window")
		debugDump   = flag.String("debug-dump", "", "Save the rendered page here when no gallery variants are found")
	)
	flag.BoolVar(verbose, "v", false, "Shorthand for -verbose")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <product-url>\n\n", os.Args[0])
		fmt.Fprintln(flag.CommandLine.Output(), "Scrapes price, characteristics, description and image URLs from an Ozon product page.")
		fmt.Fprintln(flag.CommandLine.Output(), "The record is printed to stdout as JSON; diagnostics go to stderr.")
		fmt.Fprintln(flag.CommandLine.Output())
		flag.PrintDefaults()
	}
	flag.Parse()

	// Setup logging
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	// Set timestamp format with milliseconds
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})

	// Set log level from LOG_LEVEL env if present
	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		if level, err := logrus.ParseLevel(levelStr); err == nil {
			logger.SetLevel(level)
		}
	} else if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.WarnLevel)
	}

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	productURL := flag.Arg(0)

	// Create configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}
	if *verbose || *showBrowser {
		cfg.UseHeadlessBrowser = false
	}
	if *timeout > 0 {
		cfg.Timeout = *timeout
	}
	if *debugDump != "" {
		cfg.DebugDumpPath = *debugDump
	}

	// Interrupts cancel the run so the browser is still shut down
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startTime := time.Now()
	ozon := extractor.NewOzonExtractor(cfg, logger)

	// Output results
	if *outputFlag != "" {
		if err := ozon.ExtractToJSON(ctx, productURL, *outputFlag); err != nil {
			stop()
			logger.Fatalf("A critical error occurred: %v", err)
		}
		logger.Debugf("Extraction completed in %v", time.Since(startTime))
		return
	}

	record, err := ozon.Extract(ctx, productURL)
	if err != nil {
		stop()
		logger.Fatalf("A critical error occurred: %v", err)
	}
	logger.Debugf("Extraction completed in %v", time.Since(startTime))

	jsonData, err := extractor.MarshalRecord(record)
	if err != nil {
		logger.Fatalf("Failed to marshal results: %v", err)
	}
	os.Stdout.Write(jsonData)
}
