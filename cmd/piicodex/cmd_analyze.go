// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/AleutianAI/PIICodex/cmd/piicodex/config"
	"github.com/AleutianAI/PIICodex/pkg/logging"
	"github.com/AleutianAI/PIICodex/pkg/models"
	"github.com/AleutianAI/PIICodex/services/analyzer"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	analyzeFormat          string
	analyzeName            string
	analyzeJSON            bool
	analyzeQuiet           bool
	analyzeExplain         bool
	analyzeThreshold       int
	analyzeMapping         string
	analyzeMetricsTextfile string
	analyzeTimeout         int
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze a collection of detector results",
	Long: `Classify every detection in a collection and report risk statistics.

The input is a JSON or YAML collection of documents, each carrying the
detections an upstream PII detector found in it. Use "-" to read stdin.

Examples:
  piicodex analyze tickets.json
  piicodex analyze tickets.yaml --json
  piicodex analyze - --format yaml < tickets.yaml
  piicodex analyze tickets.json --threshold 3     # fail if mean risk > 3
  piicodex analyze tickets.json --metrics-textfile /var/lib/node_exporter/piicodex.prom

Exit Codes:
  0 = Mean risk at or below threshold
  1 = Mean risk above threshold
  2 = Error (bad input, unmapped entity type, bad mapping)`,
	Args: cobra.ExactArgs(1),
	Run:  runAnalyzeCommand,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "",
		"Input format: json or yaml (default from file extension)")
	analyzeCmd.Flags().StringVar(&analyzeName, "name", "",
		"Collection name (overrides the name in the file)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false,
		"Output as JSON")
	analyzeCmd.Flags().BoolVar(&analyzeQuiet, "quiet", false,
		"Only exit code, no output")
	analyzeCmd.Flags().BoolVar(&analyzeExplain, "explain", false,
		"Show the per-document breakdown")
	analyzeCmd.Flags().IntVar(&analyzeThreshold, "threshold", 0,
		"Risk level 1-5; exit 1 if the mean risk score is above it (default from config)")
	analyzeCmd.Flags().StringVar(&analyzeMapping, "mapping", "",
		"Classification mapping file (default from config, else embedded)")
	analyzeCmd.Flags().StringVar(&analyzeMetricsTextfile, "metrics-textfile", "",
		"Write Prometheus metrics to this textfile (default from config)")
	analyzeCmd.Flags().IntVar(&analyzeTimeout, "timeout", 300,
		"Total timeout in seconds")

	rootCmd.AddCommand(analyzeCmd)
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

// analyzeOptions is everything runAnalyze needs, resolved from flags and
// config.
type analyzeOptions struct {
	Format          analyzer.Format
	Name            string
	JSON            bool
	Quiet           bool
	Explain         bool
	Threshold       models.RiskLevel
	MappingPath     string
	MetricsTextfile string
	Concurrency     int
	ShardSize       int
	Logger          *logging.Logger
}

func runAnalyzeCommand(cmd *cobra.Command, args []string) {
	exit(analyzeFromPath(cmd.OutOrStdout(), os.Stderr, args[0]))
}

// analyzeFromPath opens path ("-" for stdin) and runs the analysis. It
// returns instead of exiting so the input and timeout are released first.
func analyzeFromPath(out, errOut io.Writer, path string) int {
	report := errorReporter{out: out, errOut: errOut, json: analyzeJSON, quiet: analyzeQuiet}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(analyzeTimeout)*time.Second)
	defer cancel()

	opts, err := buildAnalyzeOptions(path)
	if err != nil {
		report.fail("Invalid options", err)
		return ExitError
	}

	in := io.Reader(os.Stdin)
	if path == "-" && stdinIsTerminal() {
		report.fail("No input", errors.New("stdin is a terminal; pipe a collection or pass a file"))
		return ExitError
	}
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			report.fail("Failed to open input", err)
			return ExitError
		}
		defer f.Close()
		in = f
	}

	code, err := runAnalyze(ctx, in, out, opts)
	if err != nil {
		report.fail("Analysis failed", err)
	}
	return code
}

// stdinIsTerminal reports whether stdin is interactive rather than piped.
func stdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// buildAnalyzeOptions merges flags over the loaded config.
func buildAnalyzeOptions(path string) (analyzeOptions, error) {
	cfg := config.Global

	opts := analyzeOptions{
		Format:          analyzer.FormatFromPath(path),
		Name:            analyzeName,
		JSON:            analyzeJSON,
		Quiet:           analyzeQuiet,
		Explain:         analyzeExplain,
		MappingPath:     cfg.MappingPath,
		MetricsTextfile: cfg.Metrics.Textfile,
		Concurrency:     cfg.Concurrency,
		ShardSize:       cfg.ShardSize,
		Logger:          appLogger,
	}

	if analyzeFormat != "" {
		format, err := analyzer.ParseFormat(analyzeFormat)
		if err != nil {
			return analyzeOptions{}, err
		}
		opts.Format = format
	}
	if analyzeMapping != "" {
		opts.MappingPath = analyzeMapping
	}
	if analyzeMetricsTextfile != "" {
		opts.MetricsTextfile = analyzeMetricsTextfile
	}

	level, err := cfg.ThresholdLevel()
	if analyzeThreshold != 0 {
		level, err = models.ParseRiskLevel(analyzeThreshold)
	}
	if err != nil {
		return analyzeOptions{}, fmt.Errorf("threshold: %w", err)
	}
	opts.Threshold = level
	return opts, nil
}

// runAnalyze decodes, analyzes, reports, and returns the exit code.
func runAnalyze(ctx context.Context, in io.Reader, out io.Writer, opts analyzeOptions) (int, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	table, err := loadClassifier(opts.MappingPath)
	if err != nil {
		return ExitError, err
	}
	logger.Debug("classification table loaded", "entries", table.Len(), "digest", table.Digest())

	coll, err := analyzer.DecodeCollection(in, opts.Format)
	if err != nil {
		return ExitError, err
	}
	if opts.Name != "" {
		coll.Name = opts.Name
	}

	a, err := analyzer.New(table,
		analyzer.WithConcurrency(opts.Concurrency),
		analyzer.WithShardSize(opts.ShardSize),
		analyzer.WithLogger(logger),
	)
	if err != nil {
		return ExitError, err
	}

	startTime := time.Now()
	set, err := a.AnalyzeCollection(ctx, coll)
	if err != nil {
		return ExitError, err
	}
	exceeded := opts.Threshold.ExceededBy(set.MeanRiskScore())

	if opts.MetricsTextfile != "" {
		recordRunMetrics(set, len(coll.Documents), time.Since(startTime), exceeded)
		if err := writeMetricsTextfile(opts.MetricsTextfile); err != nil {
			logger.Warn("failed to write metrics textfile", "path", opts.MetricsTextfile, "error", err)
		}
	}

	if !opts.Quiet {
		if opts.JSON {
			if err := outputAnalyzeJSON(out, set); err != nil {
				return ExitError, err
			}
		} else {
			outputAnalyzeText(out, set, opts, table.Digest())
		}
	}

	if exceeded {
		return ExitRiskFound, nil
	}
	return ExitSuccess, nil
}

// =============================================================================
// OUTPUT FUNCTIONS
// =============================================================================

// errorReporter prints analyze failures as JSON on out or text on errOut.
// A quiet reporter prints nothing; the exit code carries the failure.
type errorReporter struct {
	out    io.Writer
	errOut io.Writer
	json   bool
	quiet  bool
}

func (r errorReporter) fail(msg string, err error) {
	if r.quiet {
		return
	}
	if r.json {
		result := map[string]interface{}{
			"success": false,
			"error":   fmt.Sprintf("%s: %v", msg, err),
		}
		encoder := json.NewEncoder(r.out)
		encoder.SetIndent("", "  ")
		encoder.Encode(result)
		return
	}
	fmt.Fprintf(r.errOut, "Error: %s: %v\n", msg, err)
}

func outputAnalyzeJSON(out io.Writer, set models.AnalysisResultSet) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(set); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

func outputAnalyzeText(out io.Writer, set models.AnalysisResultSet, opts analyzeOptions, digest string) {
	if name, ok := set.CollectionName(); ok {
		fmt.Fprintf(out, "Collection: %s\n", name)
	}
	fmt.Fprintf(out, "Documents:  %d\n", len(set.Analyses()))
	fmt.Fprintf(out, "Detections: %d\n", set.DetectionCount())
	fmt.Fprintln(out)

	mean := set.MeanRiskScore()
	fmt.Fprintf(out, "Mean Risk Score: %.2f (%s)\n", mean, nearestRiskLevel(mean).Definition())
	fmt.Fprintf(out, "Variance:        %.4f\n", set.RiskScoreVariance())
	fmt.Fprintf(out, "Std Deviation:   %.4f\n", set.RiskScoreStandardDeviation())
	fmt.Fprintln(out)

	ranked := set.RankedPIITypeFrequencies()
	if len(ranked) > 0 {
		most, _ := set.MostDetectedPIIType()
		least, _ := set.LeastDetectedPIIType()
		fmt.Fprintf(out, "Most Detected:  %s (%d)\n", most.Key, most.Count)
		fmt.Fprintf(out, "Least Detected: %s (%d)\n", least.Key, least.Count)
		fmt.Fprintln(out)

		fmt.Fprintln(out, "PII Type Frequencies:")
		for _, f := range ranked {
			fmt.Fprintf(out, "  %-24s %d\n", f.Key, f.Count)
		}
		fmt.Fprintln(out)
	}

	if opts.Explain {
		fmt.Fprintln(out, "Documents:")
		for _, r := range set.Analyses() {
			types := "-"
			if r.Len() > 0 {
				types = strings.Join(r.DetectedTypes(), ", ")
			}
			fmt.Fprintf(out, "  [%d] %.2f  %s\n", r.Index(), r.MeanRiskScore(), types)
		}
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Mapping: sha256:%s\n", digest)
	}

	status := "OK"
	if opts.Threshold.ExceededBy(mean) {
		status = "ABOVE THRESHOLD"
	}
	fmt.Fprintf(out, "Threshold: %d (%s) - %s\n", int(opts.Threshold), opts.Threshold.Definition(), status)
}

// nearestRiskLevel maps a mean score back onto the closest tier.
func nearestRiskLevel(score float64) models.RiskLevel {
	levels := models.RiskLevels()
	best := levels[0]
	for _, l := range levels[1:] {
		if math.Abs(l.Score()-score) < math.Abs(best.Score()-score) {
			best = l
		}
	}
	return best
}
