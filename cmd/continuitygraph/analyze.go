package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"continuitygraph/config"
	"continuitygraph/internal/engine"
	"continuitygraph/internal/logger"
	"continuitygraph/internal/output/reportjson"
	"continuitygraph/internal/policy"
	"continuitygraph/internal/transform/snapshot"
	"continuitygraph/pkg/models"
)

func runAnalyze(args []string) int {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	input := fs.String("input", "", "Snapshot file (JSON or YAML)")
	output := fs.String("output", "-", "Report JSONL output path, - for stdout")
	configArg := fs.String("config", "", "Optional config file for analysis and policy settings")
	rulesPath := fs.String("rules", "", "Policy rule file or directory (overrides config)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if strings.TrimSpace(*input) == "" {
		fmt.Fprintln(os.Stderr, "analyze: -input is required")
		return 2
	}

	cfg := &config.Config{}
	if *configArg != "" {
		loaded, err := config.LoadConfig(*configArg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
			return 1
		}
		cfg = loaded
	}

	snap, err := snapshot.LoadFile(*input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load snapshot: %v\n", err)
		return 1
	}

	path := *rulesPath
	if path == "" && cfg.Continuity.Policy.Enabled {
		path = cfg.Continuity.Policy.Path
	}
	rules, err := loadPolicy(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load policy rules: %v\n", err)
		return 1
	}

	eng := engine.New(engineOptions(cfg.Continuity.Analysis), rules)
	report, err := eng.Analyze(context.Background(), snap)
	if err != nil {
		fmt.Fprintf(os.Stderr, "analysis failed: %v\n", err)
		return 1
	}

	w, err := reportjson.NewWriter(*output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open output: %v\n", err)
		return 1
	}
	defer w.Close()
	if err := w.WriteReports([]*models.Report{report}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write report: %v\n", err)
		return 1
	}

	b := report.BCDR
	fmt.Fprintf(os.Stderr, "analyzed processes=%d readiness=%d critical=%d warnings=%d output=%s\n",
		report.ProcessCount, b.ReadinessScore, b.CriticalIssues, b.Warnings, *output)
	return 0
}

// loadPolicy returns nil when no path is set so the engine evaluates no rules.
func loadPolicy(path string) (policy.Engine, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	eng, stats, err := policy.NewSigmaEngine(path)
	if err != nil {
		return nil, err
	}
	logger.Infof("Policy rules loaded: loaded=%d skipped_complex=%d skipped_product=%d skipped_invalid=%d files=%d",
		stats.Loaded, stats.SkippedComplex, stats.SkippedProduct, stats.SkippedInvalid, stats.TotalFiles)
	if stats.Loaded == 0 {
		logger.Warnf("No compatible policy rules loaded from %s", path)
	}
	return eng, nil
}

func engineOptions(a config.AnalysisConfig) engine.Options {
	return engine.Options{
		ImpactThreshold:     a.ImpactThreshold,
		SPOFDegreeThreshold: a.SPOFDegreeThreshold,
		SPOFTopN:            a.SPOFTopN,
		CriticalPathTopN:    a.CriticalPathTopN,
		MaxPathNodes:        a.MaxPathNodes,
		PriorityTopN:        a.PriorityTopN,
	}
}
