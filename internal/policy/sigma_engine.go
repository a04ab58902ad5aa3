package policy

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	sigma "github.com/bradleyjkemp/sigma-go"
	sigmaevaluator "github.com/bradleyjkemp/sigma-go/evaluator"

	"continuitygraph/pkg/models"
)

// Logsource product accepted besides an empty one.
const continuityProduct = "continuity"

// LoadStats tracks the number of loaded and skipped rules.
type LoadStats struct {
	TotalFiles     int
	Loaded         int
	SkippedComplex int
	SkippedProduct int
	SkippedInvalid int
}

type compiledRule struct {
	rule     sigma.Rule
	eval     *sigmaevaluator.RuleEvaluator
	id       string
	severity string
}

// SigmaEngine evaluates Sigma rules against process facts.
type SigmaEngine struct {
	rules []compiledRule
}

// NewSigmaEngine loads Sigma rules from a file or directory and compiles evaluators.
// Unsupported rules are skipped and included in stats.
func NewSigmaEngine(path string) (*SigmaEngine, LoadStats, error) {
	var stats LoadStats

	files, err := ruleFiles(path)
	if err != nil {
		return nil, stats, err
	}

	stats.TotalFiles = len(files)
	compiled := make([]compiledRule, 0, len(files))
	for _, ruleFile := range files {
		rule, err := parseRuleFile(ruleFile)
		if err != nil {
			stats.SkippedInvalid++
			continue
		}
		if !isContinuityRule(rule) {
			stats.SkippedProduct++
			continue
		}
		if !isSingleRecordRule(rule) {
			stats.SkippedComplex++
			continue
		}

		compiled = append(compiled, compiledRule{
			rule:     rule,
			eval:     sigmaevaluator.ForRule(rule),
			id:       ruleID(rule),
			severity: severityFor(rule.Level),
		})
		stats.Loaded++
	}

	return &SigmaEngine{rules: compiled}, stats, nil
}

// Evaluate matches every rule against every process and returns one finding
// per match, in fact order then rule load order.
func (e *SigmaEngine) Evaluate(ctx context.Context, facts []Facts) []models.Finding {
	if e == nil || len(e.rules) == 0 || len(facts) == 0 {
		return nil
	}

	var out []models.Finding
	for _, f := range facts {
		for _, r := range e.rules {
			res, err := r.eval.Matches(ctx, f.Fields)
			if err != nil || !res.Match {
				continue
			}
			out = append(out, models.Finding{
				RuleID:      r.id,
				Source:      FindingSource,
				Severity:    r.severity,
				ProcessID:   f.ProcessID,
				ProcessName: f.ProcessName,
				Title:       strings.TrimSpace(r.rule.Title),
				Detail:      strings.TrimSpace(r.rule.Description),
			})
		}
	}
	return out
}

// Len returns the number of loaded rules.
func (e *SigmaEngine) Len() int {
	if e == nil {
		return 0
	}
	return len(e.rules)
}

func ruleFiles(path string) ([]string, error) {
	resolved, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve rule path: %w", err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return nil, fmt.Errorf("stat rule path: %w", err)
	}
	if !info.IsDir() {
		if !isYAMLFile(resolved) {
			return nil, fmt.Errorf("rule file must end with .yml or .yaml: %s", resolved)
		}
		return []string{resolved}, nil
	}

	files := make([]string, 0, 32)
	err = filepath.WalkDir(resolved, func(filePath string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !entry.IsDir() && isYAMLFile(filePath) {
			files = append(files, filePath)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk rule directory: %w", err)
	}
	return files, nil
}

func parseRuleFile(path string) (sigma.Rule, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return sigma.Rule{}, fmt.Errorf("read sigma rule %s: %w", path, err)
	}
	rule, err := sigma.ParseRule(raw)
	if err != nil {
		return sigma.Rule{}, fmt.Errorf("parse sigma rule %s: %w", path, err)
	}
	return rule, nil
}

func isYAMLFile(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".yml") || strings.HasSuffix(lower, ".yaml")
}

func isContinuityRule(rule sigma.Rule) bool {
	product := strings.ToLower(strings.TrimSpace(rule.Logsource.Product))
	return product == "" || product == continuityProduct
}

func isSingleRecordRule(rule sigma.Rule) bool {
	if rule.Detection.Timeframe > 0 {
		return false
	}
	for _, cond := range rule.Detection.Conditions {
		if cond.Aggregation != nil || !isSimpleSearchExpression(cond.Search) {
			return false
		}
	}
	for _, search := range rule.Detection.Searches {
		if len(search.Keywords) > 0 || len(search.EventMatchers) == 0 {
			return false
		}
	}
	return true
}

func isSimpleSearchExpression(expr sigma.SearchExpr) bool {
	switch e := expr.(type) {
	case sigma.SearchIdentifier:
		return true
	case sigma.And:
		for _, child := range e {
			if !isSimpleSearchExpression(child) {
				return false
			}
		}
		return true
	case sigma.Or:
		for _, child := range e {
			if !isSimpleSearchExpression(child) {
				return false
			}
		}
		return true
	case sigma.Not:
		return isSimpleSearchExpression(e.Expr)
	default:
		return false
	}
}

func ruleID(rule sigma.Rule) string {
	if id := strings.TrimSpace(rule.ID); id != "" {
		return id
	}
	return strings.TrimSpace(rule.Title)
}

func severityFor(level string) string {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "critical", "high":
		return models.SeverityCritical
	default:
		return models.SeverityWarning
	}
}
