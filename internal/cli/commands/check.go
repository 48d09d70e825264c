package commands

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/modguard/internal/cli/config"
	"github.com/leapstack-labs/modguard/internal/cli/output"
	"github.com/leapstack-labs/modguard/internal/engine"
	"github.com/leapstack-labs/modguard/pkg/core"
	"github.com/leapstack-labs/modguard/pkg/lint"
	_ "github.com/leapstack-labs/modguard/pkg/lint/rules" // register architecture rules
)

// ErrViolations is returned by check when any diagnostic survives filtering.
var ErrViolations = errors.New("architecture violations found")

// CheckOptions holds options for the check command.
type CheckOptions struct {
	Path        string   // File or directory path filter
	Format      string   // Output format: text, markdown, json
	Disable     []string // Rule IDs to disable
	Severity    string   // Minimum severity: error, warning, info, hint
	Rules       []string // Run only specific rules
	FullRefresh bool     // Ignore the extraction cache
	Watch       bool     // Re-run on source changes
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	opts := &CheckOptions{}
	cmd := &cobra.Command{
		Use:   "check [path]",
		Short: "Check module dependencies against architecture constraints",
		Long: `Discover Elixir modules, build the dependency graph and evaluate the
constraints declared in modguard.yaml, plus whole-graph rules such as
dependency cycle detection.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # Check the whole project
  modguard check

  # Only report violations in files under lib/my_app/web
  modguard check lib/my_app/web

  # Output as JSON
  modguard check --format json

  # Disable cycle detection
  modguard check --disable AG04

  # Only report errors
  modguard check --severity error

  # Re-run whenever a source file changes
  modguard check --watch`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.Path = args[0]
			}
			return runCheck(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")
	cmd.Flags().StringSliceVar(&opts.Disable, "disable", nil, "Rule IDs to disable")
	cmd.Flags().StringVar(&opts.Severity, "severity", "hint", "Minimum severity: error, warning, info, hint")
	cmd.Flags().StringSliceVar(&opts.Rules, "rule", nil, "Run only specific rules")
	cmd.Flags().BoolVar(&opts.FullRefresh, "full-refresh", false, "Re-extract every file, ignoring the cache")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Watch source directories and re-run on change")

	_ = cmd.RegisterFlagCompletionFunc("severity", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"error", "warning", "info", "hint"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runCheck(cmd *cobra.Command, opts *CheckOptions) error {
	if _, ok := core.ParseSeverity(opts.Severity); !ok {
		return fmt.Errorf("invalid --severity %q (want error, warning, info or hint)", opts.Severity)
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()
	cmdCtx.WithFormat(cmd, opts.Format)

	if opts.Watch {
		return watchAndCheck(cmd.Context(), cmdCtx, opts)
	}

	report, err := checkOnce(cmd.Context(), cmdCtx, opts, opts.FullRefresh)
	if err != nil {
		return err
	}
	if err := renderCheckReport(cmdCtx.Renderer, report); err != nil {
		return err
	}
	if len(report.Diagnostics) > 0 {
		return ErrViolations
	}
	return nil
}

// CheckReport is the outcome of one check pass.
type CheckReport struct {
	Discovery   *engine.DiscoveryResult `json:"-"`
	Diagnostics []lint.Diagnostic       `json:"diagnostics"`
	Summary     CheckSummary            `json:"summary"`
}

// CheckSummary holds the counts shown after a check.
type CheckSummary struct {
	RunID       string   `json:"run_id"`
	Files       int      `json:"files"`
	Modules     int      `json:"modules"`
	External    int      `json:"external"`
	Constraints int      `json:"constraints"`
	Violations  int      `json:"violations"`
	Errors      int      `json:"errors"`
	Warnings    int      `json:"warnings"`
	Info        int      `json:"info"`
	Hints       int      `json:"hints"`
	Problems    []string `json:"problems,omitempty"`
}

// checkOnce discovers, analyses and records one pass.
func checkOnce(ctx context.Context, cmdCtx *CommandContext, opts *CheckOptions, fullRefresh bool) (*CheckReport, error) {
	eng := cmdCtx.Engine
	cfg := cmdCtx.Cfg

	result, err := eng.Discover(ctx, engine.DiscoveryOptions{ForceFullRefresh: fullRefresh})
	if err != nil {
		return nil, fmt.Errorf("failed to discover modules: %w", err)
	}

	lintCfg, err := buildLintConfig(cfg, opts)
	if err != nil {
		return nil, err
	}

	lctx := lint.NewContext(eng.Graph(), lint.ContextOptions{
		ClosureCacheSize: cfg.ClosureCacheSize,
		Logger:           cmdCtx.Logger,
	})
	diags, err := lint.NewAnalyzer(lintCfg).Analyze(lctx, cfg.Constraints)
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}

	diags = filterByPath(diags, eng.Root(), opts.Path)
	diags = filterBySeverity(diags, opts.Severity)

	if err := eng.RecordViolations(ctx, len(diags)); err != nil {
		cmdCtx.Logger.Warn("failed to record violations", "error", err)
	}

	counts := lint.CountBySeverity(diags)
	summary := CheckSummary{
		RunID:       result.RunID,
		Files:       result.FilesTotal,
		Modules:     result.Modules,
		External:    result.External,
		Constraints: len(cfg.Constraints),
		Violations:  len(diags),
		Errors:      counts[core.SeverityError],
		Warnings:    counts[core.SeverityWarning],
		Info:        counts[core.SeverityInfo],
		Hints:       counts[core.SeverityHint],
	}
	for _, e := range result.Errors {
		summary.Problems = append(summary.Problems, e.Error())
	}
	for _, d := range result.Duplicates {
		summary.Problems = append(summary.Problems,
			fmt.Sprintf("%s declared in %s", d.Module, strings.Join(d.Files, ", ")))
	}

	if diags == nil {
		diags = []lint.Diagnostic{}
	}
	return &CheckReport{Discovery: result, Diagnostics: diags, Summary: summary}, nil
}

func buildLintConfig(cfg *config.Config, opts *CheckOptions) (*lint.Config, error) {
	lintCfg := lint.NewConfig()

	// Project config first (lower precedence)
	if cfg != nil {
		var err error
		if lintCfg, err = lint.ConfigFrom(cfg.GetLintConfig()); err != nil {
			return nil, err
		}
	}

	// CLI overrides (higher precedence)
	for _, id := range opts.Disable {
		if id = strings.TrimSpace(id); id != "" {
			lintCfg.Disable(id)
		}
	}
	for _, id := range opts.Rules {
		if id = strings.TrimSpace(id); id != "" {
			lintCfg.Only(id)
		}
	}

	return lintCfg, nil
}

// filterByPath keeps diagnostics whose file lies under pathFilter.
// pathFilter may be absolute or relative to the project root.
func filterByPath(diags []lint.Diagnostic, root, pathFilter string) []lint.Diagnostic {
	if pathFilter == "" {
		return diags
	}
	if filepath.IsAbs(pathFilter) {
		if rel, err := filepath.Rel(root, pathFilter); err == nil {
			pathFilter = rel
		}
	}
	prefix := filepath.ToSlash(filepath.Clean(pathFilter))
	if prefix == "." {
		return diags
	}

	var out []lint.Diagnostic
	for _, d := range diags {
		if d.FilePath == prefix || strings.HasPrefix(d.FilePath, prefix+"/") {
			out = append(out, d)
		}
	}
	return out
}

func filterBySeverity(diags []lint.Diagnostic, severityThreshold string) []lint.Diagnostic {
	threshold, ok := core.ParseSeverity(severityThreshold)
	if !ok {
		threshold = core.SeverityHint
	}

	var out []lint.Diagnostic
	for _, d := range diags {
		if d.Severity.AtLeast(threshold) {
			out = append(out, d)
		}
	}
	return out
}

func renderCheckReport(r *output.Renderer, report *CheckReport) error {
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(report)
	case output.ModeMarkdown:
		renderCheckMarkdown(r, report)
	default:
		renderCheckText(r, report)
	}
	return nil
}

func renderCheckText(r *output.Renderer, report *CheckReport) {
	styles := r.Styles()
	s := report.Summary

	for _, p := range s.Problems {
		r.Warning(p)
	}

	if len(report.Diagnostics) == 0 {
		r.Success(fmt.Sprintf("No architecture violations (%d modules, %d constraints)", s.Modules, s.Constraints))
		return
	}

	currentFile := ""
	for _, d := range report.Diagnostics {
		file := d.FilePath
		if file == "" {
			file = "(external)"
		}
		if file != currentFile {
			currentFile = file
			r.Println("")
			r.Println(styles.Bold.Render(file))
		}
		r.Printf("  %s %s %s\n",
			severityStyle(styles, d.Severity).Render(fmt.Sprintf("%-7s", d.Severity)),
			styles.Code.Render(d.RuleID),
			d.Message)
		if d.Constraint != "" {
			r.Println(styles.Muted.Render("          constraint: " + d.Constraint))
		}
	}

	r.Println("")
	r.Println(styles.Bold.Render(fmt.Sprintf("%d violation(s): %d error, %d warning, %d info, %d hint",
		s.Violations, s.Errors, s.Warnings, s.Info, s.Hints)))
}

func renderCheckMarkdown(r *output.Renderer, report *CheckReport) {
	s := report.Summary

	r.Println(output.FormatHeader(1, "Architecture Check"))
	r.Println("")
	r.Println(output.FormatKeyValue("Modules", fmt.Sprintf("%d (%d external)", s.Modules, s.External)))
	r.Println(output.FormatKeyValue("Constraints", s.Constraints))
	r.Println(output.FormatKeyValue("Violations", s.Violations))

	if len(s.Problems) > 0 {
		r.Println("")
		r.Println(output.FormatHeader(2, "Discovery Problems"))
		r.Println("")
		for _, p := range s.Problems {
			r.Println("- " + p)
		}
	}

	if len(report.Diagnostics) == 0 {
		r.Println("")
		r.Println("No architecture violations.")
		return
	}

	currentFile := ""
	for _, d := range report.Diagnostics {
		if d.FilePath != currentFile {
			currentFile = d.FilePath
			r.Println("")
			r.Println(output.FormatHeader(2, currentFile))
			r.Println("")
		}
		r.Printf("- **%s** `%s` %s\n", d.Severity, d.RuleID, d.Message)
	}
}

func severityStyle(styles *output.Styles, sev core.Severity) lipgloss.Style {
	switch sev {
	case core.SeverityError:
		return styles.Error
	case core.SeverityWarning:
		return styles.Warning
	case core.SeverityInfo:
		return styles.Info
	default:
		return styles.Hint
	}
}
