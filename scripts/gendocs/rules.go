package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/leapstack-labs/modguard/pkg/core"
	"github.com/leapstack-labs/modguard/pkg/lint"
	_ "github.com/leapstack-labs/modguard/pkg/lint/rules"
)

// groupDescriptions provides human-readable descriptions for rule groups.
var groupDescriptions = map[string]string{
	"architecture": "Rules about which modules may depend on which, and about dependency cycles.",
}

// generateRuleDocs generates the rule reference pages.
func generateRuleDocs(outDir string) error {
	log.Printf("Generating rule docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	rules := lint.AllRules()
	sort.Slice(rules, func(i, j int) bool { return rules[i].ID() < rules[j].ID() })

	if err := generateRulesIndex(outDir, rules); err != nil {
		return err
	}
	log.Printf("  Generated index.md")

	if err := generateRulesPage(outDir, rules); err != nil {
		return err
	}
	log.Printf("  Generated architecture.md")

	return nil
}

// generateRulesIndex generates the rules overview page.
func generateRulesIndex(outDir string, rules []lint.Rule) error {
	w := NewMarkdownWriter()

	w.Frontmatter("Rules", "Architecture rules evaluated by modguard check")
	w.GeneratedMarker()

	w.Header(1, "Rules")
	w.Paragraph(fmt.Sprintf("modguard ships **%d rules**.", len(rules)))

	w.Header(2, "Rule Types")
	w.BulletList([]string{
		Bold("Constraint rules") + ": evaluated once per constraint declared in `modguard.yaml`",
		Bold("Graph rules") + ": evaluated over the whole module graph on every check",
	})

	var rows [][]string
	for _, r := range rules {
		info := lint.GetRuleInfo(r)
		rows = append(rows, []string{
			fmt.Sprintf("[%s](/rules/architecture#%s)", info.ID, info.ID),
			InlineCode(info.Name),
			info.Type,
			InlineCode(info.DefaultSeverity.String()),
			cleanDescription(info.Description),
		})
	}
	w.Table([]string{"ID", "Name", "Type", "Severity", "Description"}, rows)

	w.Header(2, "Severity Levels")
	w.Table(
		[]string{"Severity", "Description"},
		[][]string{
			{InlineCode("error"), "Violated constraint that fails the check"},
			{InlineCode("warning"), "Violation that should be reviewed"},
			{InlineCode("info"), "Informational feedback"},
			{InlineCode("hint"), "Suggestion for improvement"},
		},
	)

	w.Header(2, "Configuration")
	w.Paragraph("Rules are configured in `modguard.yaml`. A constraint's own severity wins over `lint.severity`:")
	w.CodeBlock("yaml", `lint:
  disabled: [AG04]          # disable a rule
  severity:
    AG02: warning           # override default severity

constraints:
  - name: web-not-repo
    rule: AG02
    modules: ["MyApp.Web.**"]
    forbidden: ["MyApp.Repo"]
    except: ["MyApp.Web.Health"]
    severity: error`)

	return os.WriteFile(filepath.Join(outDir, "index.md"), w.Bytes(), 0600)
}

// generateRulesPage generates the detailed rule page, grouped by rule group.
func generateRulesPage(outDir string, rules []lint.Rule) error {
	w := NewMarkdownWriter()

	w.Frontmatter("Architecture Rules", "Dependency constraint and cycle rules")
	w.GeneratedMarker()

	w.Header(1, "Architecture Rules")

	grouped := make(map[string][]lint.Rule)
	var groups []string
	for _, r := range rules {
		if _, ok := grouped[r.Group()]; !ok {
			groups = append(groups, r.Group())
		}
		grouped[r.Group()] = append(grouped[r.Group()], r)
	}
	sort.Strings(groups)

	for _, group := range groups {
		w.Line(fmt.Sprintf("## %s {#%s}", capitalizeFirst(group), group))
		w.Newline()
		if desc, ok := groupDescriptions[group]; ok {
			w.Paragraph(desc)
		}
		for _, rule := range grouped[group] {
			writeRuleDoc(w, rule)
		}
	}

	return os.WriteFile(filepath.Join(outDir, "architecture.md"), w.Bytes(), 0600)
}

// capitalizeFirst capitalizes the first letter of a string.
func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// writeRuleDoc writes detailed documentation for a single rule.
func writeRuleDoc(w *MarkdownWriter, rule lint.Rule) {
	info := lint.GetRuleInfo(rule)

	// ### AG02 - forbidden-transitive-dependency {#AG02}
	w.Line(fmt.Sprintf("### %s - %s {#%s}", info.ID, info.Name, info.ID))
	w.Newline()

	w.Line(fmt.Sprintf("**Severity:** %s | **Type:** %s", InlineCode(info.DefaultSeverity.String()), info.Type))
	w.Newline()

	w.Paragraph(cleanDescription(info.Description))

	if info.Rationale != "" {
		w.Header(4, "Why This Matters")
		w.Paragraph(info.Rationale)
	}
	if info.BadExample != "" {
		w.Header(4, "Bad")
		w.CodeBlock("elixir", info.BadExample)
	}
	if info.GoodExample != "" {
		w.Header(4, "Good")
		w.CodeBlock("elixir", info.GoodExample)
	}
	if info.Fix != "" {
		w.Header(4, "How to Fix")
		w.Paragraph(info.Fix)
	}
	if info.Type == core.RuleTypeConstraint {
		w.Paragraph(fmt.Sprintf("Use with a constraint: %s.", InlineCode("rule: "+info.ID)))
	}

	w.Line("---")
	w.Newline()
}
