package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/leapstack-labs/modguard/internal/cli"
	"github.com/leapstack-labs/modguard/internal/cli/commands"
	"github.com/leapstack-labs/modguard/internal/cli/config"
)

// generateCLIDocs writes index.md plus one page per top-level command.
func generateCLIDocs(outDir string) error {
	log.Printf("Generating CLI docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	root := cli.NewRootCmd()
	cmds := documentedCommands(root)

	if err := writePage(outDir, "index.md", cliIndex(root, cmds)); err != nil {
		return err
	}
	log.Printf("  Generated index.md")

	for _, cmd := range cmds {
		name := cmd.Name() + ".md"
		if err := writePage(outDir, name, commandPage(cmd)); err != nil {
			return fmt.Errorf("failed to generate page for %s: %w", cmd.Name(), err)
		}
		log.Printf("  Generated %s", name)
	}
	return nil
}

func writePage(outDir, name string, w *MarkdownWriter) error {
	return os.WriteFile(filepath.Join(outDir, name), w.Bytes(), 0600)
}

// documentedCommands returns the visible children of cmd, skipping cobra's
// generated help and completion plumbing.
func documentedCommands(cmd *cobra.Command) []*cobra.Command {
	var out []*cobra.Command
	for _, c := range cmd.Commands() {
		if c.Hidden || c.Name() == "help" || strings.HasPrefix(c.Name(), "__") {
			continue
		}
		out = append(out, c)
	}
	return out
}

func cliIndex(root *cobra.Command, cmds []*cobra.Command) *MarkdownWriter {
	w := NewMarkdownWriter()
	w.Frontmatter("CLI Reference", "Command-line interface reference for modguard")
	w.GeneratedMarker()

	w.Header(1, "CLI Reference")
	w.Paragraph(root.Long)

	w.Header(2, "Installation")
	w.CodeBlock("bash", "go install github.com/leapstack-labs/modguard/cmd/modguard@latest")

	w.Header(2, "Commands")
	var rows [][]string
	for _, cmd := range cmds {
		link := fmt.Sprintf("[%s](/cli/%s)", InlineCode(cmd.Name()), cmd.Name())
		rows = append(rows, []string{link, cleanDescription(cmd.Short)})
		for _, sub := range documentedCommands(cmd) {
			anchor := fmt.Sprintf("[%s](/cli/%s#%s)", InlineCode(cmd.Name()+" "+sub.Name()), cmd.Name(), sub.Name())
			rows = append(rows, []string{anchor, cleanDescription(sub.Short)})
		}
	}
	w.Table([]string{"Command", "Description"}, rows)

	w.Header(2, "Global Options")
	w.Paragraph("Available on every command:")
	writeFlagsTable(w, root.PersistentFlags())

	w.Header(2, "Configuration")
	w.Paragraph(fmt.Sprintf(
		"Keys are read from %s, then from %s environment variables, then from flags set on the command line. Later layers win.",
		InlineCode("modguard.yaml"), InlineCode(config.EnvPrefix+"*")))
	writeSettingsTable(w, config.Settings())

	w.Header(2, "Exit Codes")
	w.Table([]string{"Code", "Meaning"}, [][]string{
		{InlineCode("0"), "No diagnostics at or above the requested severity"},
		{InlineCode("1"), fmt.Sprintf("%s reported %s, or the command failed (see stderr)",
			InlineCode("check"), InlineCode(commands.ErrViolations.Error()))},
	})

	return w
}

// writeSettingsTable documents each config key with its environment variable.
func writeSettingsTable(w *MarkdownWriter, settings []config.Setting) {
	var rows [][]string
	for _, s := range settings {
		env := InlineCode(s.EnvVar())
		if s.FileOnly {
			env = "file only"
		}
		rows = append(rows, []string{InlineCode(s.Key), env, formatDefault(s.Default), s.Description})
	}
	w.Table([]string{"Key", "Environment", "Default", "Description"}, rows)
}

func formatDefault(v interface{}) string {
	switch d := v.(type) {
	case nil:
		return "-"
	case []string:
		return InlineCode(strings.Join(d, ","))
	case string:
		return InlineCode(d)
	default:
		return InlineCode(fmt.Sprint(d))
	}
}

// commandPage documents cmd and, inline, each of its subcommands.
func commandPage(cmd *cobra.Command) *MarkdownWriter {
	w := NewMarkdownWriter()
	w.Frontmatter(cmd.Name(), cmd.Short)
	w.GeneratedMarker()

	w.Header(1, cmd.Name())
	w.Paragraph(firstNonEmpty(cmd.Long, cmd.Short))

	w.Header(2, "Usage")
	w.CodeBlock("bash", usageLine(cmd))

	if cmd.HasLocalFlags() {
		w.Header(2, "Options")
		writeFlagsTable(w, cmd.LocalFlags())
	}

	subs := documentedCommands(cmd)
	if len(subs) > 0 {
		w.Header(2, "Subcommands")
		for _, sub := range subs {
			w.Line(fmt.Sprintf("### %s {#%s}", sub.Name(), sub.Name()))
			w.Newline()
			w.Paragraph(firstNonEmpty(sub.Long, sub.Short))
			w.CodeBlock("bash", usageLine(sub))
			if sub.HasLocalFlags() {
				writeFlagsTable(w, sub.LocalFlags())
			}
		}
	}

	if cmd.Example != "" {
		w.Header(2, "Examples")
		w.CodeBlock("bash", cleanExample(cmd.Example))
	}

	w.Paragraph("Global options apply as well; see the [CLI reference](/cli/#global-options).")
	return w
}

// usageLine returns the full invocation, e.g. "modguard graph path <from> <to>".
func usageLine(cmd *cobra.Command) string {
	line := cmd.CommandPath()
	if _, args, ok := strings.Cut(cmd.Use, " "); ok {
		line += " " + args
	}
	if cmd.HasAvailableSubCommands() {
		line += " <subcommand>"
	}
	if cmd.HasAvailableLocalFlags() {
		line += " [options]"
	}
	return line
}

// writeFlagsTable lists flags as "-f, --format" with their value type.
func writeFlagsTable(w *MarkdownWriter, flags *pflag.FlagSet) {
	var rows [][]string
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		name := "--" + f.Name
		if f.Shorthand != "" {
			name = "-" + f.Shorthand + ", " + name
		}
		def := "-"
		if f.DefValue != "" && f.DefValue != "[]" {
			def = InlineCode(f.DefValue)
		}
		rows = append(rows, []string{InlineCode(name), f.Value.Type(), def, cleanDescription(f.Usage)})
	})
	w.Table([]string{"Flag", "Type", "Default", "Description"}, rows)
}

// cleanExample strips the indentation cobra examples share.
func cleanExample(example string) string {
	lines := strings.Split(strings.Trim(example, "\n"), "\n")
	indent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if n := len(line) - len(strings.TrimLeft(line, " \t")); indent < 0 || n < indent {
			indent = n
		}
	}
	for i, line := range lines {
		if len(line) >= indent && indent > 0 {
			lines[i] = line[indent:]
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
