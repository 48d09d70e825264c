package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/modguard/internal/cli/config"
	"github.com/leapstack-labs/modguard/internal/cli/output"
	"github.com/leapstack-labs/modguard/internal/engine"
	"github.com/leapstack-labs/modguard/pkg/core"
)

const configFileName = "modguard.yaml"

// starterConfig is the document written by init.
type starterConfig struct {
	SourceDirs  []string          `yaml:"source_dirs"`
	Include     []string          `yaml:"include"`
	Exclude     []string          `yaml:"exclude"`
	StatePath   string            `yaml:"state_path"`
	Lint        core.LintConfig   `yaml:"lint"`
	Constraints []core.Constraint `yaml:"constraints"`
}

const starterHeader = `# modguard configuration
#
# Constraints select subject modules with dotted globs and forbid them from
# reaching other modules:
#   MyApp.Repo    exactly MyApp.Repo
#   MyApp.Web.*   direct children of MyApp.Web
#   MyApp.Web.**  MyApp.Web and everything below it
#
# Rules: AG01 direct reference, AG02 transitive reference, AG03 use.
# Run 'modguard rules' for details.

`

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a starter modguard.yaml",
		Long: `Create a starter modguard.yaml in an Elixir project.

The application module is read from mix.exs (app: :my_app becomes MyApp) and
used to seed two constraints: the web layer must not reach the repo, and the
core must not reference the web layer. Umbrella projects also get apps/ as a
source directory.`,
		Example: `  # Initialize in current directory
  modguard init

  # Initialize another project
  modguard init ../my_app

  # Force overwrite existing config
  modguard init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			cfg := getConfig()
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))
			return runInit(r, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")

	return cmd
}

func runInit(r *output.Renderer, dir string, force bool) error {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	configPath := filepath.Join(dir, configFileName)
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", configFileName)
	}

	app := detectAppModule(dir)
	starter := newStarterConfig(app, isUmbrella(dir))

	data, err := marshalStarter(starter)
	if err != nil {
		return err
	}
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}

	r.Success(fmt.Sprintf("Created %s for %s", configPath, app))
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Adjust the constraints in " + configFileName)
	r.Println("  2. Run 'modguard check' to evaluate them")
	r.Println("  3. Run 'modguard graph deps <module>' to inspect dependencies")

	return nil
}

func newStarterConfig(app string, umbrella bool) starterConfig {
	sourceDirs := append([]string(nil), engine.DefaultSourceDirs...)
	if umbrella {
		sourceDirs = append(sourceDirs, "apps")
	}
	web := app + "Web"

	return starterConfig{
		SourceDirs: sourceDirs,
		Include:    engine.DefaultInclude,
		Exclude:    engine.DefaultExclude,
		StatePath:  config.DefaultStateFile,
		Lint: core.LintConfig{
			Severity: map[string]string{"AG04": "warning"},
		},
		Constraints: []core.Constraint{
			{
				Name:      "web-not-repo",
				Rule:      "AG02",
				Modules:   []string{web + ".**"},
				Forbidden: []string{app + ".Repo"},
			},
			{
				Name:      "core-not-web",
				Rule:      "AG01",
				Modules:   []string{app + ".**"},
				Forbidden: []string{web + ".**"},
			},
		},
	}
}

func marshalStarter(starter starterConfig) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(starterHeader)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(starter); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}

var mixAppPattern = regexp.MustCompile(`app:\s*:([a-z][a-z0-9_]*)`)

// detectAppModule reads the OTP app name from mix.exs and camelizes it.
// Falls back to MyApp.
func detectAppModule(dir string) string {
	data, err := os.ReadFile(filepath.Join(dir, "mix.exs"))
	if err != nil {
		return "MyApp"
	}
	m := mixAppPattern.FindSubmatch(data)
	if m == nil {
		return "MyApp"
	}
	return camelize(string(m[1]))
}

// camelize turns my_app into MyApp. Letters after the first of each part are kept.
func camelize(s string) string {
	titleCaser := cases.Title(language.Und, cases.NoLower)
	var b strings.Builder
	for _, part := range strings.Split(s, "_") {
		if part == "" {
			continue
		}
		b.WriteString(titleCaser.String(part))
	}
	return b.String()
}

func isUmbrella(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, "apps"))
	return err == nil && info.IsDir()
}
