package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"field-assembler/internal/config"
	"field-assembler/internal/diagnostic"
	"field-assembler/internal/mapping"
)

type cli struct {
	cfgFile  string
	logLevel string
	cfg      config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "field-assembler",
		Short:         "Inspect field-assembler configuration and descriptor files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.load()
		},
	}

	root.PersistentFlags().StringVarP(&c.cfgFile, "config", "c", "", "config file (YAML)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "override log.level")

	root.AddCommand(c.checkCmd(), c.containersCmd(), c.configCmd())

	return root
}

func (c *cli) load() error {
	v := config.New()

	if c.cfgFile != "" {
		v.SetConfigFile(c.cfgFile)

		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	if c.logLevel != "" {
		v.Set("log.level", c.logLevel)
	}

	cfg, err := config.FromViper(v)
	if err != nil {
		return err
	}

	if err := cfg.Log.Apply(); err != nil {
		return err
	}

	c.cfg = cfg

	return nil
}

// descriptors returns the files named on the command line, or the configured ones.
func (c *cli) descriptors(args []string) (*mapping.File, error) {
	paths := args
	if len(paths) == 0 {
		paths = c.cfg.Descriptors
	}

	if len(paths) == 0 {
		return nil, config.ErrNoDescriptors
	}

	return mapping.LoadFiles(paths...)
}

func (c *cli) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [descriptor files...]",
		Short: "Validate descriptor files",
		Long: `Validate descriptor files without Go type information: handlers,
strategies, property path syntax and container declarations are checked.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := c.descriptors(args)
			if err != nil {
				return err
			}

			diags := mapping.Validate(f, nil)
			printDiagnostics(cmd, diags)

			if diags.HasErrors() {
				return fmt.Errorf("%d error(s) found", len(diags.Errors))
			}

			cmd.Printf("ok: %d type(s), %d container(s)\n", len(f.Types), len(f.Containers))

			return nil
		},
	}
}

func printDiagnostics(cmd *cobra.Command, diags *diagnostic.Diagnostics) {
	for _, d := range diags.All() {
		cmd.Printf("%s: %s\n", d.Severity, d)
	}
}

func (c *cli) containersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "containers [descriptor files...]",
		Short: "List containers declared or referenced by descriptor files",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := c.descriptors(args)
			if err != nil {
				return err
			}

			sizes := map[string]int{}
			for _, def := range f.Containers {
				sizes[def.Namespace] = len(def.Data)
			}

			for _, ns := range f.Namespaces() {
				n, declared := sizes[ns]

				switch {
				case !declared:
					cmd.Printf("%s\texternal\n", ns)
				case slices.Contains(c.cfg.Cache.Namespaces, ns):
					cmd.Printf("%s\t%d entries\tcached\n", ns, n)
				default:
					cmd.Printf("%s\t%d entries\n", ns, n)
				}
			}

			return nil
		},
	}
}

func (c *cli) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := yaml.Marshal(effective(c.cfg))
			if err != nil {
				return err
			}

			cmd.Print(string(out))

			return nil
		},
	}
}

// effective renders cfg with yaml keys matching the config file layout.
func effective(cfg config.Config) map[string]any {
	return map[string]any{
		"executor": map[string]any{
			"ordered":           cfg.Executor.Ordered,
			"parallelism":       cfg.Executor.Parallelism,
			"conversion_policy": cfg.Executor.ConversionPolicy,
		},
		"cache": map[string]any{
			"policy":           cfg.Cache.Policy,
			"ttl":              cfg.Cache.TTL.String(),
			"cleanup_interval": cfg.Cache.CleanupInterval.String(),
			"size":             cfg.Cache.Size,
			"namespaces":       cfg.Cache.Namespaces,
		},
		"log": map[string]any{
			"level":  cfg.Log.Level,
			"format": cfg.Log.Format,
		},
		"descriptors": cfg.Descriptors,
	}
}
