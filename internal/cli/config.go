package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dshills/codesan/internal/config"
)

var (
	flagConfigProject bool
	flagConfigSources bool
	flagConfigYAML    bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage codesan configuration",
	Long: "Settings merge in this order, later layers winning: defaults, the user file,\n" +
		config.ProjectFile + " in the working directory, .env, CODESAN_* variables, flags.",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default user config file, or " + config.ProjectFile + " with --project",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.ConfigPath()
		if err != nil {
			return err
		}
		if flagConfigProject {
			path = config.ProjectFile
		}

		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Config file already exists at %s\n", path)
			return nil
		}

		if flagConfigProject {
			err = config.SaveProjectFile(".", config.Default())
		} else {
			err = config.Save(config.Default())
		}
		if err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Config file created at %s\n", path)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a value in the user config file",
	Long: "Keys: prefix, recursive, skip, extensions, exclude, threshold, format, jobs,\n" +
		"matchTimeoutMs, cache.enabled, cache.dir, cache.ttlSeconds. List values are\n" +
		"comma-separated; skip takes category names such as db_strings or db-strings.",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.ConfigPath()
		if err != nil {
			return err
		}
		// Without a user file, start from defaults so the saved file is
		// complete.
		cfg := config.Default()
		if _, err := os.Stat(path); err == nil {
			if cfg, err = config.LoadFile(); err != nil {
				return err
			}
		}

		if err := config.SetField(&cfg, args[0], args[1]); err != nil {
			return err
		}
		if err := config.Validate(cfg); err != nil {
			return err
		}

		if err := config.Save(cfg); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", args[0], args[1])
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration after all layers are merged",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(nil)
		if err != nil {
			return err
		}

		var v any = cfg
		if flagConfigSources {
			srcs, err := config.Sources()
			if err != nil {
				return err
			}
			v = struct {
				Effective config.Config   `json:"effective" yaml:"effective"`
				Sources   []config.Source `json:"sources" yaml:"sources"`
			}{cfg, srcs}
		}

		var data []byte
		if flagConfigYAML {
			data, err = yaml.Marshal(v)
		} else {
			data, err = json.MarshalIndent(v, "", "  ")
		}
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&flagConfigProject, "project", false, "Write "+config.ProjectFile+" in the working directory")
	configShowCmd.Flags().BoolVar(&flagConfigSources, "sources", false, "Also list which config layers were found")
	configShowCmd.Flags().BoolVar(&flagConfigYAML, "yaml", false, "Print YAML instead of JSON")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configShowCmd)
}
