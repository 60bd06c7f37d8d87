package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// configKeys are the settings read by other commands.
var configKeys = []string{"data", "format", "delimiter", "assembly", "genes", "transcripts", "noheader", "workers"}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage vibe-exon configuration",
		Long:  "Show, get, or set configuration values. Config is stored in ~/.vibe-exon.yaml.",
		Example: `  vibe-exon config                                  # show all config
  vibe-exon config set data ~/data/refGene.txt.gz   # default data file
  vibe-exon config set format refgene               # default layout
  vibe-exon config get format                       # get a value`,
		Args: maxArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd)
		},
	}

	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "set <key> <value>",
		Short:     "Set a configuration value",
		ValidArgs: configKeys,
		Args:      rangeArgs(2, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd, args[0], args[1])
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "get <key>",
		Short:     "Get a configuration value",
		ValidArgs: configKeys,
		Args:      rangeArgs(1, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(cmd, args[0])
		},
	}
}

func runConfigShow(cmd *cobra.Command) error {
	settings := viper.AllSettings()
	if len(settings) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "# No configuration set. Config file: ~/.vibe-exon.yaml")
		return nil
	}

	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), string(out))
	return nil
}

func runConfigSet(cmd *cobra.Command, key, value string) error {
	switch key {
	case "noheader":
		b, err := strconv.ParseBool(normalizeBool(value))
		if err != nil {
			return usagef("%s expects a boolean, got %q", key, value)
		}
		viper.Set(key, b)
	case "workers":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return usagef("%s expects a non-negative integer, got %q", key, value)
		}
		viper.Set(key, n)
	default:
		viper.Set(key, value)
	}

	// Ensure config file exists
	cfgFile := viper.ConfigFileUsed()
	if cfgFile == "" {
		var err error
		if cfgFile, err = defaultConfigPath(); err != nil {
			return err
		}
	}

	if err := viper.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s in %s\n", key, value, cfgFile)
	return nil
}

func normalizeBool(v string) string {
	switch v {
	case "yes", "on":
		return "true"
	case "no", "off":
		return "false"
	}
	return v
}

func runConfigGet(cmd *cobra.Command, key string) error {
	val := viper.Get(key)
	if val == nil {
		return fmt.Errorf("key %q is not set", key)
	}
	fmt.Fprintln(cmd.OutOrStdout(), val)
	return nil
}
