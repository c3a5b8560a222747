package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config is the process-wide configuration, bound from flags, environment,
// and an optional config file (github.com/spf13/viper), mirroring
// apis-tts2go's config.LoadAndParse.
type Config struct {
	NumPosFields     int    `mapstructure:"num_pos_fields"`
	StrictEOSNewline bool   `mapstructure:"strict_eos_newline"`
	LogLevel         string `mapstructure:"log_level"`
}

var cfg Config

// NewCLI builds the root command and its subcommands, grounded on
// ollama-ollama's cmd.NewCLI shape (a root carrying persistent flags, one
// AddCommand call per subcommand, usage suppressed on error once flags
// parse cleanly).
func NewCLI() *cobra.Command {
	root := &cobra.Command{
		Use:   "subwordctl",
		Short: "Train and run the longest-match subword tokenizer",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return loadConfig(cmd)
		},
	}

	root.PersistentFlags().Int("num-pos-fields", 1, "number of POS-tuple columns in seed/feature records")
	root.PersistentFlags().Bool("strict-eos-newline", false, "require POS-tagged corpus EOS lines to end with a newline")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("config", "", "path to a config file (toml/yaml/json)")

	for _, name := range []string{"num-pos-fields", "strict-eos-newline", "log-level"} {
		if err := viper.BindPFlag(strings.ReplaceAll(name, "-", "_"), root.PersistentFlags().Lookup(name)); err != nil {
			panic(err)
		}
	}

	root.AddCommand(newTrainCmd(), newEncodeCmd(), newDecodeCmd(), newInspectCmd())
	return root
}

func loadConfig(cmd *cobra.Command) error {
	viper.SetEnvPrefix("SUBWORDCTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file: %w", err)
		}
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("binding configuration: %w", err)
	}

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	return nil
}
