package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/scribe/config"
	"github.com/kbukum/scribe/version"
)

const serviceName = "scribe"

type globalFlags struct {
	configFile string
	envFile    string
}

func newRootCmd() *cobra.Command {
	var flags globalFlags
	root := &cobra.Command{
		Use:   serviceName,
		Short: "Speaker diarization and transcription service",
		Long: `scribe splits recordings into speaker turns with a diarization model,
transcribes every turn and stores the result per clip.`,
		Version:      version.Get().String(),
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "", "path to config.yml (default: search ./cmd/scribe, ./config, .)")
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", "", "path to a .env file")

	root.AddCommand(newServeCmd(&flags), newTranscribeCmd(&flags), newMigrateCmd(&flags), newVersionCmd())
	return root
}

// load reads config.yml, the .env file and SCRIBE_* variables into a Config.
func (f *globalFlags) load() (*Config, error) {
	cfg := &Config{}
	var opts []config.LoaderOption
	if f.configFile != "" {
		opts = append(opts, config.WithConfigFile(f.configFile))
	}
	if f.envFile != "" {
		opts = append(opts, config.WithEnvFile(f.envFile))
	}
	if err := config.LoadConfig(serviceName, cfg, opts...); err != nil {
		return nil, err
	}
	if cfg.Name == "" {
		cfg.Name = serviceName
	}
	if cfg.Version == "" {
		cfg.Version = version.Get().String()
	}
	return cfg, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Get().Long())
		},
	}
}
