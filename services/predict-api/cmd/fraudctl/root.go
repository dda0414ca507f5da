package main

import (
	"github.com/nimeshabuddhika/upi-fraud-detection/pkg/artifacts"
	"github.com/nimeshabuddhika/upi-fraud-detection/pkg/client"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type artifactFlags struct {
	model    string
	encoders string
	server   string
	verbose  bool
}

func newRootCmd() *cobra.Command {
	flags := &artifactFlags{}
	rootCmd := &cobra.Command{
		Use:           "fraudctl",
		Short:         "Score UPI transactions for fraud from the command line",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&flags.model, "model", "model.json", "Path to the model artifact")
	rootCmd.PersistentFlags().StringVar(&flags.encoders, "encoders", "encoders.json", "Path to the encoder artifact")
	rootCmd.PersistentFlags().StringVar(&flags.server, "server", "", "Score against a running predict API instead of local artifacts")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Log to stderr")

	rootCmd.AddCommand(scoreCmd(flags))
	rootCmd.AddCommand(predictCmd(flags))
	rootCmd.AddCommand(inspectCmd(flags))
	return rootCmd
}

func (f *artifactFlags) logger() *zap.Logger {
	if !f.verbose {
		return zap.NewNop()
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// load never fails; callers check Ready so inspect can still report the cause.
func (f *artifactFlags) load(logger *zap.Logger) *artifacts.InferenceContext {
	return artifacts.Load(logger, artifacts.Paths{Model: f.model, Encoders: f.encoders})
}

func (f *artifactFlags) remote(logger *zap.Logger) *client.Client {
	if f.server == "" {
		return nil
	}
	return client.New(f.server, logger)
}
