package main

import (
	"github.com/nimeshabuddhika/upi-fraud-detection/pkg/artifacts"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type artifactSummary struct {
	State        artifacts.State     `yaml:"state"`
	Error        string              `yaml:"error,omitempty"`
	ModelVersion string              `yaml:"model_version,omitempty"`
	Trees        int                 `yaml:"trees,omitempty"`
	Classes      []int               `yaml:"classes,omitempty"`
	FeatureNames []string            `yaml:"feature_names,omitempty"`
	Encoders     map[string][]string `yaml:"encoders,omitempty"`
}

func summarize(ic *artifacts.InferenceContext) artifactSummary {
	s := artifactSummary{State: ic.State()}
	if err := ic.Err(); err != nil {
		s.Error = err.Error()
		return s
	}
	f := ic.Forest()
	s.ModelVersion = f.Version
	s.Trees = f.NumTrees()
	s.Classes = f.Classes()
	s.FeatureNames = f.FeatureNames
	s.Encoders = make(map[string][]string)
	for _, field := range ic.Registry().Fields() {
		s.Encoders[field] = ic.Registry().Classes(field)
	}
	return s
}

func inspectCmd(flags *artifactFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Load the artifact pair and print what it contains",
		Long: `Loads the model and encoders exactly as the server does and prints a YAML
summary: load state, model version, tree count and the training classes of
every encoded column. A pair that fails to load is reported, not an error.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := flags.logger()
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(summarize(flags.load(logger))); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}
