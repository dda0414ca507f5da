package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nimeshabuddhika/upi-fraud-detection/pkg/views"
	"github.com/nimeshabuddhika/upi-fraud-detection/services/predict-api/internal/services"
	"github.com/spf13/cobra"
)

func scoreCmd(flags *artifactFlags) *cobra.Command {
	var summary bool
	cmd := &cobra.Command{
		Use:   "score [file.csv]",
		Short: "Score every row of a CSV file (\"-\" reads stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			logger := flags.logger()
			var res views.BatchResult
			if remote := flags.remote(logger); remote != nil {
				res, err = remote.UploadCSV(cmd.Context(), filepath.Base(args[0]), data)
			} else {
				svc := services.NewBatchService(logger, flags.load(logger))
				res, err = svc.PredictBatch(cmd.Context(), "fraudctl", data)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if summary {
				_, err = fmt.Fprintf(out, "processed=%d fraud=%d\n", res.TotalProcessed, res.FraudCount)
				return err
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	cmd.Flags().BoolVar(&summary, "summary", false, "Print only the counts")
	return cmd
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}
