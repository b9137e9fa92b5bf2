package cli

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leafgas/photofit/dataset"
	"github.com/leafgas/photofit/fit"
	"github.com/leafgas/photofit/internal/config"
)

var (
	fitIn       string
	fitOut      string
	fitMethod   string
	fitWorkers  int
	fitTcorrect bool
	fitTPU      bool
	fitGmeso    float64
	fitPatm     float64

	fitCmd = &cobra.Command{
		Use:   "fit",
		Short: "Fit every curve in a gas-exchange CSV and write the coefficient table",
		RunE:  runFit,
	}
)

func init() {
	fitCmd.Flags().StringVar(&fitIn, "in", "", "input CSV file (required)")
	fitCmd.Flags().StringVar(&fitOut, "out", "", "output CSV file (default stdout)")
	fitCmd.Flags().StringVar(&fitMethod, "method", "", "estimation method: default or bilinear")
	fitCmd.Flags().IntVar(&fitWorkers, "workers", 0, "concurrent curve fits")
	fitCmd.Flags().BoolVar(&fitTcorrect, "tcorrect", false, "normalize fitted rates to 25 °C")
	fitCmd.Flags().BoolVar(&fitTPU, "tpu", false, "estimate the TPU limitation")
	fitCmd.Flags().Float64Var(&fitGmeso, "gmeso", 0, "mesophyll conductance for the Ci→Cc transform")
	fitCmd.Flags().Float64Var(&fitPatm, "patm", 0, "atmospheric pressure in kPa")
	_ = fitCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(fitCmd)
}

func runFit(cmd *cobra.Command, args []string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	applyFlagOverrides(cmd, cfg)

	opts, err := cfg.FitOptions()
	if err != nil {
		return err
	}

	in, err := os.Open(fitIn)
	if err != nil {
		return fmt.Errorf("opening input: %w", err)
	}
	defer in.Close()

	curves, err := dataset.ReadCSV(in, cfg.VarNames)
	if err != nil {
		return err
	}
	logger.Info("read input", "file", fitIn, "curves", len(curves))

	fitter, err := fit.NewBatchFitter(opts...)
	if err != nil {
		return err
	}

	batch, err := fitter.FitAll(curves)
	if err != nil {
		return err
	}

	if batch.GroupCollision {
		logger.Warn("distinct curve identifiers share a group_id hash; join on id instead")
	}

	if err := writeSummary(batch, fitOut); err != nil {
		return err
	}

	logger.Info("fit complete",
		"curves", len(batch.IDs),
		"failed", len(batch.FailedIDs),
	)
	if report := batch.FailureReport(); report != "" {
		fmt.Fprintln(os.Stderr, report)
	}

	return nil
}

// applyFlagOverrides lets explicit flags win over the config file.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("method") {
		cfg.Method = fitMethod
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = fitWorkers
	}
	if cmd.Flags().Changed("tcorrect") {
		cfg.Tcorrect = fitTcorrect
	}
	if cmd.Flags().Changed("tpu") {
		cfg.FitTPU = fitTPU
	}
	if cmd.Flags().Changed("gmeso") {
		cfg.Gmeso = fitGmeso
	}
	if cmd.Flags().Changed("patm") {
		cfg.Patm = fitPatm
	}
}

func writeSummary(batch *fit.BatchResult, path string) error {
	out := os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer f.Close()
		out = f
	}

	w := csv.NewWriter(out)
	for _, row := range batch.Summary() {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing summary: %w", err)
		}
	}
	w.Flush()

	return w.Error()
}
