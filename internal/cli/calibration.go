package cli

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/store"
)

var resetCalibration bool

var calibrationCmd = &cobra.Command{
	Use:   "calibration",
	Short: "Show or clear the stored calibration points",
	Args:  cobra.NoArgs,
	Run:   runCalibration,
}

func init() {
	calibrationCmd.Flags().BoolVar(&resetCalibration, "reset", false, "clear all stored points")
	rootCmd.AddCommand(calibrationCmd)
}

func runCalibration(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	st, err := store.New(cfg.Store.Path)
	if err != nil {
		slog.Error("Failed to open store", "path", cfg.Store.Path, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	if resetCalibration {
		if err := st.Calibration().Clear(); err != nil {
			slog.Error("Failed to clear calibration", "error", err)
			os.Exit(1)
		}
		fmt.Println("Calibration cleared")
		return
	}

	slots, err := st.Calibration().Load()
	if err != nil {
		slog.Error("Failed to load calibration", "error", err)
		os.Exit(1)
	}

	target := cfg.Projection().Target()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, "SLOT\tRAW X\tRAW Y\tTARGET")
	for i, s := range slots {
		if !s.Set {
			_, _ = fmt.Fprintf(w, "%d\t-\t-\t(%.0f, %.0f)\n", i, target[i].X, target[i].Y)
			continue
		}
		_, _ = fmt.Fprintf(w, "%d\t%.2f\t%.2f\t(%.0f, %.0f)\n", i, s.X, s.Y, target[i].X, target[i].Y)
	}
	_ = w.Flush()
}
