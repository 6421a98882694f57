package cli

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/store"
)

var eventLimit int

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Print the most recent gesture events",
	Args:  cobra.NoArgs,
	Run:   runEvents,
}

func init() {
	eventsCmd.Flags().IntVar(&eventLimit, "limit", store.DefaultEventLimit, "number of events to show")
	rootCmd.AddCommand(eventsCmd)
}

func runEvents(cmd *cobra.Command, args []string) {
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

	events, err := st.Events().List(eventLimit)
	if err != nil {
		slog.Error("Failed to list events", "error", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, "TIME\tKIND\tX\tY\tSTATE\tSESSION")
	for _, e := range events {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%.1f\t%.1f\t%s\t%s\n",
			e.CreatedAt.Local().Format(time.DateTime), e.Kind, e.X, e.Y, e.State, shortID(e.SessionID))
	}
	_ = w.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
