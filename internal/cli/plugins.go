package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/plugin"
)

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "List actuator plugins found in the plugin directory",
	Args:  cobra.NoArgs,
	Run:   runPlugins,
}

func init() {
	rootCmd.AddCommand(pluginsCmd)
}

func runPlugins(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	mgr := plugin.NewManager(cfg.Actuator.PluginDir)
	if err := mgr.Discover(); err != nil {
		slog.Error("Failed to discover plugins", "dir", cfg.Actuator.PluginDir, "error", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tVERSION\tACTIONS\tDESCRIPTION")
	for _, p := range mgr.List() {
		actions := strings.Join(p.Manifest.Actions, ",")
		if actions == "" {
			actions = "*"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Manifest.Name, p.Manifest.Version, actions, p.Manifest.Description)
	}
	_ = w.Flush()
}
