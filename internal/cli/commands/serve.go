package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/leapstack-labs/scriptdeps/internal/cli/config"
	"github.com/leapstack-labs/scriptdeps/internal/ui"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the script graph over HTTP",
		Long: `Start a local HTTP server exposing the dataset, searches and a shared
selection as JSON, plus a server-sent event stream of node and edge updates
for a graph front end.

Endpoints:
  GET    /api/report
  GET    /api/scripts
  GET    /api/scripts/{name}
  GET    /api/search?q=&by=
  GET    /api/selection
  POST   /api/selection/{name}
  DELETE /api/selection/{name}
  DELETE /api/selection
  GET    /api/events

With --watch the dump is re-read when it changes and pinned scripts are kept.`,
		Example: `  # Serve on the default port
  scriptdeps serve -i prod.dat

  # Custom port, no file watching
  scriptdeps serve --port 9000 --watch=false`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd)
		},
	}

	cmd.Flags().Int("port", config.DefaultPort, "Port to serve on")
	cmd.Flags().Bool("watch", config.DefaultWatch, "Reload when the dump changes")

	return cmd
}

func runServe(cmd *cobra.Command) error {
	cmdCtx := loadTolerant(cmd)
	cfg := cmdCtx.Cfg

	server := ui.NewServer(ui.Config{
		Engine: cmdCtx.Engine,
		Port:   cfg.Serve.Port,
		Watch:  cfg.Serve.Watch,
		Logger: cmdCtx.Logger,
	})

	r := cmdCtx.Renderer
	r.Printf("Serving %d scripts on http://localhost:%d/api\n", cmdCtx.Engine.Dataset().Len(), cfg.Serve.Port)
	if cfg.Serve.Watch && cmdCtx.Engine.WatchPath() != "" {
		r.Muted(fmt.Sprintf("Watching %s", cmdCtx.Engine.WatchPath()))
	}
	r.Println("Press Ctrl+C to stop")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Serve(ctx)
}
