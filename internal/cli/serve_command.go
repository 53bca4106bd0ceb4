package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"task-tracker/internal/httpapi"
	"task-tracker/internal/kv"
	"task-tracker/internal/logging"
)

func (r *RootCommand) newServeCommands() []*cobra.Command {
	var withAutosave bool
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the task API over HTTP",
		Long: `Serve the task API over HTTP on --http-addr.

The store is loaded from the configured backend. Changes are saved after
every request, or on the autosave schedule when --autosave is set.

Routes:
  GET|POST|DELETE  /tasks/task, /tasks/epic, /tasks/subtask
  GET|POST|PUT|DELETE /tasks/task/:id, /tasks/epic/:id, /tasks/subtask/:id
  GET  /tasks/subtask/epic/:id
  GET  /tasks/history, /tasks/priorities, /tasks/upcoming, /tasks/free, /tasks/summary
  DELETE /tasks`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("autosave") {
				r.config.Autosave.Enabled = withAutosave
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rt, err := OpenRuntime(ctx, r.config, r.config.Autosave.Enabled)
			if err != nil {
				return NewErrorHandler().Handle("open store", err)
			}
			r.runtime = rt

			return httpapi.NewServer(rt.API).Run(ctx, r.config.HTTP.Addr, r.config.HTTP.ShutdownTimeout)
		},
	}
	serveCmd.Flags().BoolVar(&withAutosave, "autosave", false, "Save on the autosave schedule instead of after every change")

	kvCmd := &cobra.Command{
		Use:   "kv-serve",
		Short: "Run the key-value server used by the kv backend",
		Long: `Run an in-memory key-value server on --kv-addr. Clients fetch a token
from /register and pass it as API_TOKEN to /save/:key and /load/:key.
Values are lost when the server stops.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			server := kv.NewServer()
			logging.Debugf("kv: token %s", server.Token())
			return server.Run(r.config.KV.Addr)
		},
	}

	return []*cobra.Command{serveCmd, kvCmd}
}
