package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/BhavyaPagadala/urbix/internal/dashboard"
	"github.com/BhavyaPagadala/urbix/internal/report"
	"github.com/BhavyaPagadala/urbix/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API, dashboard and live event feed",
	Long:  `Starts the urbix server with the report REST API, user registration, statistics dashboard, audit trail, department notifications and a websocket feed of report events.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		idx, err := a.openSimilarIndex(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: similar-report search disabled: %v\n", err)
			idx = nil
		}

		dash := dashboard.New(a.store, a.pulse, a.loc, nil)
		a.engine.AddObserver(dash.Hub())

		port := a.cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port, _ = cmd.Flags().GetInt("port")
		}

		srv := server.New(server.Config{
			Port:     port,
			AllowAll: a.cfg.Server.AllowAllOrigins,
		}, server.Deps{
			Engine:        a.engine,
			Users:         a.users,
			Dashboard:     dash,
			Audit:         a.audit,
			Notifications: a.notify,
			Dispatcher:    a.dispatch,
			Similar:       idx,
			Pulse:         a.pulse,
			Location:      a.loc,
		})

		// Graceful shutdown.
		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		fmt.Fprintf(os.Stderr, "urbix server %s starting on port %d\n", Version, port)
		fmt.Fprintf(os.Stderr, "  Storage: %s (%s)\n", a.cfg.Storage, a.cfg.DataDir)
		fmt.Fprintf(os.Stderr, "  Provider: %s\n", a.cfg.Provider)
		fmt.Fprintf(os.Stderr, "  Reports: %d\n", len(a.store.List(report.Filter{})))

		err = srv.Start()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}

		a.engine.Wait()
		if idx != nil {
			idx.Wait()
			if perr := idx.Persist(a.similarIndexPath()); perr != nil {
				fmt.Fprintf(os.Stderr, "Warning: %v\n", perr)
			}
		}
		return err
	},
}

func init() {
	serveCmd.Flags().Int("port", 8080, "Port to listen on (overrides server.port)")
	rootCmd.AddCommand(serveCmd)
}
