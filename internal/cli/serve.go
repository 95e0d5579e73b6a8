package cli

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
	"github.com/valter-silva-au/swarm/internal/server"
)

var (
	serveAddr     string
	serveBasePath string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the swarm HTTP API",
	Long: `Serve the JSON API over HTTP: cards, overview, tasks, action submission
and dataset replacement under the base path (default /v0).

The OpenAPI document is served at <base-path>/openapi.json.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if ViewModel == nil || Actions == nil {
			return fmt.Errorf("services not initialized")
		}
		addr := serveAddr
		if addr == "" && Config != nil {
			addr = Config.ServerAddr
		}
		if addr == "" {
			addr = "127.0.0.1:8501"
		}

		handler, err := server.New(server.Config{
			ViewModel: ViewModel,
			Actions:   Actions,
			BasePath:  serveBasePath,
			Version:   appVersion,
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		fmt.Fprintf(cmd.OutOrStdout(), "Serving swarm API on http://%s%s (OpenAPI at %s/openapi.json)\n", addr, serveBasePath, serveBasePath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: server.addr from .swarmconfig)")
	serveCmd.Flags().StringVar(&serveBasePath, "base-path", "/v0", "API base path")
	rootCmd.AddCommand(serveCmd)
}
