package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rgehrsitz/fincast/internal/server"
	"github.com/rgehrsitz/fincast/internal/store"
)

func serveCmd(a *app) *cobra.Command {
	var (
		port    int
		noStore bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("port") {
				port = a.settings.Port
			}

			var st *store.Store
			if !noStore {
				var err error
				if st, err = a.openStore(); err != nil {
					return err
				}
				defer st.Close()
			}

			srv := server.New(server.Config{Port: port, Log: a.log, Store: st, Version: version})

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "Listen port; defaults to FINCAST_PORT")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "Run without a database; storage routes return 503")
	return cmd
}
