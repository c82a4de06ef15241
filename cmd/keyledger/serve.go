package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/neomorfeo/keyledger/internal/adapter/file"
	"github.com/neomorfeo/keyledger/internal/app"
	"github.com/neomorfeo/keyledger/internal/config"
	"github.com/neomorfeo/keyledger/internal/i18n"

	handler "github.com/neomorfeo/keyledger/internal/adapter/http"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the backend file and the key API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := c.service(cmd.Context())
			if err != nil {
				return err
			}
			return c.serve(cmd.Context(), svc)
		},
	}

	defaults := config.Defaults()
	cmd.Flags().Int("port", defaults["server.port"].(int), "listen port")
	cmd.Flags().String("resource", defaults["server.resource"].(string), "file served as /backend.txt")
	return cmd
}

func newRouter(svc *app.KeyService, resource handler.ResourceStore) *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(otelchi.Middleware("keyledger", otelchi.WithChiRoutes(router)))

	api := humachi.New(router, huma.DefaultConfig("keyledger", version))
	handler.Register(api, svc)
	handler.RegisterResource(router, "/"+app.ExportFilename, resource)
	return router
}

// serve runs the HTTP server and, when configured, the River worker until
// ctx is canceled.
func (c *cli) serve(ctx context.Context, svc *app.KeyService) error {
	addr := ":" + strconv.Itoa(c.cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           newRouter(svc, file.New(c.cfg.Server.Resource)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	if c.jobs != nil {
		// Stop drains running jobs; the start context is not tied to ctx.
		if err := c.jobs.Start(context.WithoutCancel(ctx)); err != nil {
			return fmt.Errorf("river start: %w", err)
		}
		g.Go(func() error {
			<-gctx.Done()
			stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()
			if err := c.jobs.Stop(stopCtx); err != nil {
				return fmt.Errorf("river stop: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		log.Print(i18n.T(i18n.MsgServeListen, map[string]any{"Addr": addr}))
		log.Printf("API docs: http://localhost%s/docs", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Println("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Println("stopped")
	return nil
}
