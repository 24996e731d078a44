// Package server runs the HTTP server until its context is cancelled, then
// drains in-flight requests. A gRPC health server rides along when a port is
// configured.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/shashiranjanraj/marmita/pkg/grpc"
	"github.com/shashiranjanraj/marmita/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

type Options struct {
	Addr     string
	Handler  http.Handler
	GRPCPort string
	Probes   []func(context.Context) error
}

// Run blocks until ctx is done or the listener fails.
func Run(ctx context.Context, opts Options) error {
	srv := &http.Server{
		Addr:              opts.Addr,
		Handler:           opts.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	if opts.GRPCPort != "" {
		probes := make([]grpc.Probe, 0, len(opts.Probes))
		for _, p := range opts.Probes {
			probes = append(probes, p)
		}
		gs, err := grpc.Start(opts.GRPCPort, probes...)
		if err != nil {
			return err
		}
		defer grpc.Stop(gs)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("marmita listening", "addr", opts.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", shutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
