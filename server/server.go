// Copyright 2025 The Sebaran Authors
// SPDX-License-Identifier: Apache-2.0

// Package server exposes the dashboard over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jcodagnone/sebaran/cascade"
	"github.com/jcodagnone/sebaran/dashboard"
	"github.com/jcodagnone/sebaran/dataset"
	"github.com/jcodagnone/sebaran/spatial"
)

// DefaultHexResolution is used by /api/hexbins when res is not given.
const DefaultHexResolution = 7

// Dashboard is what the server needs from dashboard.Service.
type Dashboard interface {
	Prepare(ctx context.Context) (*dashboard.Prepared, error)
	View(ctx context.Context, sel cascade.Selection) (*dashboard.View, error)
	HexBins(ctx context.Context, sel cascade.Selection, res int) ([]spatial.HexBin, error)
	Reload()
}

// Server serves the dashboard API.
type Server struct {
	dash            Dashboard
	listen          string
	shutdownTimeout time.Duration
}

// NewServer creates a server listening on listen.
func NewServer(dash Dashboard, listen string, shutdownTimeout time.Duration) *Server {
	return &Server{dash: dash, listen: listen, shutdownTimeout: shutdownTimeout}
}

// Handler returns the routes.
func (s *Server) Handler() *gin.Engine {
	r := gin.Default()

	r.GET("/healthz", s.health)
	r.GET("/api/view", s.view)
	r.GET("/api/options", s.options)
	r.GET("/api/hexbins", s.hexBins)
	r.GET("/api/report", s.report)
	r.POST("/api/reload", s.reload)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		log.Printf("🌐 listening on http://%s", s.listen)

		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}

	log.Println("✅ server stopped")

	return nil
}

func selection(ctx *gin.Context) cascade.Selection {
	return cascade.Selection{
		Product: ctx.Query("product"),
		Office:  ctx.Query("office"),
		Branch:  ctx.Query("branch"),
	}
}

// abortWithError reports err as a single message. Schema errors also list
// the missing columns.
func abortWithError(ctx *gin.Context, err error) {
	var missing *dataset.MissingColumnsError
	if errors.As(err, &missing) {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":           err.Error(),
			"table":           missing.Table,
			"missing_columns": missing.Missing,
		})

		return
	}

	log.Printf("Error serving %s: %v", ctx.Request.URL.Path, err)
	ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func (s *Server) health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) view(ctx *gin.Context) {
	v, err := s.dash.View(ctx.Request.Context(), selection(ctx))
	if err != nil {
		abortWithError(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, v)
}

func (s *Server) options(ctx *gin.Context) {
	v, err := s.dash.View(ctx.Request.Context(), selection(ctx))
	if err != nil {
		abortWithError(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"selection": v.Selection,
		"options":   v.Options,
		"empty":     v.Empty,
	})
}

func (s *Server) hexBins(ctx *gin.Context) {
	res := DefaultHexResolution

	if raw := ctx.Query("res"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > spatial.MaxHexResolution {
			ctx.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("res must be an integer between 0 and %d", spatial.MaxHexResolution),
			})

			return
		}

		res = n
	}

	bins, err := s.dash.HexBins(ctx.Request.Context(), selection(ctx), res)
	if err != nil {
		abortWithError(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, gin.H{"res": res, "bins": bins})
}

func (s *Server) report(ctx *gin.Context) {
	p, err := s.dash.Prepare(ctx.Request.Context())
	if err != nil {
		abortWithError(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, p.Report)
}

func (s *Server) reload(ctx *gin.Context) {
	s.dash.Reload()

	p, err := s.dash.Prepare(ctx.Request.Context())
	if err != nil {
		abortWithError(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, p.Report)
}
