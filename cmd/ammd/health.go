package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/stackmint/amm/x/amm/keeper"
)

var startTime = time.Now()

// HealthCheck serves liveness and readiness endpoints backed by the keeper's
// state auditor.
type HealthCheck struct {
	server *http.Server
	keeper *keeper.Keeper
}

type healthResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Goroutines    int    `json:"goroutines"`
	Error         string `json:"error,omitempty"`
}

// NewHealthCheck creates a health server for the given keeper.
func NewHealthCheck(k *keeper.Keeper, port int) *HealthCheck {
	h := &HealthCheck{keeper: k}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/ready", h.handleReady)

	h.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return h
}

// Start serves in a background goroutine.
func (h *HealthCheck) Start() {
	go func() {
		if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("health server error: %v\n", err)
		}
	}()
}

// Stop shuts the server down gracefully.
func (h *HealthCheck) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = h.server.Shutdown(ctx)
}

func (h *HealthCheck) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeHealth(w, http.StatusOK, healthResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(startTime).Seconds()),
		Goroutines:    runtime.NumGoroutine(),
	})
}

// handleReady runs the pool invariant audit; a violation flips readiness.
func (h *HealthCheck) handleReady(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:        "ready",
		UptimeSeconds: int64(time.Since(startTime).Seconds()),
		Goroutines:    runtime.NumGoroutine(),
	}
	if err := h.keeper.CheckInvariants(r.Context()); err != nil {
		resp.Status = "degraded"
		resp.Error = err.Error()
		writeHealth(w, http.StatusServiceUnavailable, resp)
		return
	}
	writeHealth(w, http.StatusOK, resp)
}

func writeHealth(w http.ResponseWriter, code int, resp healthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
