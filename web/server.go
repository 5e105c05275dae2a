// ABOUTME: HTTP server receiving Airtable webhooks
// ABOUTME: Routes POST /webhook to the dispatcher and reports success or error as JSON
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/harperreed/peoplesync/models"
	"github.com/harperreed/peoplesync/sync"
)

// HealthMessage is the body of GET /.
const HealthMessage = "peoplesync API is running!"

// Dispatcher applies one webhook event.
type Dispatcher interface {
	Dispatch(ctx context.Context, event models.InboundEvent) (*sync.Result, error)
}

// Options configure the server's middleware.
type Options struct {
	MaxBodyBytes  int64
	WebhookSecret string
	Logger        *log.Logger
}

type Server struct {
	dispatcher Dispatcher
	opts       Options
	logger     *log.Logger
}

type response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func NewServer(dispatcher Dispatcher, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		dispatcher: dispatcher,
		opts:       opts,
		logger:     logger,
	}
}

// Handler returns the routed handler wrapped in middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleHealth)
	mux.Handle("POST /webhook", WebhookSecret(s.opts.WebhookSecret)(http.HandlerFunc(s.handleWebhook)))

	var h http.Handler = mux
	h = BodyLimit(s.opts.MaxBodyBytes)(h)
	h = AccessLog(s.logger)(h)
	h = RequestID(h)
	return h
}

// Start serves on port until ctx is cancelled, then drains for up to 10s.
func (s *Server) Start(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Printf("Starting webhook server at http://localhost%s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.logger.Printf("Shutting down webhook server")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(HealthMessage))
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var payload models.WebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Status:  "error",
			Message: fmt.Sprintf("invalid JSON payload: %v", err),
		})
		return
	}

	result, err := s.dispatcher.Dispatch(r.Context(), payload.Event())
	if err != nil {
		s.logger.Printf("✗ Error: %v", err)
		writeJSON(w, http.StatusInternalServerError, response{Status: "error", Message: err.Error()})
		return
	}

	if result != nil && result.Outcome == models.OutcomeCreated {
		s.logger.Printf("Contact created in Google Contacts with ID: %s", result.ResourceName)
	}

	writeJSON(w, http.StatusOK, response{Status: "success"})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
