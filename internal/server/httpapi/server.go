// Package httpapi exposes the contest services over HTTP/JSON.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/contestfund/internal/logging"
	"github.com/dmitrijs2005/contestfund/internal/server/services"
	"github.com/rs/cors"
)

const shutdownTimeout = 10 * time.Second

// Services bundles the operations served by the API.
type Services struct {
	Contests *services.ContestService
	Credits  *services.CreditService
	Entries  *services.EntryService
	Voting   *services.VotingService
}

type HTTPServer struct {
	address        string
	svc            Services
	logger         logging.Logger
	jwtSecret      []byte
	allowedOrigins []string
}

func NewHTTPServer(a string, l logging.Logger, svc Services, secretKey string, allowedOrigins []string) *HTTPServer {
	return &HTTPServer{
		address:        a,
		svc:            svc,
		logger:         l.With("module", "http_server"),
		jwtSecret:      []byte(secretKey),
		allowedOrigins: allowedOrigins,
	}
}

// Handler returns the routed API wrapped in CORS and request logging.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()
	base := "/api/v1"

	mux.HandleFunc("GET "+base+"/ping", s.ping)

	mux.Handle("POST "+base+"/contests", s.authenticated(s.createContest))
	mux.HandleFunc("GET "+base+"/contests/{id}", s.getContest)
	mux.Handle("POST "+base+"/contests/{id}/close", s.authenticated(s.closeContest))
	mux.Handle("POST "+base+"/contests/{id}/credits", s.authenticated(s.fund))
	mux.Handle("POST "+base+"/contests/{id}/entries", s.authenticated(s.submitEntry))
	mux.HandleFunc("GET "+base+"/contests/{id}/entries", s.listEntries)

	mux.HandleFunc("GET "+base+"/entries/{id}", s.getEntry)
	mux.Handle("POST "+base+"/entries/{id}/votes", s.authenticated(s.castVote))

	mux.Handle("GET "+base+"/credits", s.authenticated(s.listCredits))
	mux.HandleFunc("GET "+base+"/credits/{id}", s.getCredit)

	c := cors.New(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	})

	return s.logRequests(c.Handler(mux))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
