package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
	"ozon-extractor/extractor"
	"ozon-extractor/internal/config"
	"ozon-extractor/internal/types"
)

// APIRequest represents the request body for the API
type APIRequest struct {
	URL string `json:"url"`
}

// APIResponse represents the response from the API
type APIResponse struct {
	Success bool                 `json:"success"`
	Data    *types.ProductRecord `json:"data,omitempty"`
	Error   string               `json:"error,omitempty"`
}

type productExtractor interface {
	Extract(ctx context.Context, productURL string) (*types.ProductRecord, error)
}

// Server holds the API server configuration
type Server struct {
	logger    *logrus.Logger
	config    *types.Config
	extractor productExtractor
	// sessions caps the number of browsers running at once
	sessions *semaphore.Weighted
}

// NewServer creates a new API server
func NewServer() (*Server, error) {
	// Setup logging
	logger := logrus.New()

	// Set timestamp format with milliseconds
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})

	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		if level, err := logrus.ParseLevel(levelStr); err == nil {
			logger.SetLevel(level)
		}
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	// Create configuration
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	return newServer(cfg, logger, extractor.NewOzonExtractor(cfg, logger)), nil
}

func newServer(cfg *types.Config, logger *logrus.Logger, ex productExtractor) *Server {
	limit := int64(cfg.MaxConcurrentSessions)
	if limit < 1 {
		limit = 1
	}
	return &Server{
		logger:    logger,
		config:    cfg,
		extractor: ex,
		sessions:  semaphore.NewWeighted(limit),
	}
}

// handleExtract handles the extraction API endpoint
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	// Set CORS headers
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	// Handle preflight requests
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	// Only allow POST requests
	if r.Method != http.MethodPost {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Parse request body
	var req APIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		s.sendError(w, "No url provided", http.StatusBadRequest)
		return
	}

	s.logger.Infof("API request received for %s", req.URL)

	if err := s.sessions.Acquire(r.Context(), 1); err != nil {
		s.sendError(w, "Request cancelled while waiting for a browser", http.StatusServiceUnavailable)
		return
	}
	defer s.sessions.Release(1)

	record, err := s.extractor.Extract(r.Context(), req.URL)
	if err != nil {
		s.logger.Warnf("Failed to extract %s: %v", req.URL, err)
		status := http.StatusInternalServerError
		if errors.Is(err, types.ErrInvalidURL) {
			status = http.StatusBadRequest
		}
		s.sendError(w, err.Error(), status)
		return
	}

	// Send success response
	response := APIResponse{
		Success: true,
		Data:    record,
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.Errorf("Failed to encode response: %v", err)
	}
}

// sendError sends an error response
func (s *Server) sendError(w http.ResponseWriter, message string, statusCode int) {
	response := APIResponse{
		Success: false,
		Error:   message,
	}

	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.Errorf("Failed to encode error response: %v", err)
	}
}

// handleHealth handles the health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}

// Routes returns the server's HTTP handler
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/extract", s.handleExtract)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Start starts the API server
func (s *Server) Start(port string) error {
	s.logger.Infof("Starting API server on port %s", port)
	s.logger.Info("Available endpoints:")
	s.logger.Info("  POST /extract - Extract one Ozon product page")
	s.logger.Info("  GET  /health  - Health check")

	return http.ListenAndServe(":"+port, s.Routes())
}

func main() {
	// Get port from environment variable, default to 8080
	serverPort := "8080"
	if envPort := os.Getenv("API_PORT"); envPort != "" {
		serverPort = envPort
		fmt.Printf("Using port from environment variable API_PORT: %s\n", serverPort)
	} else {
		fmt.Printf("No API_PORT environment variable found, using default: %s\n", serverPort)
	}

	// Create and start server
	server, err := NewServer()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	log.Fatal(server.Start(serverPort))
}
