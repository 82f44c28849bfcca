package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	apperrors "pdf-ocr-server/pkg/errors"
)

// ServiceName is reported by the health endpoint
const ServiceName = "pdf-ocr-server"

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(ocrHandler *OCRHandler, middleware *RequestMiddleware, allowedOrigins []string) http.Handler {
	router := mux.NewRouter()

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": ServiceName})
	}).Methods(http.MethodGet)

	router.HandleFunc("/process-pdf", ocrHandler.ProcessPDF).Methods(http.MethodPost)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, apperrors.NewNotFoundError("Route not found"))
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, apperrors.NewMethodNotAllowedError(r.Method, r.URL.Path))
	})

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	// Configure CORS
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			RequestIDHeader,
		},
		ExposedHeaders: []string{
			"Content-Disposition",
			"X-Page-Count",
			RequestIDHeader,
		},
		MaxAge: 300, // Maximum value not ignored by any of major browsers
	})

	return c.Handler(middleware.Chain(router))
}
