package server

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/dotmac-platform/settings-service/internal/constants"
	"github.com/dotmac-platform/settings-service/internal/middleware"
	"github.com/dotmac-platform/settings-service/internal/utils"
)

// SetupRoutes configures the routes for the application.
// It creates a router hierarchy with middleware and grouped routes
// according to functionality for organized API structure.
//
// The configured routes include:
// - Health check and version endpoints (unprotected)
// - Authentication endpoints (login, logout, current user)
// - Settings endpoints (category listing, read, update, reset)
// - Export/import endpoints for settings transfer
// - Audit trail endpoints (listing, restore)
//
// Route protection is handled through middleware for authenticated endpoints.
func (s *Server) SetupRoutes() {
	// Create router
	r := chi.NewRouter()

	// Get allowed origins from environment or use default values
	allowedOrigins := getAllowedOrigins()

	// Custom CORS middleware that applies to all routes
	// This ensures CORS headers are applied properly and consistently
	r.Use(corsMiddleware(allowedOrigins))

	// Base middleware
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Recovery())
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.SuspiciousRequestBlock())

	// Rate limiters. Login attempts get a much tighter budget than
	// general API traffic.
	authLimiter := middleware.NewRateLimiter(10, time.Minute)
	apiLimiter := middleware.NewRateLimiter(120, time.Minute)

	// Health check and version routes (unprotected)
	r.Group(func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			// Check database connection
			err := s.Db.HealthCheck(r.Context())
			if err != nil {
				log.Error().Err(err).Msg("Health check failed")
				utils.Error(w, http.StatusServiceUnavailable, "service_unavailable", "Service is not healthy", nil)
				return
			}

			utils.JSON(w, http.StatusOK, map[string]string{
				"status":  "healthy",
				"version": s.Config.App.Version,
			})
		})

		r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
			utils.JSON(w, http.StatusOK, map[string]string{
				"version":     s.Config.App.Version,
				"environment": s.Config.App.Environment,
			})
		})

		r.Get("/api/routes", s.GetAPIRoutes)
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Authentication routes
		r.Route("/auth", func(r chi.Router) {
			// Public auth endpoints
			r.Group(func(r chi.Router) {
				r.Use(middleware.RateLimit(authLimiter, "auth"))

				r.Post("/login", s.Handlers.AuthHandler.Login)
				r.Post("/logout", s.Handlers.AuthHandler.Logout)

				r.Options("/login", handlePreflight(allowedOrigins))
			})

			// Protected auth endpoints
			r.Group(func(r chi.Router) {
				r.Use(middleware.JWTAuth(s.authProviders.JWTService))

				r.Get("/me", s.Handlers.AuthHandler.Me)
			})
		})

		// Settings routes (all protected)
		r.Route("/settings", func(r chi.Router) {
			r.Use(middleware.RateLimit(apiLimiter, "api"))
			r.Use(middleware.JWTAuth(s.authProviders.JWTService))

			r.Get("/", s.Handlers.SettingsHandler.GetAllSettings)
			r.Get("/categories", s.Handlers.SettingsHandler.GetCategories)

			// Settings export/import routes. These are registered before
			// the {category} routes so chi does not treat "export" or
			// "import" as a category name.
			r.Get("/export", s.Handlers.TransferHandler.Export)
			r.Post("/import", s.Handlers.TransferHandler.Import)

			// Audit trail routes
			r.Route("/audit", func(r chi.Router) {
				r.Get("/", s.Handlers.AuditHandler.ListAuditLog)
				r.Post("/{entryID}/restore", s.Handlers.AuditHandler.RestoreAuditEntry)
			})

			// Per-category routes
			r.Route("/{category}", func(r chi.Router) {
				r.Get("/", s.Handlers.SettingsHandler.GetCategory)
				r.Put("/", s.Handlers.SettingsHandler.UpdateCategory)
				r.Post("/reset", s.Handlers.SettingsHandler.ResetCategory)
			})
		})
	})

	// Set the router
	s.router = r
}

// GetRouter returns the configured router.
//
// Returns:
//   - The chi.Router implementation used by the server
//
// This method is primarily used for testing and for
// integrating the router with other components.
func (s *Server) GetRouter() chi.Router {
	return s.router.(chi.Router)
}

// handlePreflight is an explicit handler for OPTIONS preflight requests.
// It properly configures CORS headers for preflight requests to ensure
// cross-origin requests can proceed if the origin is allowed.
//
// Parameters:
//   - allowedOrigins: A list of origins that are allowed to access the API
//
// Returns:
//   - An http.HandlerFunc that handles the OPTIONS preflight requests
//
// The handler responds with a 204 No Content status, along with appropriate
// CORS headers to allow the specified origins, methods, and headers.
func handlePreflight(allowedOrigins []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		// Check if the origin is allowed
		if utils.ContainsString(allowedOrigins, "*") || utils.ContainsString(allowedOrigins, origin) {
			w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-CSRF-Token, X-Request-ID")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Max-Age", "300")
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// corsMiddleware creates a custom CORS middleware with the specified allowed origins.
// It handles Cross-Origin Resource Sharing to allow browsers to safely access the API
// from different domains while protecting against unauthorized cross-origin requests.
//
// Parameters:
//   - allowedOrigins: A list of origins that are allowed to access the API
//
// Returns:
//   - A middleware function that adds CORS headers to responses
//
// The middleware checks incoming requests against the allowed origins list,
// adds appropriate CORS headers to responses, and handles OPTIONS preflight requests.
// It supports credentials mode for authenticated cross-origin requests.
func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			// Check if the request's origin is in our allowed list
			if utils.ContainsString(allowedOrigins, "*") || utils.ContainsString(allowedOrigins, origin) {
				// Set CORS headers for all responses, not just OPTIONS
				w.Header().Set("Access-Control-Allow-Origin", origin)

				// These headers are essential for credentials mode
				w.Header().Set("Access-Control-Allow-Credentials", "true")

				// Handle OPTIONS preflight requests
				if r.Method == "OPTIONS" {
					w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
					w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-CSRF-Token, X-Request-ID")
					w.Header().Set("Access-Control-Max-Age", "300")

					// Respond to preflight request
					w.WriteHeader(http.StatusNoContent)
					return
				}
			}

			// Non-preflight requests continue down the chain either way
			next.ServeHTTP(w, r)
		})
	}
}

// getAllowedOrigins reads allowed CORS origins from environment variable or falls back to default values.
// This provides flexibility to configure allowed origins without recompiling the application.
//
// Returns:
//   - A slice of strings representing allowed origins for CORS
//
// The function first checks for an ALLOWED_ORIGINS environment variable.
// If set, it splits the value by comma and uses the resulting list.
// Otherwise, it falls back to a default list of origins.
func getAllowedOrigins() []string {
	// Check if ALLOWED_ORIGINS is set in environment
	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")

	// If ALLOWED_ORIGINS is set, use it
	if allowedOriginsEnv != "" {
		// Split by comma and trim spaces
		origins := strings.Split(allowedOriginsEnv, ",")
		for i, origin := range origins {
			origins[i] = strings.TrimSpace(origin)
		}
		log.Info().Strs("allowed_origins", origins).Msg("Using CORS allowed origins from environment")
		return origins
	}

	// Default hardcoded values if environment variable is not set
	// Include both HTTP and HTTPS for localhost to be safe
	defaultOrigins := []string{"http://localhost:5173", "https://localhost:5173", "http://localhost:3000"}
	log.Info().Strs("allowed_origins", defaultOrigins).Msg("Using default CORS allowed origins")
	return defaultOrigins
}

// GetAPIRoutes returns documentation about all API routes.
// This provides a self-documenting API endpoint that describes all available endpoints,
// their parameters, expected responses, and required authentication.
//
// Parameters:
//   - w: The HTTP response writer
//   - r: The HTTP request
//
// The function builds a map of all API routes organized by category, including
// authentication, settings, transfer, and audit endpoints. For each endpoint it
// provides details about HTTP method, description, required headers, request
// body format, and response format.
func (s *Server) GetAPIRoutes(w http.ResponseWriter, r *http.Request) {
	routes := map[string]interface{}{}

	// Authentication routes
	routes["authentication"] = map[string]interface{}{
		"POST /api/auth/login": map[string]interface{}{
			"description": "Authenticate an administrator and get an access token",
			"headers": map[string]string{
				"Content-Type": "application/json",
			},
			"body": map[string]interface{}{
				"email":    "string - Administrator email address",
				"password": "string - Administrator password",
			},
			"response": map[string]interface{}{
				"success": true,
				"data": map[string]interface{}{
					"user": map[string]interface{}{
						"user_id":    1,
						"email":      "admin@example.com",
						"name":       "Administrator",
						"created_at": "2023-01-01T12:00:00Z",
					},
					"access_token": "string - JWT access token",
					"token_type":   "Bearer",
					"expires_in":   900,
				},
			},
			"cookies": map[string]interface{}{
				"auth_token": "HTTP-only cookie containing the access token",
			},
		},
		"POST /api/auth/logout": map[string]interface{}{
			"description": "Logout by clearing the auth cookie",
			"response": map[string]interface{}{
				"success": true,
				"data": map[string]interface{}{
					"message": "Successfully logged out",
				},
			},
			"cookies_cleared": []string{"auth_token"},
		},
		"GET /api/auth/me": map[string]interface{}{
			"description": "Get the currently authenticated administrator",
			"headers": map[string]string{
				"Authorization": "Bearer {access_token}",
			},
			"response": map[string]interface{}{
				"success": true,
				"data": map[string]interface{}{
					"user_id":    1,
					"email":      "admin@example.com",
					"name":       "Administrator",
					"created_at": "2023-01-01T12:00:00Z",
				},
			},
		},
	}

	// Settings routes
	routes["settings"] = map[string]interface{}{
		"GET /api/settings/categories": map[string]interface{}{
			"description": "List all settings categories with display metadata",
			"response": map[string]interface{}{
				"success": true,
				"data": []map[string]interface{}{
					{
						"id":    "general",
						"label": "General",
						"icon":  "settings",
						"color": "blue",
					},
				},
			},
		},
		"GET /api/settings": map[string]interface{}{
			"description": "Get merged settings for every category, sensitive values masked",
			"headers": map[string]string{
				"Authorization": "Bearer {access_token}",
			},
			"response": map[string]interface{}{
				"success": true,
				"data": []map[string]interface{}{
					{
						"category": "general",
						"label":    "General",
						"values": map[string]interface{}{
							"site_name": "My Platform",
							"timezone":  "UTC",
						},
					},
				},
			},
		},
		"GET /api/settings/{category}": map[string]interface{}{
			"description": "Get merged settings for a single category",
			"path_params": map[string]string{
				"category": "Category identifier (general, email, security, billing, notifications, integrations)",
			},
			"response": map[string]interface{}{
				"success": true,
				"data": map[string]interface{}{
					"category": "email",
					"label":    "Email",
					"values": map[string]interface{}{
						"smtp_host":     "smtp.example.com",
						"smtp_password": "••••••••",
					},
				},
			},
		},
		"PUT /api/settings/{category}": map[string]interface{}{
			"description": "Update settings in a category",
			"headers": map[string]string{
				"Authorization": "Bearer {access_token}",
				"Content-Type":  "application/json",
			},
			"body": map[string]interface{}{
				"values": "object - Setting keys mapped to their new values",
				"reason": "string (optional) - Reason recorded in the audit trail",
			},
			"response": map[string]interface{}{
				"success": true,
				"data": map[string]interface{}{
					"category": "general",
					"values":   map[string]interface{}{"site_name": "Renamed"},
				},
			},
		},
		"POST /api/settings/{category}/reset": map[string]interface{}{
			"description": "Reset a category back to its defaults",
			"headers": map[string]string{
				"Authorization": "Bearer {access_token}",
			},
			"body": map[string]interface{}{
				"reason": "string (optional) - Reason recorded in the audit trail",
			},
			"response": map[string]interface{}{
				"success": true,
				"data": map[string]interface{}{
					"category": "general",
					"values":   map[string]interface{}{"site_name": "My Platform"},
				},
			},
		},
	}

	// Transfer routes
	routes["transfer"] = map[string]interface{}{
		"GET /api/settings/export": map[string]interface{}{
			"description": "Download settings as a file",
			"headers": map[string]string{
				"Authorization": "Bearer {access_token}",
			},
			"query_params": map[string]string{
				"format":            "Export format: json, yaml or env (default json)",
				"categories":        "Comma-separated category list, or 'all'",
				"include_sensitive": "true to export sensitive values in clear text",
			},
			"response": "File download with Content-Disposition attachment",
		},
		"POST /api/settings/import": map[string]interface{}{
			"description": "Import settings from a JSON export",
			"headers": map[string]string{
				"Authorization": "Bearer {access_token}",
				"Content-Type":  "application/json",
			},
			"query_params": map[string]string{
				"validate_only": "true to validate without applying changes",
				"categories":    "Comma-separated category list, or 'all'",
			},
			"response": map[string]interface{}{
				"success": true,
				"data": map[string]interface{}{
					"imported": []string{"general", "email"},
					"errors":   map[string]string{},
				},
			},
		},
	}

	// Audit routes
	routes["audit"] = map[string]interface{}{
		"GET /api/settings/audit": map[string]interface{}{
			"description": "List audit trail entries, newest first",
			"headers": map[string]string{
				"Authorization": "Bearer {access_token}",
			},
			"query_params": map[string]string{
				"category":  "Filter by category identifier",
				"page":      "Page number (default 1)",
				"page_size": "Entries per page (default 20)",
			},
			"response": map[string]interface{}{
				"success": true,
				"data": []map[string]interface{}{
					{
						"id":        "7f6c0e7a-3f8f-4a39-9f5a-1c2b3d4e5f60",
						"category":  "general",
						"action":    "update",
						"actor":     "admin@example.com",
						"timestamp": "2023-01-01T12:00:00Z",
					},
				},
				"meta": map[string]interface{}{
					"page":        1,
					"page_size":   20,
					"total_items": 1,
					"total_pages": 1,
				},
			},
		},
		"POST /api/settings/audit/{entryID}/restore": map[string]interface{}{
			"description": "Restore the settings captured by an audit entry",
			"headers": map[string]string{
				"Authorization": "Bearer {access_token}",
			},
			"path_params": map[string]string{
				"entryID": "ID of the audit entry to restore",
			},
			"response": map[string]interface{}{
				"success": true,
				"data": map[string]interface{}{
					"category": "general",
					"values":   map[string]interface{}{"site_name": "My Platform"},
				},
			},
		},
	}

	// System routes
	routes["system"] = map[string]interface{}{
		"GET /health": map[string]interface{}{
			"description": "Health check endpoint",
			"response": map[string]interface{}{
				"success": true,
				"data": map[string]interface{}{
					"status":  "healthy",
					"version": "1.0.0",
				},
			},
		},
		"GET /version": map[string]interface{}{
			"description": "Get application version",
			"response": map[string]interface{}{
				"success": true,
				"data": map[string]interface{}{
					"version":     "1.0.0",
					"environment": "production",
				},
			},
		},
		"GET /api/routes": map[string]interface{}{
			"description": "Get comprehensive API route documentation",
			"response": map[string]interface{}{
				"success": true,
				"data":    "This document you're viewing right now",
			},
		},
	}

	utils.JSON(w, http.StatusOK, routes)
}
