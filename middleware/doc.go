// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (duration_ms).

# CORS Middleware

Enable cross-origin requests for frontend access:

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Allows methods GET, POST, PUT, DELETE, OPTIONS with headers
Content-Type, Authorization.

# Rate Limiting

Apply a per-IP request budget to the whole mux:

	rl := middleware.NewIPRateLimiter(cfg.RatePerMin)
	server := http.Server{
		Handler: middleware.RateLimit(rl, middleware.CORS(mux)),
	}

Each client IP gets its own token bucket refilled at the configured
per-minute rate. Requests over budget receive 429 Too Many Requests.
Idle buckets are swept after ten minutes.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusNotFound, "Post not found")

Parse JSON request bodies:

	var req models.CreatePostRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

GetClientIP checks X-Forwarded-For, then X-Real-IP, then falls back to
RemoteAddr with the port stripped. The rate limiter keys its buckets on
this value.
*/
package middleware
