package server

import (
	"net/url"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Bhanuteja12-coder/Vidhi-Saarathi-AI/pkg/logger"
)

// corsMiddleware accepts origins listed in allowed. Entries may be a full
// origin ("https://app.example.com"), "*.example.com" for any https
// subdomain, or "*" for everything.
func corsMiddleware(allowed []string) gin.HandlerFunc {
	config := cors.DefaultConfig()
	config.AllowCredentials = true
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"}
	config.AllowHeaders = []string{"Content-Type", "Authorization", "X-Requested-With", "Accept", "Origin"}
	config.ExposeHeaders = []string{"Content-Range", "X-Content-Range"}
	config.MaxAge = 10 * time.Minute
	config.AllowOriginFunc = func(origin string) bool {
		for _, item := range allowed {
			if isOriginAllowed(origin, item) {
				return true
			}
		}
		logger.Warnf("CORS blocked origin: %s", origin)
		return false
	}
	return cors.New(config)
}

func isOriginAllowed(origin, allowed string) bool {
	allowed = strings.ToLower(strings.TrimRight(strings.TrimSpace(allowed), "/"))
	origin = strings.ToLower(strings.TrimSpace(origin))
	if allowed == "" || origin == "" {
		return false
	}
	if allowed == "*" {
		return true
	}

	if suffix, ok := strings.CutPrefix(allowed, "*."); ok {
		u, err := url.Parse(origin)
		if err != nil || u.Scheme != "https" {
			return false
		}
		return strings.HasSuffix(u.Hostname(), "."+suffix)
	}

	return origin == allowed
}
