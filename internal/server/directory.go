package server

import (
	"errors"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/Bhanuteja12-coder/Vidhi-Saarathi-AI/internal/lawyers"
	"github.com/Bhanuteja12-coder/Vidhi-Saarathi-AI/pkg/logger"
	"github.com/Bhanuteja12-coder/Vidhi-Saarathi-AI/pkg/util"
)

const noLawyersMessage = "No lawyers available yet"

func (s *Server) handleLawyers(c *gin.Context) {
	all, ok, err := s.deps.Lawyers.All()
	if err != nil {
		fail(c, http.StatusInternalServerError, "Failed to fetch lawyers", err)
		return
	}
	if !ok {
		c.JSON(http.StatusOK, gin.H{"success": true, "lawyers": []lawyers.Lawyer{}, "message": noLawyersMessage})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "lawyers": all, "count": len(all)})
}

func (s *Server) handleLawyersBySpecialization(c *gin.Context) {
	area := c.Param("specialization")
	matches, ok, err := s.deps.Lawyers.BySpecialization(area)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Failed to fetch lawyers", err)
		return
	}
	if !ok {
		c.JSON(http.StatusOK, gin.H{"success": true, "lawyers": []lawyers.Lawyer{}, "message": noLawyersMessage})
		return
	}
	if matches == nil {
		matches = []lawyers.Lawyer{}
	}
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"lawyers":        matches,
		"count":          len(matches),
		"specialization": area,
	})
}

func (s *Server) handleLawyer(c *gin.Context) {
	l, err := s.deps.Lawyers.ByID(c.Param("id"))
	if errors.Is(err, lawyers.ErrNotFound) {
		fail(c, http.StatusNotFound, "Lawyer not found", nil)
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, "Failed to fetch lawyer", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "lawyer": l})
}

func (s *Server) handleDebugIP(c *gin.Context) {
	ctx := c.Request.Context()
	ip, err := util.GetPublicIP(ctx, s.deps.HTTPClient)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"error":     "Could not fetch server IP",
			"message":   err.Error(),
			"timestamp": isoTime(s.now()),
		})
		return
	}

	resp := gin.H{
		"serverIP":     ip,
		"message":      "Current server public IP address",
		"instructions": "Add this IP to Google Cloud Console > API Keys > Your Key > IP restrictions if needed",
		"timestamp":    isoTime(s.now()),
	}
	if info, err := util.GetIPInfo(ctx, s.deps.HTTPClient, ip); err != nil {
		logger.Debug("IP location lookup failed: %v", err)
	} else {
		resp["location"] = gin.H{
			"country": info.Country,
			"region":  info.RegionName,
			"city":    info.City,
			"isp":     info.ISP,
		}
	}
	c.JSON(http.StatusOK, resp)
}

// page serves one of the frontend HTML files
func (s *Server) page(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.File(filepath.Join(s.config.FrontendDir, name))
	}
}

// handleNotFound serves static frontend assets for GET requests and
// answers everything else with the route list.
func (s *Server) handleNotFound(c *gin.Context) {
	if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
		rel := path.Clean("/" + c.Request.URL.Path)
		full := filepath.Join(s.config.FrontendDir, filepath.FromSlash(rel))
		if info, err := os.Stat(full); err == nil && info.Mode().IsRegular() {
			c.File(full)
			return
		}
	}

	logger.Warnf("404 - Route not found: %s %s", c.Request.Method, c.Request.URL.RequestURI())
	c.JSON(http.StatusNotFound, gin.H{
		"error":           "API route not found",
		"method":          c.Request.Method,
		"url":             c.Request.URL.RequestURI(),
		"availableRoutes": routeHelp,
	})
}
