package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/Bhanuteja12-coder/Vidhi-Saarathi-AI/internal/dispatch"
	"github.com/Bhanuteja12-coder/Vidhi-Saarathi-AI/internal/legal"
	"github.com/Bhanuteja12-coder/Vidhi-Saarathi-AI/pkg/config"
	"github.com/Bhanuteja12-coder/Vidhi-Saarathi-AI/pkg/logger"
)

type analyzeRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleAnalyze(c *gin.Context) {
	start := s.now()

	var req analyzeRequest
	// a malformed body is reported the same way as a missing query
	_ = c.ShouldBindJSON(&req)

	if err := legal.ValidateQuery(req.Query, s.config.MaxQueryLength); err != nil {
		fail(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	logger.Infof("New legal analysis request: %q (%d chars)", legal.Preview(req.Query, 100), utf8.RuneCountInString(req.Query))

	result, err := s.deps.Analyzer.Dispatch(c.Request.Context(), legal.AnalysisPrompt(req.Query))
	processing := s.now().Sub(start).Milliseconds()
	if err != nil {
		failure := legal.Classify(err)
		logger.Errorf("Legal analysis failed: %v", err)

		details := gin.H{
			"processingTime": processing,
			"totalModels":    len(s.deps.Analyzer.Models()),
			"totalKeys":      len(s.deps.Analyzer.Credentials()),
			"timestamp":      isoTime(s.now()),
			"errorType":      failure.ErrorType,
		}
		var exhausted *dispatch.ExhaustedError
		if errors.As(err, &exhausted) {
			details["attempts"] = exhausted.Attempts
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"success":          false,
			"error":            failure.UserMessage,
			"technicalDetails": details,
		})
		return
	}

	logger.Infof("Legal analysis completed: model=%s key=%s attempts=%d time=%dms",
		result.Model, result.Credential, result.TotalAttempts, processing)

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"analysis": result.Text,
		"metadata": gin.H{
			"model":          result.Model,
			"keyUsed":        result.Credential,
			"totalAttempts":  result.TotalAttempts,
			"retryCount":     result.RetryCount,
			"processingTime": processing,
			"aiRequestTime":  result.RequestTime.Milliseconds(),
			"timestamp":      isoTime(result.Timestamp),
			"queryLength":    utf8.RuneCountInString(req.Query),
		},
		"systemInfo": gin.H{
			"totalModels":        len(s.deps.Analyzer.Models()),
			"totalKeys":          len(s.deps.Analyzer.Credentials()),
			"enhancedTimeouts":   true,
			"intelligentRetry":   true,
			"multiModelFallback": true,
		},
	})
}

type keyUsage struct {
	Name         string `json:"name"`
	UsageCount   int64  `json:"usageCount"`
	SuccessCount int64  `json:"successCount"`
	ErrorCount   int64  `json:"errorCount"`
	SuccessRate  string `json:"successRate"`
	LastUsed     string `json:"lastUsed"`
	LastSuccess  string `json:"lastSuccess"`
}

func (s *Server) handleHealth(c *gin.Context) {
	models := s.deps.Analyzer.Models()
	creds := s.deps.Analyzer.Credentials()

	keyStats := lo.Map(creds, func(st dispatch.CredentialStats, _ int) keyUsage {
		return keyUsage{
			Name:         st.Name,
			UsageCount:   st.UsageCount,
			SuccessCount: st.SuccessCount,
			ErrorCount:   st.ErrorCount,
			SuccessRate:  st.FormatSuccessRate(),
			LastUsed:     timeOrNever(st.LastUsed, ""),
			LastSuccess:  timeOrNever(st.LastSuccess, ""),
		}
	})

	modelInfo := lo.Map(models, func(m dispatch.ModelInfo, _ int) gin.H {
		return gin.H{
			"name":        m.Name,
			"priority":    m.Priority,
			"timeout":     strconv.FormatFloat(m.TimeoutSeconds(), 'f', -1, 64) + "s",
			"description": m.Description,
		}
	})

	c.JSON(http.StatusOK, gin.H{
		"status":  config.AppName + " is healthy",
		"version": config.AppVersion,
		"features": gin.H{
			"enhancedTimeouts": true,
			"intelligentRetry": true,
			"multiModelAI":     fmt.Sprintf("%d models configured", len(models)),
			"multiKeyRotation": fmt.Sprintf("%d keys configured", len(creds)),
			"optimizedPrompts": true,
		},
		"keyUsageStats": keyStats,
		"modelInfo":     modelInfo,
		"uptime":        s.now().Sub(s.started).Seconds(),
		"timestamp":     isoTime(s.now()),
	})
}

type quotaEntry struct {
	KeyName      string            `json:"keyName"`
	Status       string            `json:"status"`
	HTTPStatus   int               `json:"httpStatus"`
	UsageStats   gin.H             `json:"usageStats"`
	LastActivity map[string]string `json:"lastActivity,omitempty"`
	Error        string            `json:"error,omitempty"`
}

const quotaTimeLayout = "1/2/2006, 3:04:05 PM"

func (s *Server) handleQuota(c *gin.Context) {
	statuses := s.deps.Analyzer.CheckQuota(c.Request.Context())

	entries := lo.Map(statuses, func(q dispatch.QuotaStatus, _ int) quotaEntry {
		e := quotaEntry{
			KeyName:    q.Stats.Name,
			HTTPStatus: q.HTTPStatus,
			UsageStats: gin.H{
				"total":       q.Stats.UsageCount,
				"successful":  q.Stats.SuccessCount,
				"errors":      q.Stats.ErrorCount,
				"successRate": q.Stats.FormatSuccessRate(),
			},
		}
		switch {
		case q.Err != nil:
			e.Status = "❌ Error: " + q.Err.Error()
			e.Error = q.Err.Error()
		case q.Active:
			e.Status = "✅ Active"
		default:
			e.Status = "❌ Error: " + strconv.Itoa(q.HTTPStatus)
		}
		if q.Err == nil {
			e.LastActivity = map[string]string{
				"lastUsed":    timeOrNever(q.Stats.LastUsed, quotaTimeLayout),
				"lastSuccess": timeOrNever(q.Stats.LastSuccess, quotaTimeLayout),
			}
		}
		return e
	})

	total := lo.SumBy(statuses, func(q dispatch.QuotaStatus) int64 { return q.Stats.UsageCount })
	successes := lo.SumBy(statuses, func(q dispatch.QuotaStatus) int64 { return q.Stats.SuccessCount })

	c.JSON(http.StatusOK, gin.H{
		"quotaStatus": entries,
		"summary": gin.H{
			"totalKeys":          len(statuses),
			"activeKeys":         lo.CountBy(statuses, func(q dispatch.QuotaStatus) bool { return q.Active }),
			"totalRequests":      total,
			"totalSuccesses":     successes,
			"overallSuccessRate": dispatch.FormatRate(successes, total),
		},
		"timestamp": isoTime(s.now()),
	})
}
