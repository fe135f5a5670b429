package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/dchest/captcha"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Bhanuteja12-coder/Vidhi-Saarathi-AI/internal/auth"
	"github.com/Bhanuteja12-coder/Vidhi-Saarathi-AI/internal/store"
	"github.com/Bhanuteja12-coder/Vidhi-Saarathi-AI/pkg/logger"
)

type credentialsRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	Name            string `json:"name"`
	CaptchaID       string `json:"captchaId"`
	CaptchaSolution string `json:"captchaSolution"`
}

type userView struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

func (s *Server) bindCredentials(c *gin.Context) (credentialsRequest, bool) {
	var req credentialsRequest
	_ = c.ShouldBindJSON(&req)
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		fail(c, http.StatusBadRequest, "Email and password required", nil)
		return req, false
	}
	return req, true
}

func (s *Server) respondWithToken(c *gin.Context, u *store.User) {
	token, err := s.deps.Tokens.Issue(u.ID, u.Email)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Could not issue token", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    userView{ID: u.ID, Email: u.Email, Name: u.Name},
		"token":   token,
	})
}

func (s *Server) handleSignup(c *gin.Context) {
	req, ok := s.bindCredentials(c)
	if !ok {
		return
	}

	if s.config.SignupCaptcha && !captcha.VerifyString(req.CaptchaID, req.CaptchaSolution) {
		fail(c, http.StatusBadRequest, "Invalid captcha", nil)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Signup failed", err)
		return
	}

	user := &store.User{Email: req.Email, Name: req.Name, PasswordHash: hash}
	if err := s.deps.Users.CreateUser(c.Request.Context(), user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			fail(c, http.StatusConflict, "Email already exists", nil)
			return
		}
		fail(c, http.StatusInternalServerError, "Signup failed", err)
		return
	}

	logger.Infof("New account created: %s", user.ID)
	s.respondWithToken(c, user)
}

func (s *Server) handleLogin(c *gin.Context) {
	req, ok := s.bindCredentials(c)
	if !ok {
		return
	}

	user, err := s.deps.Users.FindUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			fail(c, http.StatusUnauthorized, "Invalid credentials", nil)
			return
		}
		fail(c, http.StatusInternalServerError, "Login failed", err)
		return
	}

	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		fail(c, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}

	s.respondWithToken(c, user)
}

func (s *Server) handleNewCaptcha(c *gin.Context) {
	id := captcha.New()
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"captchaId": id,
		"imageUrl":  "/api/captcha/" + id + ".png",
	})
}

var captchaImages = http.StripPrefix("/api/captcha/", captcha.Server(captcha.StdWidth, captcha.StdHeight))

func (s *Server) handleCaptchaImage(c *gin.Context) {
	captchaImages.ServeHTTP(c.Writer, c.Request)
}

type saveQueryRequest struct {
	Query    string          `json:"query"`
	Metadata json.RawMessage `json:"metadata"`
}

func (s *Server) handleSaveQuery(c *gin.Context) {
	records, err := s.recordStore()
	if err != nil {
		fail(c, http.StatusInternalServerError, "Storage backend not configured", err)
		return
	}
	claims, _ := auth.ClaimsFrom(c)

	var req saveQueryRequest
	_ = c.ShouldBindJSON(&req)
	if strings.TrimSpace(req.Query) == "" {
		fail(c, http.StatusBadRequest, "Query text required", nil)
		return
	}

	metadata := "{}"
	if len(req.Metadata) > 0 && string(req.Metadata) != "null" {
		metadata = string(req.Metadata)
	}

	q := &store.Query{
		ID:        uuid.NewString(),
		UserID:    claims.UserID,
		QueryText: req.Query,
		Metadata:  metadata,
		CreatedAt: s.now(),
	}
	if err := records.SaveQuery(c.Request.Context(), q); err != nil {
		fail(c, http.StatusInternalServerError, "Could not save query", NewError(ErrStorage, "save query", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"query": gin.H{
			"id":         q.ID,
			"user_id":    q.UserID,
			"query_text": q.QueryText,
			"metadata":   json.RawMessage(q.Metadata),
			"created_at": isoTime(q.CreatedAt),
		},
	})
}

var (
	aadhaarPattern = regexp.MustCompile(`^\d{12}$`)
	otpPattern     = regexp.MustCompile(`^\d{6}$`)
)

type demoAuthRequest struct {
	Aadhaar string `json:"aadhaar"`
	OTP     string `json:"otp"`
	Action  string `json:"action"`
}

// handleDemoAuth is the Aadhaar/OTP walkthrough used by the landing page.
// It checks formats only.
func (s *Server) handleDemoAuth(c *gin.Context) {
	var req demoAuthRequest
	_ = c.ShouldBindJSON(&req)

	switch req.Action {
	case "verify_aadhaar":
		if !aadhaarPattern.MatchString(req.Aadhaar) {
			fail(c, http.StatusBadRequest, "Please enter a valid 12-digit Aadhaar number", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "OTP sent to your registered mobile number",
			"step":    "otp_verification",
		})
	case "verify_otp":
		if !otpPattern.MatchString(req.OTP) {
			fail(c, http.StatusBadRequest, "Invalid OTP. Please enter the 6-digit OTP.", nil)
			return
		}
		ms := s.now().UnixMilli()
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Authentication successful! Welcome to Vidhi Saarathi AI",
			"token":   fmt.Sprintf("auth_%d", ms),
			"user": gin.H{
				"id":       fmt.Sprintf("user_%d", ms),
				"verified": true,
			},
		})
	default:
		fail(c, http.StatusBadRequest, "Invalid action. Use 'verify_aadhaar' or 'verify_otp'", nil)
	}
}

func (s *Server) handleDashboard(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"user": gin.H{
				"name": "Legal Professional",
				"type": "verified_lawyer",
			},
			"analytics": gin.H{
				"totalConsultations": 127,
				"activeClients":      23,
				"successRate":        "98%",
			},
			"recentActivity": []gin.H{
				{"action": "New consultation", "time": "2 hours ago"},
				{"action": "Case update", "time": "4 hours ago"},
			},
		},
		"timestamp": isoTime(s.now()),
	})
}
