package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/supportdesk/internal/common"
	"github.com/dmitrijs2005/supportdesk/internal/server/models"
	"github.com/gin-gonic/gin"
)

type credentialsRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type tokenResponse struct {
	Access  string        `json:"access"`
	Refresh string        `json:"refresh"`
	User    *userResponse `json:"user,omitempty"`
}

func toUserResponse(u *models.User) *userResponse {
	return &userResponse{ID: u.ID, Email: u.Email, Name: u.Name}
}

func (s *Server) handleLogin(c *gin.Context) {
	var body credentialsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	sess, err := s.users.Login(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.logger.Info(c.Request.Context(), "Logged in", "user_id", sess.User.ID)
	c.JSON(http.StatusOK, tokenResponse{Access: sess.AccessToken, Refresh: sess.RefreshToken, User: toUserResponse(sess.User)})
}

func (s *Server) handleRegister(c *gin.Context) {
	var body credentialsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	sess, err := s.users.Register(c.Request.Context(), body.Name, body.Email, body.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.logger.Info(c.Request.Context(), "Registered", "user_id", sess.User.ID)
	c.JSON(http.StatusCreated, tokenResponse{Access: sess.AccessToken, Refresh: sess.RefreshToken, User: toUserResponse(sess.User)})
}

func (s *Server) handleRefresh(c *gin.Context) {
	var body refreshRequest
	if err := c.ShouldBindJSON(&body); err != nil || body.Refresh == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "refresh token required"})
		return
	}

	pair, err := s.users.RefreshToken(c.Request.Context(), body.Refresh)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenResponse{Access: pair.AccessToken, Refresh: pair.RefreshToken})
}

func (s *Server) handleLogout(c *gin.Context) {
	var body refreshRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	if body.Refresh != "" {
		if err := s.users.Logout(c.Request.Context(), body.Refresh); err != nil {
			s.writeError(c, err)
			return
		}
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) handleMe(c *gin.Context) {
	u, err := s.users.Profile(c.Request.Context(), c.GetString(userIDKey))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(u))
}

func (s *Server) handlePing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleEcho answers with the caller's method, user id and JSON body.
func (s *Server) handleEcho(c *gin.Context) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	var body json.RawMessage
	if len(data) > 0 {
		if !json.Valid(data) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "body must be JSON"})
			return
		}
		body = data
	}

	c.JSON(http.StatusOK, gin.H{
		"method":  c.Request.Method,
		"user_id": c.GetString(userIDKey),
		"query":   c.Request.URL.RawQuery,
		"body":    body,
	})
}

// writeError maps service errors onto status codes with a JSON error body.
func (s *Server) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrorAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
	case errors.Is(err, common.ErrRefreshTokenExpired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "refresh token expired"})
	case errors.Is(err, common.ErrorUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	default:
		s.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
