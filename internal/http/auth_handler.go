package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"royal-villa/internal/response"
	"royal-villa/internal/service"
)

// AuthHandler expone registro y login.
type AuthHandler struct {
	logger             *zap.Logger
	auth               *service.AuthService
	invalidLoginStatus int
}

// NewAuthHandler crea el handler. Con loginFailureUnauthorized las
// credenciales invalidas responden 401 en lugar de 400.
func NewAuthHandler(logger *zap.Logger, auth *service.AuthService, loginFailureUnauthorized bool) *AuthHandler {
	status := http.StatusBadRequest
	if loginFailureUnauthorized {
		status = http.StatusUnauthorized
	}
	return &AuthHandler{
		logger:             logger,
		auth:               auth,
		invalidLoginStatus: status,
	}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register maneja POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if errors.Is(err, io.EOF) {
			respond(c, response.BadRequest("Registration data is required", nil))
			return
		}
		h.logger.Warn("invalid register request", zap.Error(err))
		respond(c, response.BadRequest("Invalid registration data", bindingErrors(err)))
		return
	}

	user, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateEmail):
			respond(c, response.Conflict(fmt.Sprintf("User with email %s already exists", req.Email)))
		case errors.Is(err, service.ErrInvalidRegistration):
			respond(c, response.BadRequest("Invalid registration data", []string{err.Error()}))
		default:
			h.logger.Error("register failed", zap.Error(err))
			respond(c, response.Error(http.StatusInternalServerError, "An error occurred during registration", err.Error()))
		}
		return
	}
	if user.ID == 0 {
		h.logger.Error("register returned no record", zap.String("email", req.Email))
		respond(c, response.BadRequest("Registration failed", nil))
		return
	}

	respond(c, response.CreatedAt("User registered successfully", user.DTO()))
}

// Login maneja POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if errors.Is(err, io.EOF) {
			respond(c, response.BadRequest("Login data is required", nil))
			return
		}
		h.logger.Warn("invalid login request", zap.Error(err))
		respond(c, response.BadRequest("Invalid login data", bindingErrors(err)))
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			respond(c, response.Error(h.invalidLoginStatus, "Login failed", []string{"Invalid email or password"}))
		case errors.Is(err, service.ErrTooManyAttempts):
			h.logger.Warn("login rate limited")
			respond(c, response.Error(http.StatusTooManyRequests, "Too many login attempts", []string{"Try again later"}))
		default:
			h.logger.Error("login failed", zap.Error(err))
			respond(c, response.Error(http.StatusInternalServerError, "An error occurred during login", err.Error()))
		}
		return
	}

	respond(c, response.Ok("Login successful", result))
}
