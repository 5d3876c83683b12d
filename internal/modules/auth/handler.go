package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"astrocat/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register creates a new user account.
// POST /auth/register
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrUserAlreadyExists) {
			response.Error(c, http.StatusBadRequest, "USER_EXISTS", err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, "REGISTER_FAILED", "failed to register user")
		return
	}

	response.Success(c, http.StatusCreated, UserPublic{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Name:     user.Name,
	})
}

// Login verifies credentials and issues a bearer token.
// POST /auth/login
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, "LOGIN_FAILED", "failed to log in")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token": res.Token,
		"user": UserPublic{
			ID:       res.User.ID,
			Username: res.User.Username,
			Email:    res.User.Email,
			Name:     res.User.Name,
		},
	})
}
