package handlers

import (
	"errors"
	"net/http"

	"github.com/hongminglow/users-api/internal/auth"
	"github.com/hongminglow/users-api/internal/http/respond"
	"github.com/hongminglow/users-api/internal/logger"
	"github.com/hongminglow/users-api/internal/models/dto"
	"github.com/hongminglow/users-api/internal/users"
)

// AuthHandler owns the login endpoint of the users resource.
type AuthHandler struct {
	service UserService
	tokens  *auth.TokenManager
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(service UserService, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{service: service, tokens: tokens}
}

// Register attaches auth routes to the mux.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST "+BasePath+"/login", h.handleLogin)
}

// handleLogin godoc
// @Summary Get users data
// @Description Find a user by username and check the password; returns a signed token
// @Tags Users
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} respond.Envelope{data=dto.LoginResponse} "Successfully found user data"
// @Failure 400 {object} respond.Envelope
// @Failure 401 {object} respond.Envelope
// @Router /api/users/login [post]
func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	user, err := h.service.Login(r.Context(), users.LoginInput{Username: req.Username, Password: req.Password})
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			logger.Info(r.Context()).Str("username", req.Username).Msg("login rejected")
		}
		writeServiceError(w, r, err, "fetch user")
		return
	}
	token, err := h.tokens.Generate(user)
	if err != nil {
		logger.Error(r.Context()).Err(err).Int64("user_id", user.ID).Msg("sign login token")
		respond.Error(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	respond.JSON(w, http.StatusOK, descFound, dto.LoginResponse{Token: token, User: user})
}
