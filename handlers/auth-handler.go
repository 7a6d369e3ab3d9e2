package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/KBRRM/create-class/logging"
	"github.com/KBRRM/create-class/middleware"
	"github.com/KBRRM/create-class/services"
)

type AuthHandler struct {
	service *services.AuthService
}

func NewAuthHandler(service *services.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func writeAuthError(w http.ResponseWriter, err error) {
	var validationErr services.ValidationError
	var conflictErr services.ConflictError
	var authErr services.AuthorizationError
	var notFound services.NotFoundError
	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &conflictErr):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &authErr):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		logging.Logger.Errorf("Event ID: AUTH_INTERNAL_ERROR, Description: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request data")
		return
	}

	user, err := h.service.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		logging.Logger.Warnf("Event ID: USER_REGISTER_FAILED, Description: Registration for %s failed: %v", req.Email, err)
		writeAuthError(w, err)
		return
	}

	logging.Logger.Infof("Event ID: USER_REGISTERED, Description: User %s registered.", user.ID.Hex())
	writeJSON(w, http.StatusCreated, envelope{
		"status":  "success",
		"message": "Registration successful",
		"data":    user,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request data")
		return
	}

	token, user, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		logging.Logger.Warnf("Event ID: USER_LOGIN_FAILED, Description: Login for %s failed: %v", req.Email, err)
		writeAuthError(w, err)
		return
	}

	logging.Logger.Infof("Event ID: USER_LOGGED_IN, Description: User %s logged in.", user.ID.Hex())
	writeJSON(w, http.StatusOK, envelope{"token": token, "user": user})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Me(r.Context(), middleware.CallerID(r))
	if err != nil {
		writeAuthError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"status": "success", "data": user})
}
