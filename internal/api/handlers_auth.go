package api

import (
	"encoding/json"
	"net/http"

	"github.com/tendjournal/tend/internal/api/respond"
	"github.com/tendjournal/tend/internal/api/validate"
	"github.com/tendjournal/tend/internal/auth"
	"github.com/tendjournal/tend/internal/model"
	"github.com/tendjournal/tend/internal/services"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

func handleSignup(svc *services.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.WriteBadRequest(w, "invalid JSON body")
			return
		}
		if err := validate.Email(req.Email); err != nil {
			respond.WriteBadRequest(w, err.Error())
			return
		}
		if err := validate.Password(req.Password); err != nil {
			respond.WriteBadRequest(w, err.Error())
			return
		}

		token, user, err := svc.Signup(r.Context(), req.Email, req.Password)
		if err != nil {
			if err == model.ErrConflict {
				respond.WriteError(w, http.StatusConflict, "email already registered")
				return
			}
			respond.FromError(w, err)
			return
		}
		respond.WriteJSON(w, http.StatusCreated, tokenResponse{Token: token, UserID: user.UserID})
	}
}

func handleLogin(svc *services.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.WriteBadRequest(w, "invalid JSON body")
			return
		}
		if req.Email == "" || req.Password == "" {
			respond.WriteBadRequest(w, "email and password are required")
			return
		}

		token, user, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			if err == model.ErrUnauthorized {
				respond.WriteError(w, http.StatusUnauthorized, "invalid credentials")
				return
			}
			respond.FromError(w, err)
			return
		}
		respond.WriteJSON(w, http.StatusOK, tokenResponse{Token: token, UserID: user.UserID})
	}
}

func handleProfile(svc *services.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := auth.UserID(r.Context())
		user, areas, err := svc.Profile(r.Context(), userID)
		if err != nil {
			respond.FromError(w, err)
			return
		}
		respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"userId":      user.UserID,
			"email":       user.Email,
			"createdAt":   user.CreationTime,
			"growthAreas": areas,
		})
	}
}
