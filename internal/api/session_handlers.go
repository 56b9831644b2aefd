package api

import (
	"fmt"
	"net/http"

	"parknest/internal/entities"
)

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessionStore(r)
	if err != nil {
		respondError(w, err)
		return
	}
	resp := entities.SessionResponse{IsAuthenticated: sessions.IsAuthenticated()}
	if current, ok := sessions.Current(); ok {
		resp.Session = &current
	}
	if resp.UserName, err = sessions.UserName(r.Context()); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var form entities.LoginForm
	if err := decodeJSON(r, &form); err != nil {
		respondError(w, err)
		return
	}
	sessions, err := h.sessionStore(r)
	if err != nil {
		respondError(w, err)
		return
	}
	if err := sessions.LoginWithForm(r.Context(), form); err != nil {
		respondError(w, err)
		return
	}

	current, _ := sessions.Current()
	respondJSON(w, http.StatusOK, entities.SessionResponse{
		IsAuthenticated: true,
		Session:         &current,
		Message:         fmt.Sprintf("Welcome back! Redirecting to your %s dashboard...", current.UserType),
		Redirect:        DashboardPath,
	})
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var form entities.SignupForm
	if err := decodeJSON(r, &form); err != nil {
		respondError(w, err)
		return
	}
	sessions, err := h.sessionStore(r)
	if err != nil {
		respondError(w, err)
		return
	}
	if err := sessions.Signup(r.Context(), form); err != nil {
		respondError(w, err)
		return
	}

	current, _ := sessions.Current()
	name, _ := sessions.UserName(r.Context())
	respondJSON(w, http.StatusCreated, entities.SessionResponse{
		IsAuthenticated: true,
		Session:         &current,
		UserName:        name,
		Message:         fmt.Sprintf("Welcome to ParkNest! Setting up your %s account...", current.UserType),
		Redirect:        DashboardPath,
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessionStore(r)
	if err != nil {
		respondError(w, err)
		return
	}
	redirect, err := sessions.Logout(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entities.SessionResponse{IsAuthenticated: false, Redirect: redirect})
}
