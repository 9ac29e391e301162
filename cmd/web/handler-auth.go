package main

import (
	"net/http"

	"github.com/ironcycle/ironcycle/internal/auth"
	"github.com/ironcycle/ironcycle/internal/contexthelpers"
)

type userResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	CreatedAt string `json:"created_at"`
}

func newUserResponse(u auth.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt.UTC().Format(timestampFormat),
	}
}

func (app *application) registerPOST(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if !app.readJSON(w, r, &req) {
		return
	}

	user, err := app.authService.Register(r.Context(), auth.RegisterRequest{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	// Renew the token before elevating the session to a logged-in one.
	if err = app.sessionManager.RenewToken(r.Context()); err != nil {
		app.serverError(w, r, err)
		return
	}
	app.sessionManager.Put(r.Context(), sessionKeyUserID, user.ID)

	app.writeJSON(w, r, http.StatusCreated, newUserResponse(user))
}

func (app *application) loginPOST(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !app.readJSON(w, r, &req) {
		return
	}

	user, err := app.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	if err = app.sessionManager.RenewToken(r.Context()); err != nil {
		app.serverError(w, r, err)
		return
	}
	app.sessionManager.Put(r.Context(), sessionKeyUserID, user.ID)

	app.writeJSON(w, r, http.StatusOK, newUserResponse(user))
}

func (app *application) logoutPOST(w http.ResponseWriter, r *http.Request) {
	if err := app.sessionManager.Destroy(r.Context()); err != nil {
		app.serverError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) meGET(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	user, err := app.authService.User(r.Context(), userID)
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, newUserResponse(user))
}
