package main

import (
	"net/http"

	"github.com/ironcycle/ironcycle/internal/exercise"
)

type exerciseResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
	Builtin     bool   `json:"builtin"`
}

func newExerciseResponse(e exercise.Exercise) exerciseResponse {
	return exerciseResponse{
		ID:          e.ID,
		Name:        e.Name,
		Category:    e.Category,
		Description: e.Description,
		Builtin:     e.Builtin,
	}
}

func (app *application) exerciseListGET(w http.ResponseWriter, r *http.Request) {
	exercises, err := app.exerciseService.List(r.Context())
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	responses := make([]exerciseResponse, 0, len(exercises))
	for _, e := range exercises {
		responses = append(responses, newExerciseResponse(e))
	}
	app.writeJSON(w, r, http.StatusOK, responses)
}

func (app *application) exerciseGET(w http.ResponseWriter, r *http.Request) {
	e, err := app.exerciseService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, newExerciseResponse(e))
}

func (app *application) exerciseCreatePOST(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Category    string `json:"category"`
		Description string `json:"description"`
	}
	if !app.readJSON(w, r, &req) {
		return
	}

	e, err := app.exerciseService.Create(r.Context(), exercise.CreateRequest{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
	})
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusCreated, newExerciseResponse(e))
}
