package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/mbolis/waterlily/app"
	"github.com/mbolis/waterlily/httpx"
	"github.com/mbolis/waterlily/model"
	"github.com/mbolis/waterlily/routes/middlewares"
	"github.com/mbolis/waterlily/validation"
)

func SubmitResponse(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req model.SubmitResponseRequest
		err := validation.Bind(r.Body, &req)
		if err != nil {
			httpx.Error(w, r, "submit_response.bind", err)
			return
		}

		item, err := app.Surveys.SubmitResponse(r.Context(), req, middlewares.UserID(r.Context()))
		if err != nil {
			httpx.Error(w, r, "submit_response", err)
			return
		}
		app.Metrics.RecordResponseSubmitted()

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, render.M{"message": "submitted", "data": item})
	}
}

func ListResponses(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := app.Surveys.ListResponses(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httpx.Error(w, r, "list_responses", err)
			return
		}

		render.JSON(w, r, render.M{"count": len(items), "data": items})
	}
}
