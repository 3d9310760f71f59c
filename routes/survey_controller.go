package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/mbolis/waterlily/app"
	"github.com/mbolis/waterlily/httpx"
	"github.com/mbolis/waterlily/model"
	"github.com/mbolis/waterlily/validation"
)

func CreateSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req model.CreateSurveyRequest
		err := validation.Bind(r.Body, &req)
		if err != nil {
			httpx.Error(w, r, "create_survey.bind", err)
			return
		}

		survey, err := app.Surveys.Create(r.Context(), req)
		if err != nil {
			httpx.Error(w, r, "create_survey", err)
			return
		}
		app.Metrics.RecordSurveyCreated()

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, render.M{"message": "created", "data": survey})
	}
}

func ListSurveys(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveys, err := app.Surveys.List(r.Context())
		if err != nil {
			httpx.Error(w, r, "list_surveys", err)
			return
		}

		render.JSON(w, r, render.M{"count": len(surveys), "data": surveys})
	}
}

func GetSurveyById(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		survey, found, err := app.Surveys.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httpx.Error(w, r, "get_survey", err)
			return
		}
		if !found {
			httpx.Error(w, r, "get_survey", model.ErrNotFound())
			return
		}

		render.JSON(w, r, render.M{"data": survey})
	}
}
