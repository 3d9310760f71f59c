package routes

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/mbolis/waterlily/app"
	"github.com/mbolis/waterlily/httpx"
	"github.com/mbolis/waterlily/model"
	"github.com/mbolis/waterlily/validation"
)

func Register(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var creds model.Credentials
		err := validation.Bind(r.Body, &creds)
		if err != nil {
			httpx.Error(w, r, "register.bind", err)
			return
		}

		user, err := app.Auth.Register(r.Context(), creds.Email, creds.Password)
		if err != nil {
			httpx.Error(w, r, "register", err)
			return
		}
		app.Metrics.RecordRegistration()

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, render.M{"user": user})
	}
}

func Login(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var creds model.Credentials
		err := validation.Bind(r.Body, &creds)
		if err != nil {
			httpx.Error(w, r, "login.bind", err)
			return
		}

		res, err := app.Auth.Login(r.Context(), creds.Email, creds.Password)
		if errors.Is(err, model.ErrInvalidCredentials()) {
			app.Metrics.RecordLogin("failure")
		}
		if err != nil {
			httpx.Error(w, r, "login", err)
			return
		}
		app.Metrics.RecordLogin("success")

		render.JSON(w, r, res)
	}
}
