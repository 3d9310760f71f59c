package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/mbolis/waterlily/app"
	"github.com/mbolis/waterlily/model"
)

func Greeting(w http.ResponseWriter, r *http.Request) {
	render.PlainText(w, r, "Hello Waterlily")
}

func Health(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()
		render.JSON(w, r, render.M{
			"status":    "ok",
			"uptime":    now.Sub(app.Started).Seconds(),
			"timestamp": now.UTC().Format(model.TimeLayout),
		})
	}
}
