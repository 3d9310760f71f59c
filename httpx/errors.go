package httpx

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/mbolis/waterlily/log"
	"github.com/mbolis/waterlily/model"
)

type errorBody struct {
	Error  string        `json:"error"`
	Issues []model.Issue `json:"issues,omitempty"`
}

// Error is the single place where failures become HTTP responses. A
// *model.Error anywhere in err's chain is answered with its own status, code
// and issues. Anything else is logged under code and answered with an opaque
// 500.
func Error(w http.ResponseWriter, r *http.Request, code string, err error) {
	var appErr *model.Error
	if errors.As(err, &appErr) {
		log.Debugf("%s: %s", code, appErr)
		render.Status(r, appErr.Status)
		render.JSON(w, r, errorBody{Error: appErr.Code, Issues: appErr.Issues})
		return
	}

	if errors.Is(err, context.Canceled) {
		log.Debugf("%s: client went away: %s", code, err)
		return
	}

	LogInternalError(w, r, code, err)
}

// LogInternalError logs err and sends a 500 response without any detail.
func LogInternalError(w http.ResponseWriter, r *http.Request, code string, err error) {
	log.Errorf("%s: %s", code, err)
	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, errorBody{Error: model.CodeInternal})
}

// NotFound answers unmatched routes in the same JSON shape as every other
// error.
func NotFound(w http.ResponseWriter, r *http.Request) {
	Error(w, r, "route.not_found", model.ErrNotFound())
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusMethodNotAllowed)
	render.JSON(w, r, errorBody{Error: "method_not_allowed"})
}
