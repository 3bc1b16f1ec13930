package handler

import (
	"encoding/json"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"exercise_tracker/internal/app/service"
	"exercise_tracker/internal/common"
	"exercise_tracker/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type ExerciseHandler struct {
	exerciseService *service.ExerciseService
}

func NewExerciseHandler(exerciseService *service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

func (h *ExerciseHandler) RegisterRoutes(r chi.Router) {
	r.Post("/{userID}/exercises", h.logExercise)
	r.Get("/{userID}/logs", h.getLog)
}

func (h *ExerciseHandler) logExercise(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req service.LogExerciseRequest
	if isFormRequest(r) {
		if err := r.ParseForm(); err != nil {
			common.RespondWithError(w, http.StatusBadRequest, "Invalid form payload: "+err.Error())
			return
		}
		req.Description = r.FormValue("description")
		req.Date = r.FormValue("date")
		// A non-numeric duration is left at zero and rejected by validation.
		req.Duration, _ = strconv.Atoi(r.FormValue("duration"))
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
			return
		}
	}

	view, err := h.exerciseService.LogExercise(r.Context(), userID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, view)
}

func (h *ExerciseHandler) getLog(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	view, err := h.exerciseService.GetLog(r.Context(), userID, parseLogQuery(r.URL.Query()))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, view)
}

// parseLogQuery reads the optional from/to/limit parameters. Unparseable
// values are ignored rather than failing the request.
func parseLogQuery(values url.Values) service.LogQuery {
	var query service.LogQuery

	if raw := values.Get("from"); raw != "" {
		if parsed, err := time.Parse(model.DateLayout, raw); err == nil {
			query.From = &parsed
		}
	}
	if raw := values.Get("to"); raw != "" {
		if parsed, err := time.Parse(model.DateLayout, raw); err == nil {
			query.To = &parsed
		}
	}
	if raw := values.Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			query.Limit = parsed
		}
	}
	return query
}

// isFormRequest reports whether the body should be read as an HTML form
// instead of JSON.
func isFormRequest(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data"
}
