package handler

import (
	"encoding/json"
	"net/http"

	"exercise_tracker/internal/app/service"
	"exercise_tracker/internal/common"

	"github.com/go-chi/chi/v5"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.createUser)
	r.Get("/", h.listUsers)
}

type createUserRequest struct {
	Username string `json:"username"`
}

func (h *UserHandler) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if isFormRequest(r) {
		// The original clients submit the landing-page form urlencoded.
		if err := r.ParseForm(); err != nil {
			common.RespondWithError(w, http.StatusBadRequest, "Invalid form payload: "+err.Error())
			return
		}
		req.Username = r.FormValue("username")
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
			return
		}
	}

	user, err := h.userService.CreateUser(r.Context(), req.Username)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *UserHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListUsers(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, users)
}
