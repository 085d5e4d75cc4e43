package handlers

import (
	"context"
	"net/http"

	"github.com/hongminglow/users-api/internal/http/respond"
	"github.com/hongminglow/users-api/internal/models"
	"github.com/hongminglow/users-api/internal/models/dto"
	"github.com/hongminglow/users-api/internal/users"
)

// BasePath is the prefix every users route is mounted under.
const BasePath = "/api/users"

const (
	descListed  = "Successfully fetched all data!"
	descFetched = "Successfully fetched users data by id!"
	descFound   = "Successfully found user data!"
	descCreated = "Successfully created data!"
	descUpdated = "Successfully updated data!"
	descDeleted = "Successfully deleted data!"
)

// UserService is the collaborator the users routes delegate to.
type UserService interface {
	List(ctx context.Context) ([]models.User, error)
	Get(ctx context.Context, id int64) (models.User, error)
	Login(ctx context.Context, in users.LoginInput) (models.User, error)
	Create(ctx context.Context, in users.CreateInput) (models.User, error)
	Update(ctx context.Context, id int64, in users.UpdateInput) (models.User, error)
	Delete(ctx context.Context, id int64) error
}

// UserHandler owns the CRUD routes of the users resource.
type UserHandler struct {
	service UserService
}

// NewUserHandler constructs the handler.
func NewUserHandler(service UserService) *UserHandler {
	return &UserHandler{service: service}
}

// Register attaches the users routes to the mux.
func (h *UserHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET "+BasePath, h.handleList)
	mux.HandleFunc("GET "+BasePath+"/{id}", h.handleGet)
	mux.HandleFunc("POST "+BasePath, h.handleCreate)
	mux.HandleFunc("PATCH "+BasePath+"/{id}", h.handleUpdate)
	mux.HandleFunc("DELETE "+BasePath+"/{id}", h.handleDelete)
}

// handleList godoc
// @Summary Retrieve a list of users
// @Description Retrieve every user from the users table
// @Tags Users
// @Produce json
// @Success 200 {object} respond.Envelope{data=[]models.User} "A list of users"
// @Failure 500 {object} respond.Envelope
// @Router /api/users [get]
func (h *UserHandler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "fetch users")
		return
	}
	respond.JSON(w, http.StatusOK, descListed, list)
}

// handleGet godoc
// @Summary Retrieve users data by id
// @Description Retrieve a single user by id from the users table
// @Tags Users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} respond.Envelope{data=models.User} "Single user data"
// @Failure 400 {object} respond.Envelope
// @Failure 404 {object} respond.Envelope
// @Router /api/users/{id} [get]
func (h *UserHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "fetch user")
		return
	}
	respond.JSON(w, http.StatusOK, descFetched, user)
}

// handleCreate godoc
// @Summary Create users data
// @Description Create a user; the password is stored as a bcrypt hash
// @Tags Users
// @Accept json
// @Produce json
// @Param request body dto.CreateUserRequest true "User data"
// @Success 200 {object} respond.Envelope{data=models.User} "Successfully created data"
// @Failure 400 {object} respond.Envelope
// @Failure 409 {object} respond.Envelope
// @Router /api/users [post]
func (h *UserHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := h.service.Create(r.Context(), users.CreateInput{
		Username: req.Username,
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Profile:  req.Profile,
	})
	if err != nil {
		writeServiceError(w, r, err, "create user")
		return
	}
	respond.JSON(w, http.StatusOK, descCreated, created)
}

// handleUpdate godoc
// @Summary Update users data
// @Description Partially update a user; omitted fields keep their value
// @Tags Users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body dto.UpdateUserRequest true "Fields to change"
// @Success 200 {object} respond.Envelope{data=models.User} "Successfully updated data"
// @Failure 400 {object} respond.Envelope
// @Failure 404 {object} respond.Envelope
// @Failure 409 {object} respond.Envelope
// @Router /api/users/{id} [patch]
func (h *UserHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	var req dto.UpdateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := h.service.Update(r.Context(), id, users.UpdateInput{
		Username: req.Username,
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Profile:  req.Profile,
	})
	if err != nil {
		writeServiceError(w, r, err, "update user")
		return
	}
	respond.JSON(w, http.StatusOK, descUpdated, updated)
}

// handleDelete godoc
// @Summary Remove users data by id
// @Description Delete a user
// @Tags Users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} respond.Envelope "Successfully deleted data"
// @Failure 400 {object} respond.Envelope
// @Failure 404 {object} respond.Envelope
// @Router /api/users/{id} [delete]
func (h *UserHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "delete user")
		return
	}
	respond.JSON(w, http.StatusOK, descDeleted, nil)
}
