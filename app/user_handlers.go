package mingle

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/mingleapp/mingle/core"
	"github.com/mingleapp/mingle/pkg/router"
)

type UserHandler struct {
	store   core.UserStore
	uploads *Uploads
}

func NewUserHandler(store core.UserStore, uploads *Uploads) *UserHandler {
	return &UserHandler{store: store, uploads: uploads}
}

type RegisterUserResponse struct {
	ID int64 `json:"id"`
}

func (h *UserHandler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) error {
	var user core.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		return router.NewJsonError(http.StatusBadRequest, "invalid json")
	}
	defer r.Body.Close()

	if err := user.Validate(); err != nil {
		return router.NewJsonError(http.StatusBadRequest, "invalid input")
	}

	id, err := h.store.CreateUser(r.Context(), user)
	if err != nil {
		switch err {
		case core.ErrConflictedUser:
			return router.NewJsonError(http.StatusConflict, "user already exists")
		default:
			return err
		}
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(RegisterUserResponse{ID: id})
	return nil
}

func (h *UserHandler) MeHandler(w http.ResponseWriter, r *http.Request) error {
	session := core.SessionFromRequest(r)
	user, err := h.store.GetUserByID(r.Context(), session.UserID)
	if err != nil {
		return fmt.Errorf("GetUserByID: %w", err)
	}

	if user == nil {
		return router.NewJsonError(http.StatusNotFound, "user not found")
	}

	json.NewEncoder(w).Encode(user)
	return nil
}

func (h *UserHandler) GetUserByIDHandler(w http.ResponseWriter, r *http.Request) error {
	id, err := strconv.ParseInt(r.PathValue("userID"), 10, 64)
	if err != nil {
		return router.NewJsonError(http.StatusBadRequest, "invalid user id")
	}

	user, err := h.store.GetUserByID(r.Context(), id)
	if err != nil {
		return err
	}

	if user == nil {
		return router.NewJsonError(http.StatusNotFound, "user not found")
	}

	json.NewEncoder(w).Encode(user)
	return nil
}

func (h *UserHandler) SearchUsersHandler(w http.ResponseWriter, r *http.Request) error {
	users, err := h.store.SearchUsers(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		return err
	}

	if users == nil {
		users = []core.Profile{}
	}
	json.NewEncoder(w).Encode(users)
	return nil
}

type UpdateBioPayload struct {
	Bio string `json:"bio" validate:"max=512"`
}

func (h *UserHandler) UpdateBioHandler(w http.ResponseWriter, r *http.Request) error {
	session := core.SessionFromRequest(r)

	var payload UpdateBioPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return router.NewJsonError(http.StatusBadRequest, "invalid json")
	}
	defer r.Body.Close()

	if err := validate.Struct(payload); err != nil {
		return router.NewJsonError(http.StatusBadRequest, "invalid input")
	}

	if err := h.store.UpdateBio(r.Context(), session.UserID, payload.Bio); err != nil {
		return err
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

type UploadPhotoResponse struct {
	Photo string `json:"photo"`
}

// UploadPhotoHandler stores the uploaded photo under the uploads dir and
// records its public path on the profile.
func (h *UserHandler) UploadPhotoHandler(w http.ResponseWriter, r *http.Request) error {
	session := core.SessionFromRequest(r)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return router.NewJsonError(http.StatusBadRequest, "invalid multipart form")
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		return router.NewJsonError(http.StatusBadRequest, "photo file is required")
	}
	defer file.Close()

	name, err := h.uploads.Save(file, header.Filename)
	if err != nil {
		return fmt.Errorf("Save: %w", err)
	}

	photo := "/uploads/" + name
	if err := h.store.UpdatePhoto(r.Context(), session.UserID, photo); err != nil {
		return err
	}

	json.NewEncoder(w).Encode(UploadPhotoResponse{Photo: photo})
	return nil
}
