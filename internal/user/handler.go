package user

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"pesanapp/internal/attachment"
	"pesanapp/internal/common"
)

type Handler struct {
	userService UserService
}

func NewHandler(userService UserService) *Handler {
	return &Handler{userService: userService}
}

// Register wires the user routes onto the router
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/users", h.CreateUser).Methods("POST")
	r.HandleFunc("/users", h.GetAllUsers).Methods("GET")
	r.HandleFunc("/users/{id_users}", h.GetUser).Methods("GET")
	r.HandleFunc("/users/{id_users}", h.UpdateUser).Methods("PUT")
	r.HandleFunc("/users/{id_users}", h.DeleteUser).Methods("DELETE")
	r.HandleFunc("/users/{id_users}/profile-image", h.SetProfileImage).Methods("PUT")
	r.HandleFunc("/login", h.Login).Methods("POST")
}

type userRequest struct {
	NomorHP  string `json:"nomor_hp"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, fmt.Errorf("%w: invalid request body", common.ErrMissingField))
		return
	}

	u, err := h.userService.CreateUser(r.Context(), req.NomorHP, req.Username, req.Password)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "User created successfully",
		"id_users": u.IDUsers,
	})
}

func (h *Handler) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	views, err := h.userService.ListUsers(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Users fetched successfully",
		"data":    views,
	})
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	idUsers, err := parseUserID(mux.Vars(r)["id_users"])
	if err != nil {
		common.WriteError(w, err)
		return
	}

	view, err := h.userService.GetUser(r.Context(), idUsers)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	idUsers, err := parseUserID(mux.Vars(r)["id_users"])
	if err != nil {
		common.WriteError(w, err)
		return
	}

	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, fmt.Errorf("%w: invalid request body", common.ErrMissingField))
		return
	}

	if err := h.userService.UpdateUser(r.Context(), idUsers, req.NomorHP, req.Username, req.Password); err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "User updated successfully",
	})
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	idUsers, err := parseUserID(mux.Vars(r)["id_users"])
	if err != nil {
		common.WriteError(w, err)
		return
	}

	if err := h.userService.DeleteUser(r.Context(), idUsers); err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "User deleted successfully",
	})
}

// SetProfileImage accepts a JSON body {"images_profile": "<data URI>"} or a
// multipart form with an images_profile file field
func (h *Handler) SetProfileImage(w http.ResponseWriter, r *http.Request) {
	idUsers, err := parseUserID(mux.Vars(r)["id_users"])
	if err != nil {
		common.WriteError(w, err)
		return
	}

	decoded, err := h.parseProfileImage(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}

	view, err := h.userService.SetProfileImage(r.Context(), idUsers, decoded)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Profile image updated successfully",
		"data":    view,
	})
}

func (h *Handler) parseProfileImage(r *http.Request) (*attachment.Decoded, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return nil, fmt.Errorf("%w: invalid multipart form", common.ErrMissingField)
		}
		file, header, err := r.FormFile("images_profile")
		if err != nil {
			return nil, fmt.Errorf("%w: images_profile", common.ErrMissingField)
		}
		defer file.Close()
		return attachment.DecodeUpload(file, header, attachment.KindProfileImage)
	}

	var req struct {
		ImagesProfile string `json:"images_profile"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ImagesProfile == "" {
		return nil, fmt.Errorf("%w: images_profile", common.ErrMissingField)
	}
	return attachment.DecodeDataURI(req.ImagesProfile, attachment.KindProfileImage)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NomorHP  string `json:"nomor_hp"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, fmt.Errorf("%w: invalid request body", common.ErrMissingField))
		return
	}

	u, token, err := h.userService.Login(r.Context(), req.NomorHP, req.Password)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Login successful",
		"id_users": u.IDUsers,
		"username": u.Username,
		"token":    token,
	})
}

func parseUserID(raw string) (uint64, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid id %q", common.ErrMissingField, raw)
	}
	return id, nil
}
