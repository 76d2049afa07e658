package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"pesanapp/internal/attachment"
	"pesanapp/internal/chat/service"
	"pesanapp/internal/common"
)

type ChatHandler struct {
	chatService service.ChatService
}

func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Register wires the chat routes onto the router
func (h *ChatHandler) Register(r *mux.Router) {
	r.HandleFunc("/chats", h.CreateChat).Methods("POST")
	r.HandleFunc("/chats", h.GetAllChats).Methods("GET")
	r.HandleFunc("/chats/{id_users}", h.GetChatsBySender).Methods("GET")
	r.HandleFunc("/chats/{id_users}/{for_users}", h.GetConversation).Methods("GET")
	r.HandleFunc("/chats/{id_chat}", h.DeleteChat).Methods("DELETE")
}

// createChatRequest is the JSON body shape; attachments arrive as data URIs
type createChatRequest struct {
	IDUsers   uint64 `json:"id_users"`
	ForUsers  uint64 `json:"for_users"`
	Chat      string `json:"chat"`
	Images    string `json:"images"`
	VoiceNote string `json:"voice_note"`
}

// CreateChat accepts either a JSON body with data-URI attachments or a
// multipart form with images/voice_note file fields. All decoding and
// validation happens before any byte is stored.
func (h *ChatHandler) CreateChat(w http.ResponseWriter, r *http.Request) {
	in, err := h.parseCreateRequest(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}

	view, err := h.chatService.SendMessage(r.Context(), in)
	if err != nil {
		common.WriteError(w, err)
		return
	}

	body := map[string]interface{}{
		"message":    "Chat created successfully",
		"id_chat":    view.IDChat,
		"images":     view.Images,
		"voice_note": view.VoiceNote,
	}
	// the stored filenames, same as list responses expose them
	if view.ImagesRef != "" {
		body["images_ref"] = view.ImagesRef
	}
	if view.VoiceNoteRef != "" {
		body["voice_note_ref"] = view.VoiceNoteRef
	}
	common.WriteJSON(w, http.StatusCreated, body)
}

func (h *ChatHandler) parseCreateRequest(r *http.Request) (*service.MessageInput, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		return h.parseMultipart(r)
	}
	return h.parseJSON(r)
}

func (h *ChatHandler) parseJSON(r *http.Request) (*service.MessageInput, error) {
	var req createChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, fmt.Errorf("%w: invalid request body", common.ErrMissingField)
	}

	in := &service.MessageInput{
		IDUsers:  req.IDUsers,
		ForUsers: req.ForUsers,
		Chat:     req.Chat,
	}

	if req.Images != "" {
		decoded, err := attachment.DecodeDataURI(req.Images, attachment.KindChatImage)
		if err != nil {
			return nil, err
		}
		in.Image = decoded
	}
	if req.VoiceNote != "" {
		decoded, err := attachment.DecodeDataURI(req.VoiceNote, attachment.KindVoiceNote)
		if err != nil {
			return nil, err
		}
		in.Voice = decoded
	}
	return in, nil
}

func (h *ChatHandler) parseMultipart(r *http.Request) (*service.MessageInput, error) {
	// 32 MB in memory, the rest spills to temp files
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return nil, fmt.Errorf("%w: invalid multipart form", common.ErrMissingField)
	}

	idUsers, _ := strconv.ParseUint(r.FormValue("id_users"), 10, 64)
	forUsers, _ := strconv.ParseUint(r.FormValue("for_users"), 10, 64)

	in := &service.MessageInput{
		IDUsers:  idUsers,
		ForUsers: forUsers,
		Chat:     r.FormValue("chat"),
	}

	if file, header, err := r.FormFile("images"); err == nil {
		defer file.Close()
		decoded, err := attachment.DecodeUpload(file, header, attachment.KindChatImage)
		if err != nil {
			return nil, err
		}
		in.Image = decoded
	}
	if file, header, err := r.FormFile("voice_note"); err == nil {
		defer file.Close()
		decoded, err := attachment.DecodeUpload(file, header, attachment.KindVoiceNote)
		if err != nil {
			return nil, err
		}
		in.Voice = decoded
	}
	return in, nil
}

func (h *ChatHandler) GetAllChats(w http.ResponseWriter, r *http.Request) {
	views, err := h.chatService.ListMessages(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Chats fetched successfully",
		"data":    views,
	})
}

func (h *ChatHandler) GetChatsBySender(w http.ResponseWriter, r *http.Request) {
	idUsers, err := parseID(mux.Vars(r)["id_users"])
	if err != nil {
		common.WriteError(w, err)
		return
	}

	views, err := h.chatService.ListBySender(r.Context(), idUsers)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Chats fetched successfully",
		"data":    views,
	})
}

func (h *ChatHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	idUsers, err := parseID(vars["id_users"])
	if err != nil {
		common.WriteError(w, err)
		return
	}
	forUsers, err := parseID(vars["for_users"])
	if err != nil {
		common.WriteError(w, err)
		return
	}

	views, err := h.chatService.ListConversation(r.Context(), idUsers, forUsers)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Chats fetched successfully",
		"data":    views,
	})
}

func (h *ChatHandler) DeleteChat(w http.ResponseWriter, r *http.Request) {
	idChat, err := parseID(mux.Vars(r)["id_chat"])
	if err != nil {
		common.WriteError(w, err)
		return
	}

	if err := h.chatService.DeleteMessage(r.Context(), uint(idChat)); err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Chat deleted successfully",
	})
}

func parseID(raw string) (uint64, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid id %q", common.ErrMissingField, raw)
	}
	return id, nil
}
