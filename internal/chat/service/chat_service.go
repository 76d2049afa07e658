package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"pesanapp/internal/attachment"
	"pesanapp/internal/blobstore"
	"pesanapp/internal/chat/repository"
	"pesanapp/internal/common"
	"pesanapp/internal/dbmysql"
)

// MessageInput is one create-message request after attachment decoding.
// Image and Voice are nil when the client sent none.
type MessageInput struct {
	IDUsers  uint64
	ForUsers uint64
	Chat     string
	Image    *attachment.Decoded
	Voice    *attachment.Decoded
}

// MessageView is a row prepared for the client. Images and VoiceNote carry
// the sentinel unchanged, a rehydrated data URI, or null when the referenced
// blob could not be read. The *_ref fields expose the stored filename for any
// non-sentinel reference, so a null field is a degraded read, not data loss.
type MessageView struct {
	IDChat       uint      `json:"id_chat"`
	IDUsers      uint64    `json:"id_users"`
	ForUsers     uint64    `json:"for_users"`
	Chat         string    `json:"chat"`
	Date         time.Time `json:"date"`
	Images       *string   `json:"images"`
	ImagesRef    string    `json:"images_ref,omitempty"`
	VoiceNote    *string   `json:"voice_note"`
	VoiceNoteRef string    `json:"voice_note_ref,omitempty"`
}

// ChatService defines the interface exposed to the handler layer
type ChatService interface {
	SendMessage(ctx context.Context, in *MessageInput) (*MessageView, error)
	ListMessages(ctx context.Context) ([]*MessageView, error)
	ListBySender(ctx context.Context, idUsers uint64) ([]*MessageView, error)
	ListConversation(ctx context.Context, idUsers, forUsers uint64) ([]*MessageView, error)
	DeleteMessage(ctx context.Context, idChat uint) error
}

type chatService struct {
	repo  repository.ChatRepository
	blobs blobstore.Store
}

// Constructor used in DI/wire
func NewChatService(r repository.ChatRepository, b blobstore.Store) ChatService {
	return &chatService{repo: r, blobs: b}
}

// writtenBlob tracks a blob stored earlier in the request, for rollback only
type writtenBlob struct {
	bucket   blobstore.Bucket
	filename string
}

// SendMessage runs the ordered write protocol: store any attachment bytes
// first, insert the row that references them last. There is no transaction
// spanning the row store and the blob store, so each later failure compensates
// by deleting whatever blobs this request already wrote. A reader can
// therefore never observe a committed row whose reference points at a missing
// blob.
func (s *chatService) SendMessage(ctx context.Context, in *MessageInput) (*MessageView, error) {
	if in.IDUsers == 0 {
		return nil, fmt.Errorf("%w: id_users", common.ErrMissingField)
	}

	// an all-empty message is still a message
	body := in.Chat
	if body == "" {
		body = dbmysql.NoText
	}

	var written []writtenBlob

	if in.Image != nil {
		if err := s.blobs.Put(ctx, blobstore.BucketImages, in.Image.Filename, in.Image.Data); err != nil {
			return nil, err
		}
		written = append(written, writtenBlob{blobstore.BucketImages, in.Image.Filename})
	}

	if in.Voice != nil {
		if err := s.blobs.Put(ctx, blobstore.BucketVoice, in.Voice.Filename, in.Voice.Data); err != nil {
			s.compensate(ctx, written)
			return nil, err
		}
		written = append(written, writtenBlob{blobstore.BucketVoice, in.Voice.Filename})
	}

	msg := &dbmysql.Message{
		IDUsers:   in.IDUsers,
		ForUsers:  in.ForUsers,
		Chat:      body,
		Date:      time.Now().UTC(),
		Images:    dbmysql.NoImages,
		VoiceNote: dbmysql.NoVoice,
	}
	if in.Image != nil {
		msg.Images = in.Image.Filename
	}
	if in.Voice != nil {
		msg.VoiceNote = in.Voice.Filename
	}

	if err := s.repo.Insert(ctx, msg); err != nil {
		s.compensate(ctx, written)
		return nil, err
	}

	// row is committed; rehydration is best-effort and never undoes it
	return s.toView(ctx, msg), nil
}

// compensate deletes blobs written earlier in a failed request. Failures here
// are logged only: cleanup is a secondary effect of an error already on its
// way to the caller.
func (s *chatService) compensate(ctx context.Context, written []writtenBlob) {
	for _, b := range written {
		if err := s.blobs.Delete(ctx, b.bucket, b.filename); err != nil {
			log.Printf("compensation: could not remove %s/%s: %v", b.bucket, b.filename, err)
		}
	}
}

func (s *chatService) ListMessages(ctx context.Context) ([]*MessageView, error) {
	messages, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.toViews(ctx, messages), nil
}

func (s *chatService) ListBySender(ctx context.Context, idUsers uint64) ([]*MessageView, error) {
	if idUsers == 0 {
		return nil, fmt.Errorf("%w: id_users", common.ErrMissingField)
	}
	messages, err := s.repo.ListBySender(ctx, idUsers)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, fmt.Errorf("%w: no chats for user %d", common.ErrNotFound, idUsers)
	}
	return s.toViews(ctx, messages), nil
}

func (s *chatService) ListConversation(ctx context.Context, idUsers, forUsers uint64) ([]*MessageView, error) {
	if idUsers == 0 || forUsers == 0 {
		return nil, fmt.Errorf("%w: id_users, for_users", common.ErrMissingField)
	}
	messages, err := s.repo.ListConversation(ctx, idUsers, forUsers)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, fmt.Errorf("%w: no chats between %d and %d", common.ErrNotFound, idUsers, forUsers)
	}
	return s.toViews(ctx, messages), nil
}

// DeleteMessage removes the row first, then reclaims its blobs. Blob cleanup
// is advisory: once the row is gone the delete has succeeded, and a leftover
// file is only noise on disk, never an inconsistency a reader can see.
func (s *chatService) DeleteMessage(ctx context.Context, idChat uint) error {
	msg, err := s.repo.GetByID(ctx, idChat)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, idChat); err != nil {
		return err
	}

	if msg.HasImage() {
		if err := s.blobs.Delete(ctx, blobstore.BucketImages, msg.Images); err != nil {
			log.Printf("delete chat %d: image cleanup failed: %v", idChat, err)
		}
	}
	if msg.HasVoice() {
		if err := s.blobs.Delete(ctx, blobstore.BucketVoice, msg.VoiceNote); err != nil {
			log.Printf("delete chat %d: voice cleanup failed: %v", idChat, err)
		}
	}
	return nil
}

// toView rehydrates one row. Sentinels pass through unchanged; a non-sentinel
// reference becomes a data URI, or null when the blob cannot be read — the
// one unreadable attachment must not fail the whole page.
func (s *chatService) toView(ctx context.Context, msg *dbmysql.Message) *MessageView {
	view := &MessageView{
		IDChat:   msg.IDChat,
		IDUsers:  msg.IDUsers,
		ForUsers: msg.ForUsers,
		Chat:     msg.Chat,
		Date:     msg.Date,
	}

	if !msg.HasImage() {
		sentinel := msg.Images
		view.Images = &sentinel
	} else {
		view.ImagesRef = msg.Images
		if data, err := s.blobs.Get(ctx, blobstore.BucketImages, msg.Images); err != nil {
			log.Printf("rehydrate chat %d: image %s unreadable: %v", msg.IDChat, msg.Images, err)
		} else {
			uri := attachment.EncodeDataURI(msg.Images, data)
			view.Images = &uri
		}
	}

	if !msg.HasVoice() {
		sentinel := msg.VoiceNote
		view.VoiceNote = &sentinel
	} else {
		view.VoiceNoteRef = msg.VoiceNote
		if data, err := s.blobs.Get(ctx, blobstore.BucketVoice, msg.VoiceNote); err != nil {
			log.Printf("rehydrate chat %d: voice %s unreadable: %v", msg.IDChat, msg.VoiceNote, err)
		} else {
			uri := attachment.EncodeDataURI(msg.VoiceNote, data)
			view.VoiceNote = &uri
		}
	}

	return view
}

func (s *chatService) toViews(ctx context.Context, messages []*dbmysql.Message) []*MessageView {
	views := make([]*MessageView, 0, len(messages))
	for _, m := range messages {
		views = append(views, s.toView(ctx, m))
	}
	return views
}
