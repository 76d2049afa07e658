package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pesanapp/internal/attachment"
	"pesanapp/internal/blobstore"
	blobmocks "pesanapp/internal/blobstore/mocks"
	repomocks "pesanapp/internal/chat/repository/mocks"
	"pesanapp/internal/common"
	"pesanapp/internal/dbmysql"
)

func newTestService(t *testing.T) (ChatService, *repomocks.MockChatRepository, *blobmocks.MockStore) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockRepo := repomocks.NewMockChatRepository(ctrl)
	mockBlobs := blobmocks.NewMockStore(ctrl)
	return NewChatService(mockRepo, mockBlobs), mockRepo, mockBlobs
}

func decodedImage(t *testing.T) *attachment.Decoded {
	t.Helper()
	d, err := attachment.DecodeDataURI("data:image/jpeg;base64,AAAA", attachment.KindChatImage)
	require.NoError(t, err)
	return d
}

func decodedVoice(t *testing.T) *attachment.Decoded {
	t.Helper()
	d, err := attachment.DecodeDataURI("data:audio/mpeg;base64,AAAA", attachment.KindVoiceNote)
	require.NoError(t, err)
	return d
}

func TestChatService_SendMessage_NoAttachments(t *testing.T) {
	svc, mockRepo, _ := newTestService(t)
	ctx := context.Background()

	mockRepo.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, msg *dbmysql.Message) error {
			assert.Equal(t, dbmysql.NoImages, msg.Images)
			assert.Equal(t, dbmysql.NoVoice, msg.VoiceNote)
			assert.Equal(t, "hi", msg.Chat)
			assert.WithinDuration(t, time.Now().UTC(), msg.Date, time.Second)
			msg.IDChat = 42
			return nil
		})

	view, err := svc.SendMessage(ctx, &MessageInput{IDUsers: 1, ForUsers: 2, Chat: "hi"})
	require.NoError(t, err)

	assert.Equal(t, uint(42), view.IDChat)
	// sentinels round-trip unchanged, they are never rehydrated
	require.NotNil(t, view.Images)
	assert.Equal(t, dbmysql.NoImages, *view.Images)
	require.NotNil(t, view.VoiceNote)
	assert.Equal(t, dbmysql.NoVoice, *view.VoiceNote)
}

func TestChatService_SendMessage_AllEmptyStillCreates(t *testing.T) {
	svc, mockRepo, _ := newTestService(t)

	mockRepo.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, msg *dbmysql.Message) error {
			assert.Equal(t, dbmysql.NoText, msg.Chat)
			return nil
		})

	_, err := svc.SendMessage(context.Background(), &MessageInput{IDUsers: 1})
	assert.NoError(t, err)
}

func TestChatService_SendMessage_MissingSender(t *testing.T) {
	svc, _, _ := newTestService(t)

	view, err := svc.SendMessage(context.Background(), &MessageInput{ForUsers: 2, Chat: "hi"})
	assert.ErrorIs(t, err, common.ErrMissingField)
	assert.Nil(t, view)
}

func TestChatService_SendMessage_WithImage(t *testing.T) {
	svc, mockRepo, mockBlobs := newTestService(t)
	img := decodedImage(t)

	gomock.InOrder(
		// blob must be durable before the row that references it
		mockBlobs.EXPECT().
			Put(gomock.Any(), blobstore.BucketImages, img.Filename, img.Data).
			Return(nil),
		mockRepo.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, msg *dbmysql.Message) error {
				assert.Equal(t, img.Filename, msg.Images)
				assert.Equal(t, dbmysql.NoVoice, msg.VoiceNote)
				msg.IDChat = 7
				return nil
			}),
		mockBlobs.EXPECT().
			Get(gomock.Any(), blobstore.BucketImages, img.Filename).
			Return(img.Data, nil),
	)

	view, err := svc.SendMessage(context.Background(), &MessageInput{IDUsers: 1, Image: img})
	require.NoError(t, err)

	require.NotNil(t, view.Images)
	assert.True(t, strings.HasPrefix(*view.Images, "data:image/jpeg;base64,"))
	assert.Equal(t, img.Filename, view.ImagesRef)
}

func TestChatService_SendMessage_ImageStoreFails(t *testing.T) {
	svc, _, mockBlobs := newTestService(t)
	img := decodedImage(t)

	mockBlobs.EXPECT().
		Put(gomock.Any(), blobstore.BucketImages, img.Filename, img.Data).
		Return(fmt.Errorf("%w: disk full", common.ErrStorageWrite))

	view, err := svc.SendMessage(context.Background(), &MessageInput{IDUsers: 1, Image: img})
	assert.ErrorIs(t, err, common.ErrStorageWrite)
	assert.Nil(t, view)
}

func TestChatService_SendMessage_VoiceStoreFailsCompensatesImage(t *testing.T) {
	svc, _, mockBlobs := newTestService(t)
	img := decodedImage(t)
	voice := decodedVoice(t)

	gomock.InOrder(
		mockBlobs.EXPECT().
			Put(gomock.Any(), blobstore.BucketImages, img.Filename, img.Data).
			Return(nil),
		mockBlobs.EXPECT().
			Put(gomock.Any(), blobstore.BucketVoice, voice.Filename, voice.Data).
			Return(fmt.Errorf("%w: disk full", common.ErrStorageWrite)),
		// the image written in the previous step must not be orphaned
		mockBlobs.EXPECT().
			Delete(gomock.Any(), blobstore.BucketImages, img.Filename).
			Return(nil),
	)

	view, err := svc.SendMessage(context.Background(), &MessageInput{IDUsers: 1, Image: img, Voice: voice})
	assert.ErrorIs(t, err, common.ErrStorageWrite)
	assert.Nil(t, view)
}

func TestChatService_SendMessage_InsertFailsCompensatesBoth(t *testing.T) {
	svc, mockRepo, mockBlobs := newTestService(t)
	img := decodedImage(t)
	voice := decodedVoice(t)

	mockBlobs.EXPECT().
		Put(gomock.Any(), blobstore.BucketImages, img.Filename, img.Data).
		Return(nil)
	mockBlobs.EXPECT().
		Put(gomock.Any(), blobstore.BucketVoice, voice.Filename, voice.Data).
		Return(nil)
	mockRepo.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		Return(fmt.Errorf("%w: connection lost", common.ErrRowWrite))
	mockBlobs.EXPECT().
		Delete(gomock.Any(), blobstore.BucketImages, img.Filename).
		Return(nil)
	mockBlobs.EXPECT().
		Delete(gomock.Any(), blobstore.BucketVoice, voice.Filename).
		Return(nil)

	view, err := svc.SendMessage(context.Background(), &MessageInput{IDUsers: 1, Image: img, Voice: voice})
	assert.ErrorIs(t, err, common.ErrRowWrite)
	assert.Nil(t, view)
}

func TestChatService_SendMessage_RehydrateFailureDoesNotUndoCommit(t *testing.T) {
	svc, mockRepo, mockBlobs := newTestService(t)
	img := decodedImage(t)

	mockBlobs.EXPECT().
		Put(gomock.Any(), blobstore.BucketImages, img.Filename, img.Data).
		Return(nil)
	mockRepo.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, msg *dbmysql.Message) error {
			msg.IDChat = 9
			return nil
		})
	// row committed; a read failure here only degrades the response
	mockBlobs.EXPECT().
		Get(gomock.Any(), blobstore.BucketImages, img.Filename).
		Return(nil, fmt.Errorf("%w: flaky disk", common.ErrStorageRead))

	view, err := svc.SendMessage(context.Background(), &MessageInput{IDUsers: 1, Image: img})
	require.NoError(t, err)

	assert.Equal(t, uint(9), view.IDChat)
	assert.Nil(t, view.Images)
	assert.Equal(t, img.Filename, view.ImagesRef)
}

func TestChatService_ListBySender(t *testing.T) {
	tests := []struct {
		name      string
		idUsers   uint64
		rows      []*dbmysql.Message
		repoErr   error
		wantErr   error
		wantCount int
	}{
		{
			name:    "rows found",
			idUsers: 1,
			rows: []*dbmysql.Message{
				{IDChat: 2, IDUsers: 1, Chat: "newer", Images: dbmysql.NoImages, VoiceNote: dbmysql.NoVoice},
				{IDChat: 1, IDUsers: 1, Chat: "older", Images: dbmysql.NoImages, VoiceNote: dbmysql.NoVoice},
			},
			wantCount: 2,
		},
		{
			name:    "no rows is not found",
			idUsers: 5,
			rows:    nil,
			wantErr: common.ErrNotFound,
		},
		{
			name:    "zero id rejected",
			idUsers: 0,
			wantErr: common.ErrMissingField,
		},
		{
			name:    "repo failure propagates",
			idUsers: 1,
			repoErr: fmt.Errorf("%w: gone", common.ErrRowWrite),
			wantErr: common.ErrRowWrite,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mockRepo, _ := newTestService(t)
			if tt.idUsers != 0 {
				mockRepo.EXPECT().
					ListBySender(gomock.Any(), tt.idUsers).
					Return(tt.rows, tt.repoErr)
			}

			views, err := svc.ListBySender(context.Background(), tt.idUsers)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, views, tt.wantCount)
		})
	}
}

func TestChatService_ListMessages_UnreadableBlobDegradesOneRow(t *testing.T) {
	svc, mockRepo, mockBlobs := newTestService(t)

	rows := []*dbmysql.Message{
		{IDChat: 1, IDUsers: 1, Chat: "a", Images: "one-chat.jpg", VoiceNote: dbmysql.NoVoice},
		{IDChat: 2, IDUsers: 1, Chat: "b", Images: "two-chat.jpg", VoiceNote: dbmysql.NoVoice},
	}
	mockRepo.EXPECT().ListAll(gomock.Any()).Return(rows, nil)
	mockBlobs.EXPECT().
		Get(gomock.Any(), blobstore.BucketImages, "one-chat.jpg").
		Return(nil, fmt.Errorf("%w: missing", common.ErrNotFound))
	mockBlobs.EXPECT().
		Get(gomock.Any(), blobstore.BucketImages, "two-chat.jpg").
		Return([]byte("png bytes"), nil)

	views, err := svc.ListMessages(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 2)

	// the broken row degrades to null but keeps its reference
	assert.Nil(t, views[0].Images)
	assert.Equal(t, "one-chat.jpg", views[0].ImagesRef)

	// the healthy row rehydrates
	require.NotNil(t, views[1].Images)
	assert.True(t, strings.HasPrefix(*views[1].Images, "data:image/jpeg;base64,"))
}

func TestChatService_DeleteMessage(t *testing.T) {
	t.Run("deletes row then blobs", func(t *testing.T) {
		svc, mockRepo, mockBlobs := newTestService(t)

		gomock.InOrder(
			mockRepo.EXPECT().GetByID(gomock.Any(), uint(3)).Return(&dbmysql.Message{
				IDChat: 3, Images: "x-chat.jpg", VoiceNote: "y-voice.mp3",
			}, nil),
			mockRepo.EXPECT().Delete(gomock.Any(), uint(3)).Return(nil),
		)
		mockBlobs.EXPECT().Delete(gomock.Any(), blobstore.BucketImages, "x-chat.jpg").Return(nil)
		mockBlobs.EXPECT().Delete(gomock.Any(), blobstore.BucketVoice, "y-voice.mp3").Return(nil)

		assert.NoError(t, svc.DeleteMessage(context.Background(), 3))
	})

	t.Run("absent row deletes nothing", func(t *testing.T) {
		svc, mockRepo, _ := newTestService(t)

		mockRepo.EXPECT().GetByID(gomock.Any(), uint(99)).
			Return(nil, fmt.Errorf("%w: chat 99", common.ErrNotFound))

		assert.ErrorIs(t, svc.DeleteMessage(context.Background(), 99), common.ErrNotFound)
	})

	t.Run("blob cleanup failure still succeeds", func(t *testing.T) {
		svc, mockRepo, mockBlobs := newTestService(t)

		mockRepo.EXPECT().GetByID(gomock.Any(), uint(4)).Return(&dbmysql.Message{
			IDChat: 4, Images: "z-chat.jpg", VoiceNote: dbmysql.NoVoice,
		}, nil)
		mockRepo.EXPECT().Delete(gomock.Any(), uint(4)).Return(nil)
		mockBlobs.EXPECT().Delete(gomock.Any(), blobstore.BucketImages, "z-chat.jpg").
			Return(fmt.Errorf("%w: permission denied", common.ErrStorageWrite))

		// blob deletion is advisory cleanup, never user-visible failure
		assert.NoError(t, svc.DeleteMessage(context.Background(), 4))
	})

	t.Run("sentinel fields trigger no blob deletes", func(t *testing.T) {
		svc, mockRepo, _ := newTestService(t)

		mockRepo.EXPECT().GetByID(gomock.Any(), uint(5)).Return(&dbmysql.Message{
			IDChat: 5, Images: dbmysql.NoImages, VoiceNote: dbmysql.NoVoice,
		}, nil)
		mockRepo.EXPECT().Delete(gomock.Any(), uint(5)).Return(nil)

		assert.NoError(t, svc.DeleteMessage(context.Background(), 5))
	})
}
