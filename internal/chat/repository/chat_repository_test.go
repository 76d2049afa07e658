package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pesanapp/internal/common"
	"pesanapp/internal/dbmysql"
)

func setupTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
	}

	return gormDB, mock, cleanup
}

func TestChatRepository_Insert(t *testing.T) {
	tests := []struct {
		name        string
		message     *dbmysql.Message
		mockSetup   func(sqlmock.Sqlmock)
		expectError bool
	}{
		{
			name: "successful insert",
			message: &dbmysql.Message{
				IDUsers:   1,
				ForUsers:  2,
				Chat:      "hi",
				Date:      time.Now().UTC(),
				Images:    dbmysql.NoImages,
				VoiceNote: dbmysql.NoVoice,
			},
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("INSERT INTO `chats`").
					WithArgs(uint64(1), uint64(2), "hi", sqlmock.AnyArg(), dbmysql.NoImages, dbmysql.NoVoice).
					WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "database failure maps to RowWriteError",
			message: &dbmysql.Message{
				IDUsers: 1,
				Chat:    "hi",
			},
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("INSERT INTO `chats`").
					WillReturnError(assert.AnError)
				mock.ExpectRollback()
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, cleanup := setupTestDB(t)
			defer cleanup()
			tt.mockSetup(mock)

			repo := NewChatRepository(db)
			err := repo.Insert(context.Background(), tt.message)

			if tt.expectError {
				assert.ErrorIs(t, err, common.ErrRowWrite)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestChatRepository_GetByID(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewChatRepository(db)

	cols := []string{"id_chat", "id_users", "for_users", "chat", "date", "images", "voice_note"}

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM `chats`").
			WillReturnRows(sqlmock.NewRows(cols).
				AddRow(3, 1, 2, "hi", time.Now(), dbmysql.NoImages, dbmysql.NoVoice))

		msg, err := repo.GetByID(context.Background(), 3)
		require.NoError(t, err)
		assert.Equal(t, uint(3), msg.IDChat)
		assert.Equal(t, dbmysql.NoImages, msg.Images)
	})

	t.Run("absent row maps to NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM `chats`").
			WillReturnRows(sqlmock.NewRows(cols))

		_, err := repo.GetByID(context.Background(), 99)
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestChatRepository_ListConversation(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewChatRepository(db)

	cols := []string{"id_chat", "id_users", "for_users", "chat", "date", "images", "voice_note"}
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM `chats` WHERE id_users = (.+) AND for_users = (.+) ORDER BY date DESC").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(2, 1, 2, "newer", now, dbmysql.NoImages, dbmysql.NoVoice).
			AddRow(1, 1, 2, "older", now.Add(-time.Minute), dbmysql.NoImages, dbmysql.NoVoice))

	messages, err := repo.ListConversation(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "newer", messages[0].Chat)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChatRepository_Delete(t *testing.T) {
	t.Run("deletes existing row", func(t *testing.T) {
		db, mock, cleanup := setupTestDB(t)
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM `chats`").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		repo := NewChatRepository(db)
		assert.NoError(t, repo.Delete(context.Background(), 3))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("zero rows maps to NotFound", func(t *testing.T) {
		db, mock, cleanup := setupTestDB(t)
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM `chats`").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		repo := NewChatRepository(db)
		assert.ErrorIs(t, repo.Delete(context.Background(), 99), common.ErrNotFound)
	})
}
