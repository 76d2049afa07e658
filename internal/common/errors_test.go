package common

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCodeAndErrorKey(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKey    string
	}{
		{"missing field", ErrMissingField, http.StatusBadRequest, "MissingField"},
		{"invalid attachment", ErrInvalidAttachmentType, http.StatusBadRequest, "InvalidAttachmentType"},
		{"not found", ErrNotFound, http.StatusNotFound, "NotFound"},
		{"storage write", ErrStorageWrite, http.StatusInternalServerError, "StorageWriteError"},
		{"storage read", ErrStorageRead, http.StatusInternalServerError, "StorageReadError"},
		{"row write", ErrRowWrite, http.StatusInternalServerError, "RowWriteError"},
		{"unknown", assert.AnError, http.StatusInternalServerError, "InternalError"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// wrapped errors keep their classification
			wrapped := fmt.Errorf("%w: some context", tt.err)
			assert.Equal(t, tt.wantStatus, StatusCode(wrapped))
			assert.Equal(t, tt.wantKey, ErrorKey(wrapped))
		})
	}
}
