// Package attachment turns client-submitted payloads (data URIs or multipart
// uploads) into raw bytes plus a server-generated filename, and re-encodes
// stored blobs back into data URIs for responses.
package attachment

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"pesanapp/internal/common"
)

// Kind selects the mime allow-list and the filename suffix
type Kind string

const (
	KindChatImage    Kind = "chat"
	KindVoiceNote    Kind = "voice"
	KindProfileImage Kind = "profile"
)

// allowed mime types and the extension each one maps to. The extension always
// comes from this table, never from client input, so generated filenames are
// traversal-safe by construction.
var imageMimes = map[string]string{
	"image/jpeg":    "jpg",
	"image/jpg":     "jpg",
	"image/png":     "png",
	"image/gif":     "gif",
	"image/bmp":     "bmp",
	"image/webp":    "webp",
	"image/tiff":    "tiff",
	"image/svg+xml": "svg",
}

var voiceMimes = map[string]string{
	"audio/mp3":  "mp3",
	"audio/mpeg": "mp3",
	"audio/wav":  "wav",
	"audio/ogg":  "ogg",
}

// mime types keyed by extension, for rehydrating stored filenames
var mimeByExt = map[string]string{
	".jpg":  "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".tiff": "image/tiff",
	".svg":  "image/svg+xml",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
}

// Decoded is validated attachment bytes plus the filename they will be stored under
type Decoded struct {
	Data     []byte
	Mime     string
	Filename string
}

func allowListFor(kind Kind) map[string]string {
	if kind == KindVoiceNote {
		return voiceMimes
	}
	return imageMimes
}

// newFilename builds a collision-resistant name: <uuid>-<suffix>.<ext>.
// Upstream used a raw timestamp here, which collides under concurrent
// same-millisecond requests.
func newFilename(kind Kind, ext string) string {
	return fmt.Sprintf("%s-%s.%s", uuid.NewString(), kind, ext)
}

// DecodeDataURI parses a data:<mime>;base64,<payload> string and validates
// the mime against the allow-list for kind. Nothing is written anywhere on
// failure.
func DecodeDataURI(uri string, kind Kind) (*Decoded, error) {
	if !strings.HasPrefix(uri, "data:") {
		return nil, fmt.Errorf("%w: not a data URI", common.ErrInvalidAttachmentType)
	}

	rest := strings.TrimPrefix(uri, "data:")
	meta, payload, found := strings.Cut(rest, ",")
	if !found {
		return nil, fmt.Errorf("%w: malformed data URI", common.ErrInvalidAttachmentType)
	}

	mimeType := strings.TrimSuffix(meta, ";base64")
	ext, ok := allowListFor(kind)[mimeType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", common.ErrInvalidAttachmentType, mimeType)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64 payload", common.ErrInvalidAttachmentType)
	}

	return &Decoded{
		Data:     data,
		Mime:     mimeType,
		Filename: newFilename(kind, ext),
	}, nil
}

// DecodeUpload reads a multipart file upload, validating its declared
// Content-Type against the allow-list for kind.
func DecodeUpload(file multipart.File, header *multipart.FileHeader, kind Kind) (*Decoded, error) {
	mimeType := header.Header.Get("Content-Type")
	ext, ok := allowListFor(kind)[mimeType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", common.ErrInvalidAttachmentType, mimeType)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("%w: reading upload: %v", common.ErrStorageRead, err)
	}

	return &Decoded{
		Data:     data,
		Mime:     mimeType,
		Filename: newFilename(kind, ext),
	}, nil
}

// EncodeDataURI re-encodes stored bytes into a data URI, inferring the mime
// type from the stored filename's extension
func EncodeDataURI(filename string, data []byte) string {
	mimeType, ok := mimeByExt[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		mimeType = "application/octet-stream"
	}
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}
