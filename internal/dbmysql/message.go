package dbmysql

import (
	"time"
)

// Sentinel values stored in place of a filename when an attachment is absent.
// These round-trip unchanged through reads: they are never rehydrated.
const (
	NoImages = "NoImages"
	NoVoice  = "NoVoice"
	NoText   = "NoText"
)

// Message is one chat entry. Column names follow the upstream schema.
type Message struct {
	IDChat    uint      `gorm:"column:id_chat;primaryKey" json:"id_chat"`
	IDUsers   uint64    `gorm:"column:id_users;index" json:"id_users"`
	ForUsers  uint64    `gorm:"column:for_users;index" json:"for_users"`
	Chat      string    `gorm:"column:chat;type:text" json:"chat"`
	Date      time.Time `gorm:"column:date;index" json:"date"`
	Images    string    `gorm:"column:images;size:255" json:"images"`
	VoiceNote string    `gorm:"column:voice_note;size:255" json:"voice_note"`
}

func (Message) TableName() string {
	return "chats"
}

// HasImage reports whether the row references a stored image blob
func (m *Message) HasImage() bool {
	return m.Images != "" && m.Images != NoImages
}

// HasVoice reports whether the row references a stored voice-note blob
func (m *Message) HasVoice() bool {
	return m.VoiceNote != "" && m.VoiceNote != NoVoice
}
