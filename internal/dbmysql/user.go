package dbmysql

// NoProfileImage is stored in images_profile when the user has not uploaded one
const NoProfileImage = "NoProfile"

// User mirrors the upstream users table. Password holds a bcrypt hash,
// never plaintext.
type User struct {
	IDUsers       uint64 `gorm:"column:id_users;primaryKey" json:"id_users"`
	NomorHP       string `gorm:"column:nomor_hp;size:20;uniqueIndex" json:"nomor_hp"`
	Username      string `gorm:"column:username;size:50" json:"username"`
	Password      string `gorm:"column:password;size:100" json:"-"`
	ImagesProfile string `gorm:"column:images_profile;size:255" json:"images_profile"`
}

func (User) TableName() string {
	return "users"
}

// HasProfileImage reports whether the user references a stored profile blob
func (u *User) HasProfileImage() bool {
	return u.ImagesProfile != "" && u.ImagesProfile != NoProfileImage
}
