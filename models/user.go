// models/user.go
package models

import "time"

// User is a platform account. Providers are users with the Provider flag set;
// they are not a separate identity type.
type User struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Provider  bool      `gorm:"not null;default:false" json:"provider"`
	AvatarID  *int64    `json:"avatar_id,omitempty"`
	Avatar    *File     `gorm:"foreignKey:AvatarID" json:"avatar,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
