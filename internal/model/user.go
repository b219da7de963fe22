package model

import "time"

type User struct {
	ID           string `gorm:"primaryKey"`
	Email        string `gorm:"unique; not null"`
	PasswordHash string `gorm:"not null"`
	Verified     bool   `gorm:"default:false"`

	// S3 object key of the avatar, empty when the user never uploaded one
	AvatarKey string

	// Deadline for unverified accounts, cleared once the user verifies
	ExpiresAt *time.Time

	VerificationTokens []VerificationToken `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Contacts           []Contact           `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}
