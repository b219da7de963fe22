// Package model defines database models
package model

import "time"

type Contact struct {
	ID     uint   `gorm:"primaryKey;autoIncrement;index" json:"id"`
	UserID string `gorm:"index" json:"-"`

	Name    string `gorm:"not null" json:"name"`
	Surname string `json:"surname"`
	Email   string `json:"email"`
	Number  string `json:"number"`

	// Calendar date. The year is stored as given but the upcoming-birthdays
	// query only ever looks at month and day
	Birthday Date `json:"birthday"`

	AdditionalData string `json:"additional_data,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
