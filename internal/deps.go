package internal

import (
	"phonebook/contacts-api/aws"
	"phonebook/contacts-api/internal/service"
	"phonebook/contacts-api/pkg/security"

	"gorm.io/gorm"
)

// Deps holds every process-wide dependency. All of them are constructed once
// in app.NewRouter and threaded through handlers explicitly, no package-level
// singletons.
type Deps struct {
	DB    *gorm.DB
	Argon *security.ArgonHash
	S3    *aws.S3Client
	Mail  service.Mailer
}
