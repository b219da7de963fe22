package service

import (
	"context"
	"time"

	"phonebook/contacts-api/aws"
	"phonebook/contacts-api/internal/model"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AccountCleanup automatically deletes accounts that registered but never
// verified their email before the deadline. Contacts and tokens go with the
// user through the foreign key cascade; avatars have to be removed from S3
// by hand.
func AccountCleanup(t time.Duration, db *gorm.DB, s3c *aws.S3Client) {
	ticker := time.NewTicker(t)

	zap.L().Debug("Account cleanup attached", zap.Duration("tick_every", t))

	go func() {
		for range ticker.C {
			var expired []model.User

			err := db.
				Where("expires_at IS NOT NULL AND expires_at < ?", time.Now()).
				Select("id", "avatar_key").
				Find(&expired).
				Error
			if err != nil {
				zap.L().Error("Failed to query db for users to clean", zap.Error(err))
				continue
			}

			if len(expired) == 0 {
				continue
			}

			var ids []string
			var avatarKeys []string

			for _, u := range expired {
				ids = append(ids, u.ID)
				if u.AvatarKey != "" {
					avatarKeys = append(avatarKeys, u.AvatarKey)
				}
			}

			if len(avatarKeys) > 0 && s3c != nil {
				objects := make([]types.ObjectIdentifier, len(avatarKeys))
				for i := range avatarKeys {
					objects[i] = types.ObjectIdentifier{Key: &avatarKeys[i]}
				}

				if _, err := s3c.C.DeleteObjects(context.Background(), &s3.DeleteObjectsInput{
					Bucket: s3c.Bucket,
					Delete: &types.Delete{
						Objects: objects,
					},
				}); err != nil {
					zap.L().Error("Failed to delete avatars from S3", zap.Error(err))
				}
			}

			err = db.
				Where("id IN ?", ids).
				Delete(&model.User{}).
				Error
			if err != nil {
				zap.L().Error("Failed to delete users from database", zap.Error(err))
				continue
			}

			zap.L().Debug("Account cleanup finished", zap.Int("deleted", len(ids)))
		}
	}()
}
