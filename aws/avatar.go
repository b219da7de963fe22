package aws

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/viper"
)

// UploadAvatar streams an avatar image to S3 under the given key.
func (c *S3Client) UploadAvatar(ctx context.Context, key, contentType string, body io.Reader) error {
	_, err := c.Uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      c.Bucket,
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("failed to upload avatar, %w", err)
	}

	return nil
}

// DeleteAvatar removes a previous avatar object. Missing objects are not an
// error, S3 delete is idempotent.
func (c *S3Client) DeleteAvatar(ctx context.Context, key string) error {
	_, err := c.C.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: c.Bucket,
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete avatar, %w", err)
	}

	return nil
}

// AvatarURL builds the public object URL for an avatar key. Empty keys yield
// an empty URL so callers can pass the user row through directly.
func AvatarURL(key string) string {
	if key == "" {
		return ""
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s",
		viper.GetString("aws.bucket"), viper.GetString("aws.region"), key)
}
