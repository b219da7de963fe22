package validators

import (
	"errors"
	"mime/multipart"
	"net/http"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrNoAvatar              = errors.New("no avatar file provided")
	ErrAvatarTooLarge        = errors.New("avatar file too large")
	ErrAvatarTypeUnsupported = errors.New("unsupported avatar file type, use png or jpeg")
)

const maxAvatarSize = 2 << 20

var allowedAvatarTypes = []string{"image/png", "image/jpeg"}

// AvatarValidator checks the multipart header and sniffs the actual content
// type. Returns the open file positioned at the start on success; the caller
// closes it.
func AvatarValidator(fh *multipart.FileHeader) (int, multipart.File, error) {
	if fh == nil {
		return http.StatusBadRequest, nil, ErrNoAvatar
	}

	if fh.Size > maxAvatarSize {
		return http.StatusRequestEntityTooLarge, nil, ErrAvatarTooLarge
	}

	// Check headers first which is easy to spoof, but faster for legit clients
	ct := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "image/") {
		return http.StatusBadRequest, nil, ErrAvatarTypeUnsupported
	}

	f, err := fh.Open()
	if err != nil {
		return http.StatusInternalServerError, nil, err
	}

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		f.Close()
		return http.StatusInternalServerError, nil, err
	}

	if !slices.Contains(allowedAvatarTypes, mtype.String()) {
		f.Close()
		return http.StatusBadRequest, nil, ErrAvatarTypeUnsupported
	}

	if _, err := f.Seek(0, 0); err != nil {
		f.Close()
		return http.StatusInternalServerError, nil, err
	}

	return http.StatusOK, f, nil
}
