// Package upload pushes avatar images to Cloudinary and builds gravatar
// URLs for freshly registered users.
package upload

import (
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

type Uploader struct {
	cld *cloudinary.Cloudinary
}

func New(cloudName, apiKey, apiSecret string) (*Uploader, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("creating cloudinary client: %w", err)
	}
	cld.Config.URL.Secure = true
	return &Uploader{cld: cld}, nil
}

// UploadAvatar stores the image under a per-user public id and returns a
// 250x250 fill-cropped delivery URL.
func (u *Uploader) UploadAvatar(ctx context.Context, file io.Reader, username string) (string, error) {
	publicID := "RestApp/" + username

	res, err := u.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID:  publicID,
		Overwrite: api.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("uploading avatar: %w", err)
	}

	img, err := u.cld.Image(publicID)
	if err != nil {
		return "", fmt.Errorf("building avatar url: %w", err)
	}
	img.Transformation = "c_fill,h_250,w_250"
	img.Version = res.Version

	url, err := img.String()
	if err != nil {
		return "", fmt.Errorf("building avatar url: %w", err)
	}
	return url, nil
}

// GravatarURL derives the default avatar for an email address. No network
// call is made; fetching is left to the client.
func GravatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?d=identicon", sum)
}
