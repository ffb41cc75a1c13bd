package storage

import (
	"context"
	"errors"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"mymind/config"
)

// Asset identifies an uploaded image in the asset store.
type Asset struct {
	PublicID string
	URL      string
}

// Cloudinary stores post images. Payloads are data-URI strings coming
// straight from the request body.
type Cloudinary struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinary(cfg *config.Config) (*Cloudinary, error) {
	if cfg.CloudinaryURL == "" {
		return nil, errors.New("CLOUDINARY_URL is not set")
	}
	cld, err := cloudinary.NewFromURL(cfg.CloudinaryURL)
	if err != nil {
		return nil, err
	}
	return &Cloudinary{cld: cld}, nil
}

func (s *Cloudinary) Upload(ctx context.Context, payload string, folder string) (Asset, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	res, err := s.cld.Upload.Upload(ctx, payload, uploader.UploadParams{Folder: folder})
	if err != nil {
		return Asset{}, err
	}
	return Asset{PublicID: res.PublicID, URL: res.SecureURL}, nil
}

func (s *Cloudinary) Destroy(ctx context.Context, publicID string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	return err
}
