// Package uploader stores event images in Cloudinary and hands back the
// public URL the event document persists.
package uploader

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/cloudinary/cloudinary-go/v2"
	cldUploader "github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Cloudinary service
type CloudinaryService struct {
	cld *cloudinary.Cloudinary
}

// Constructor for cloudinary service
func NewCld(cloudName, cloudKey, cloudSecret string) (*CloudinaryService, error) {
	cld, err := cloudinary.NewFromParams(cloudName, cloudKey, cloudSecret)
	if err != nil {
		return nil, err
	}
	return &CloudinaryService{cld: cld}, nil
}

// UploadImage uploads one multipart file and returns its public URL. The
// upload streams straight from the request, so there is no temporary file to
// clean up afterwards.
func (service *CloudinaryService) UploadImage(ctx context.Context, file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	resp, err := service.cld.Upload.Upload(ctx, src, cldUploader.UploadParams{})
	if err != nil {
		return "", fmt.Errorf("upload failed: %w", err)
	}

	return resp.SecureURL, nil
}
