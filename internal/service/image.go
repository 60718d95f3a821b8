package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/logging"
)

// maxImageSize bounds a decoded recipe image.
const maxImageSize = 5 << 20

var imageExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// S3Storage uploads recipe images to the configured bucket
type S3Storage struct {
	s3Config *config.S3Config
}

func NewS3Storage(s3Config *config.S3Config) *S3Storage {
	return &S3Storage{s3Config: s3Config}
}

func (s *S3Storage) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	url := s.s3Config.ObjectURL(key)
	logging.Debug().Str("key", key).Int("bytes", len(data)).Msg("uploaded image to S3")
	return url, nil
}

func (s *S3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.s3Config.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.s3Config.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

// DecodedImage is an image taken from a data URI.
type DecodedImage struct {
	ContentType string
	Extension   string
	Data        []byte
}

// ObjectKey returns a fresh storage key for the image.
func (img *DecodedImage) ObjectKey() string {
	return fmt.Sprintf("recipes/%s.%s", uuid.NewString(), img.Extension)
}

// DecodeDataURI parses data:image/<type>;base64,<payload>. The declared type
// must match the decoded bytes.
func DecodeDataURI(uri string) (*DecodedImage, error) {
	header, payload, ok := strings.Cut(uri, ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return nil, newValidationError("image", "Upload a base64 encoded data URI.")
	}

	declared := strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
	ext, ok := imageExtensions[declared]
	if !ok {
		return nil, newValidationError("image", "Upload a PNG, JPEG, GIF or WebP image.")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, newValidationError("image", "The image is not valid base64.")
	}
	if len(data) == 0 || len(data) > maxImageSize {
		return nil, newValidationError("image", "The image must be between 1 byte and 5 MB.")
	}
	if detected := http.DetectContentType(data); detected != declared {
		return nil, newValidationError("image", "The image content does not match its type.")
	}

	return &DecodedImage{ContentType: declared, Extension: ext, Data: data}, nil
}
