package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/sirupsen/logrus"

	"github.com/jodisatria/photofolio-api/internal/domain/entity"
	"github.com/jodisatria/photofolio-api/internal/domain/repository"
	"github.com/jodisatria/photofolio-api/pkg/apperror"
	"github.com/jodisatria/photofolio-api/pkg/helpers"
)

// objectPrefix is where gallery objects live inside the bucket.
const objectPrefix = "images"

// ImageService stores gallery images: the bytes go to GCS, the metadata row
// to Postgres.
type ImageService struct {
	Repo      repository.ImageRepository
	GCS       *storage.Client
	GCSBucket string
	Logger    *logrus.Logger
}

func NewImageService(repo repository.ImageRepository, gcs *storage.Client, bucket string, logger *logrus.Logger) *ImageService {
	return &ImageService{Repo: repo, GCS: gcs, GCSBucket: bucket, Logger: logger}
}

// Upload stores an image for userID. Only image/* content is accepted.
func (s *ImageService) Upload(ctx context.Context, userID string, r io.Reader, contentType string) (*entity.Image, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return nil, apperror.New("Uploaded file must be an image.", http.StatusBadRequest)
	}
	if s.GCS == nil || s.GCSBucket == "" {
		return nil, errors.New("gcs not configured")
	}

	ext := contentType[len("image/"):]
	name := fmt.Sprintf("%s-%d.%s", userID, time.Now().UnixMilli(), ext)
	objectPath := path.Join(objectPrefix, name)

	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return nil, err
	}

	img := &entity.Image{Name: name, URL: url, UploadedBy: userID}
	if err := s.Repo.Create(ctx, img); err != nil {
		return nil, err
	}
	return img, nil
}

func (s *ImageService) List(ctx context.Context) ([]*entity.Image, error) {
	return s.Repo.List(ctx)
}

// Delete removes the stored object and then the metadata row.
func (s *ImageService) Delete(ctx context.Context, id string) error {
	img, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.New("No image found with that ID", http.StatusNotFound)
		}
		return err
	}

	if s.GCS != nil && s.GCSBucket != "" {
		objectPath := path.Join(objectPrefix, img.Name)
		if err := s.GCS.Bucket(s.GCSBucket).Object(objectPath).Delete(ctx); err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
			return apperror.Wrap("Error deleting file", http.StatusInternalServerError, err)
		}
	}

	return s.Repo.Delete(ctx, id)
}
