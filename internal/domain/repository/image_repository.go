package repository

import (
	"context"

	"github.com/jodisatria/photofolio-api/internal/domain/entity"
)

// ImageRepository persists gallery image records.
type ImageRepository interface {
	Create(ctx context.Context, img *entity.Image) error
	GetByID(ctx context.Context, id string) (*entity.Image, error)
	List(ctx context.Context) ([]*entity.Image, error)
	Delete(ctx context.Context, id string) error
}
