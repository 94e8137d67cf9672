package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jodisatria/photofolio-api/internal/domain/entity"
	"github.com/jodisatria/photofolio-api/internal/domain/repository"
)

type ImageRepository struct {
	pool *pgxpool.Pool
}

func NewImageRepository(pool *pgxpool.Pool) *ImageRepository {
	return &ImageRepository{pool: pool}
}

func (r *ImageRepository) Create(ctx context.Context, img *entity.Image) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO images (name, url, uploaded_by)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, img.Name, img.URL, img.UploadedBy)
	return row.Scan(&img.ID, &img.CreatedAt)
}

func (r *ImageRepository) GetByID(ctx context.Context, id string) (*entity.Image, error) {
	img := &entity.Image{}
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, url, uploaded_by, created_at
		FROM images
		WHERE id = $1
	`, id)
	if err := row.Scan(&img.ID, &img.Name, &img.URL, &img.UploadedBy, &img.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return img, nil
}

func (r *ImageRepository) List(ctx context.Context) ([]*entity.Image, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, url, uploaded_by, created_at
		FROM images
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []*entity.Image
	for rows.Next() {
		img := &entity.Image{}
		if err := rows.Scan(&img.ID, &img.Name, &img.URL, &img.UploadedBy, &img.CreatedAt); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

func (r *ImageRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM images WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.ImageRepository = (*ImageRepository)(nil)
