package repository

import (
	"context"
	"fmt"

	"github.com/nbkbattle/nbk-battle/internal/catalog"
)

// CategoryRepository reads authored categories.
type CategoryRepository struct {
	db DBTX
}

func NewCategoryRepository(db DBTX) *CategoryRepository {
	return &CategoryRepository{db: db}
}

var _ interface {
	CategoriesByIDs(ctx context.Context, ids []string) ([]catalog.Category, error)
} = (*CategoryRepository)(nil)

// CategoriesByIDs fetches the categories for the given ids.
func (r *CategoryRepository) CategoriesByIDs(ctx context.Context, ids []string) ([]catalog.Category, error) {
	const q = `
		SELECT id, name_ar, name_en,
		       COALESCE(description_ar, ''), COALESCE(description_en, ''),
		       COALESCE(image_url, '')
		FROM categories
		WHERE id = ANY($1)`

	rows, err := r.db.Query(ctx, q, ids)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var cats []catalog.Category
	for rows.Next() {
		var c catalog.Category
		if err := rows.Scan(&c.ID, &c.NameAr, &c.NameEn, &c.DescriptionAr, &c.DescriptionEn, &c.ImageURL); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// ListAll returns every category, oldest first, for the draft pool.
func (r *CategoryRepository) ListAll(ctx context.Context) ([]catalog.Category, error) {
	const q = `
		SELECT id, name_ar, name_en,
		       COALESCE(description_ar, ''), COALESCE(description_en, ''),
		       COALESCE(image_url, '')
		FROM categories
		ORDER BY created_at`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var cats []catalog.Category
	for rows.Next() {
		var c catalog.Category
		if err := rows.Scan(&c.ID, &c.NameAr, &c.NameEn, &c.DescriptionAr, &c.DescriptionEn, &c.ImageURL); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}
