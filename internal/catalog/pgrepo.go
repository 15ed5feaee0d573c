package catalog

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Create(ctx context.Context, p *Product) error {
	images, err := json.Marshal(p.Images)
	if err != nil {
		return errors.Wrap(err, "encode product images")
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO products (id, zh_title, en_title, zh_price, en_price, zh_desc,
		                      en_desc, link, image, images, category, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,NOW(),NOW())
	`, p.ID, p.ZhTitle, p.EnTitle, p.ZhPrice, p.EnPrice, p.ZhDesc, p.EnDesc,
		p.Link, p.Image, string(images), p.Category)
	return errors.Wrap(err, "insert product")
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Product, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, zh_title, en_title, zh_price, en_price, zh_desc, en_desc,
		       link, image, images, category, created_at, updated_at
		FROM products WHERE id=$1
	`, id)
	return scanProduct(row)
}

func (r *PGRepo) List(ctx context.Context) ([]Product, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, zh_title, en_title, zh_price, en_price, zh_desc, en_desc,
		       link, image, images, category, created_at, updated_at
		FROM products
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, errors.Wrap(rows.Err(), "list products")
}

func (r *PGRepo) Update(ctx context.Context, p *Product) error {
	images, err := json.Marshal(p.Images)
	if err != nil {
		return errors.Wrap(err, "encode product images")
	}
	_, err = r.db.Exec(ctx, `
		UPDATE products
		SET zh_title=$2, en_title=$3, zh_price=$4, en_price=$5, zh_desc=$6,
		    en_desc=$7, link=$8, image=$9, images=$10, category=$11, updated_at=NOW()
		WHERE id=$1
	`, p.ID, p.ZhTitle, p.EnTitle, p.ZhPrice, p.EnPrice, p.ZhDesc, p.EnDesc,
		p.Link, p.Image, string(images), p.Category)
	return errors.Wrap(err, "update product")
}

func (r *PGRepo) Delete(ctx context.Context, id string) (bool, error) {
	cmd, err := r.db.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return false, errors.Wrap(err, "delete product")
	}
	return cmd.RowsAffected() > 0, nil
}

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	var images string
	err := row.Scan(&p.ID, &p.ZhTitle, &p.EnTitle, &p.ZhPrice, &p.EnPrice,
		&p.ZhDesc, &p.EnDesc, &p.Link, &p.Image, &images, &p.Category,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "scan product")
	}
	if images != "" {
		if err := json.Unmarshal([]byte(images), &p.Images); err != nil {
			p.Images = nil
		}
	}
	return &p, nil
}
