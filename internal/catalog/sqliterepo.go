package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type SQLiteRepo struct{ db *sqlx.DB }

func NewSQLiteRepo(db *sqlx.DB) *SQLiteRepo { return &SQLiteRepo{db: db} }

type productRow struct {
	ID        string `db:"id"`
	ZhTitle   string `db:"zh_title"`
	EnTitle   string `db:"en_title"`
	ZhPrice   string `db:"zh_price"`
	EnPrice   string `db:"en_price"`
	ZhDesc    string `db:"zh_desc"`
	EnDesc    string `db:"en_desc"`
	Link      string `db:"link"`
	Image     string `db:"image"`
	Images    string `db:"images"`
	Category  string `db:"category"`
	CreatedAt string `db:"created_at"`
	UpdatedAt string `db:"updated_at"`
}

func (r productRow) product() Product {
	p := Product{
		ID:       r.ID,
		ZhTitle:  r.ZhTitle,
		EnTitle:  r.EnTitle,
		ZhPrice:  r.ZhPrice,
		EnPrice:  r.EnPrice,
		ZhDesc:   r.ZhDesc,
		EnDesc:   r.EnDesc,
		Link:     r.Link,
		Image:    r.Image,
		Category: r.Category,
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339Nano, r.CreatedAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339Nano, r.UpdatedAt)
	if r.Images != "" {
		_ = json.Unmarshal([]byte(r.Images), &p.Images)
	}
	return p
}

func (r *SQLiteRepo) Create(ctx context.Context, p *Product) error {
	images, err := json.Marshal(p.Images)
	if err != nil {
		return errors.Wrap(err, "encode product images")
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = r.db.ExecContext(ctx, `
	  INSERT INTO products (id, zh_title, en_title, zh_price, en_price, zh_desc,
	                        en_desc, link, image, images, category, created_at, updated_at)
	  VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)
	`, p.ID, p.ZhTitle, p.EnTitle, p.ZhPrice, p.EnPrice, p.ZhDesc, p.EnDesc,
		p.Link, p.Image, string(images), p.Category, now, now)
	return errors.Wrap(err, "insert product")
}

func (r *SQLiteRepo) GetByID(ctx context.Context, id string) (*Product, error) {
	var row productRow
	err := r.db.GetContext(ctx, &row, `
	  SELECT id, zh_title, en_title, zh_price, en_price, zh_desc, en_desc,
	         link, image, images, category, created_at, updated_at
	  FROM products WHERE id = ?
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "get product")
	}
	p := row.product()
	return &p, nil
}

func (r *SQLiteRepo) List(ctx context.Context) ([]Product, error) {
	var rows []productRow
	err := r.db.SelectContext(ctx, &rows, `
	  SELECT id, zh_title, en_title, zh_price, en_price, zh_desc, en_desc,
	         link, image, images, category, created_at, updated_at
	  FROM products
	  ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	var out []Product
	for _, row := range rows {
		out = append(out, row.product())
	}
	return out, nil
}

func (r *SQLiteRepo) Update(ctx context.Context, p *Product) error {
	images, err := json.Marshal(p.Images)
	if err != nil {
		return errors.Wrap(err, "encode product images")
	}
	_, err = r.db.ExecContext(ctx, `
	  UPDATE products
	  SET zh_title=?, en_title=?, zh_price=?, en_price=?, zh_desc=?,
	      en_desc=?, link=?, image=?, images=?, category=?, updated_at=?
	  WHERE id=?
	`, p.ZhTitle, p.EnTitle, p.ZhPrice, p.EnPrice, p.ZhDesc, p.EnDesc,
		p.Link, p.Image, string(images), p.Category,
		time.Now().UTC().Format(time.RFC3339Nano), p.ID)
	return errors.Wrap(err, "update product")
}

func (r *SQLiteRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return false, errors.Wrap(err, "delete product")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "delete product")
	}
	return n > 0, nil
}
