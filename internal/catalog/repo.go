package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("catalog: not found")

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) ListProducts(ctx context.Context, categoryID, storeID string) ([]Product, error) {
	q := `SELECT id, store_id, category_id, COALESCE(subcategory_id,''), name,
	             COALESCE(description,''), COALESCE(image_url,''), price, stock,
	             created_at, updated_at
	      FROM products WHERE ($1='' OR category_id=$1) AND ($2='' OR store_id=$2)
	      ORDER BY name`
	rows, err := r.DB.Query(ctx, q, categoryID, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.StoreID, &p.CategoryID, &p.SubcategoryID, &p.Name,
			&p.Description, &p.ImageURL, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) GetProduct(ctx context.Context, id string) (Product, error) {
	var p Product
	err := r.DB.QueryRow(ctx, `
		SELECT id, store_id, category_id, COALESCE(subcategory_id,''), name,
		       COALESCE(description,''), COALESCE(image_url,''), price, stock,
		       created_at, updated_at
		FROM products WHERE id=$1`, id).
		Scan(&p.ID, &p.StoreID, &p.CategoryID, &p.SubcategoryID, &p.Name,
			&p.Description, &p.ImageURL, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (r *Repo) CreateProduct(ctx context.Context, p Product) (Product, error) {
	p.ID = uuid.NewString()
	_, err := r.DB.Exec(ctx, `
		INSERT INTO products(id, store_id, category_id, subcategory_id, name, description, image_url, price, stock)
		VALUES ($1,$2,$3,NULLIF($4,''),$5,$6,$7,$8,$9)`,
		p.ID, p.StoreID, p.CategoryID, p.SubcategoryID, p.Name, p.Description, p.ImageURL, p.Price, p.Stock)
	if err != nil {
		return Product{}, fmt.Errorf("insert product: %w", err)
	}
	return p, nil
}

func (r *Repo) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) CreateCategory(ctx context.Context, name string) (Category, error) {
	c := Category{ID: uuid.NewString(), Name: name}
	_, err := r.DB.Exec(ctx, `INSERT INTO categories(id, name) VALUES ($1,$2)`, c.ID, c.Name)
	if err != nil {
		return Category{}, fmt.Errorf("insert category: %w", err)
	}
	return c, nil
}

func (r *Repo) DeleteCategory(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM categories WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) ListSubcategories(ctx context.Context, categoryID string) ([]Subcategory, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, category_id, name FROM subcategories WHERE category_id=$1 ORDER BY name`, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Subcategory
	for rows.Next() {
		var s Subcategory
		if err := rows.Scan(&s.ID, &s.CategoryID, &s.Name); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repo) CreateSubcategory(ctx context.Context, categoryID, name string) (Subcategory, error) {
	s := Subcategory{ID: uuid.NewString(), CategoryID: categoryID, Name: name}
	_, err := r.DB.Exec(ctx,
		`INSERT INTO subcategories(id, category_id, name) VALUES ($1,$2,$3)`, s.ID, s.CategoryID, s.Name)
	if err != nil {
		return Subcategory{}, fmt.Errorf("insert subcategory: %w", err)
	}
	return s, nil
}

func (r *Repo) CreateStore(ctx context.Context, st Store) (Store, error) {
	st.ID = uuid.NewString()
	_, err := r.DB.Exec(ctx,
		`INSERT INTO stores(id, owner_id, name, county_id) VALUES ($1,$2,$3,NULLIF($4,''))`,
		st.ID, st.OwnerID, st.Name, st.CountyID)
	if err != nil {
		return Store{}, fmt.Errorf("insert store: %w", err)
	}
	return st, nil
}

func (r *Repo) GetStore(ctx context.Context, id string) (Store, error) {
	var st Store
	err := r.DB.QueryRow(ctx,
		`SELECT id, owner_id, name, COALESCE(county_id,''), created_at FROM stores WHERE id=$1`, id).
		Scan(&st.ID, &st.OwnerID, &st.Name, &st.CountyID, &st.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Store{}, ErrNotFound
	}
	if err != nil {
		return Store{}, err
	}
	return st, nil
}

func (r *Repo) ListStores(ctx context.Context) ([]Store, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, owner_id, name, COALESCE(county_id,''), created_at FROM stores ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Store
	for rows.Next() {
		var st Store
		if err := rows.Scan(&st.ID, &st.OwnerID, &st.Name, &st.CountyID, &st.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// StoreDashboard aggregates the vendor-facing numbers in one round trip each.
func (r *Repo) StoreDashboard(ctx context.Context, storeID string) (Dashboard, error) {
	d := Dashboard{StoreID: storeID}

	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE store_id=$1`, storeID).
		Scan(&d.ProductCount)
	if err != nil {
		return Dashboard{}, err
	}

	err = r.DB.QueryRow(ctx, `
		SELECT COUNT(DISTINCT o.id),
		       COALESCE(SUM(oi.price * oi.qty), 0),
		       COUNT(DISTINCT o.id) FILTER (WHERE o.status = 'CREATED')
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		WHERE oi.store_id = $1`, storeID).
		Scan(&d.OrderCount, &d.TotalRevenue, &d.PendingOrders)
	if err != nil {
		return Dashboard{}, err
	}
	return d, nil
}
