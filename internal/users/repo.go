package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sokofresh/soko-api/internal/auth"
)

var (
	ErrNotFound   = errors.New("users: not found")
	ErrEmailTaken = errors.New("users: email already registered")
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         auth.Role `json:"role"`
	IsVerified   bool      `json:"is_verified"`
	Phone        string    `json:"phone,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type Driver struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	CountyID  string    `json:"county_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Create(ctx context.Context, email, passwordHash string, role auth.Role) (User, error) {
	var exists bool
	if err := r.DB.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email=$1)`, email).Scan(&exists); err != nil {
		return User{}, err
	}
	if exists {
		return User{}, ErrEmailTaken
	}

	u := User{ID: uuid.NewString(), Email: email, PasswordHash: passwordHash, Role: role}
	_, err := r.DB.Exec(ctx, `
		INSERT INTO users(id, email, password_hash, role, is_verified)
		VALUES ($1,$2,$3,$4,false)`, u.ID, u.Email, u.PasswordHash, string(u.Role))
	if err != nil {
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.getOne(ctx, `WHERE email=$1`, email)
}

func (r *Repo) Get(ctx context.Context, id string) (User, error) {
	return r.getOne(ctx, `WHERE id=$1`, id)
}

func (r *Repo) getOne(ctx context.Context, where string, arg any) (User, error) {
	var u User
	var role string
	err := r.DB.QueryRow(ctx, `
		SELECT id, email, password_hash, role, is_verified, COALESCE(phone,''), created_at
		FROM users `+where, arg).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &u.IsVerified, &u.Phone, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	u.Role = auth.Role(role)
	return u, nil
}

func (r *Repo) List(ctx context.Context) ([]User, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, email, password_hash, role, is_verified, COALESCE(phone,''), created_at
		FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		var role string
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &u.IsVerified, &u.Phone, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.Role = auth.Role(role)
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *Repo) UpdateRole(ctx context.Context, id string, role auth.Role) error {
	ct, err := r.DB.Exec(ctx, `UPDATE users SET role=$2 WHERE id=$1`, id, string(role))
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) SetPassword(ctx context.Context, id, passwordHash string) error {
	ct, err := r.DB.Exec(ctx, `UPDATE users SET password_hash=$2 WHERE id=$1`, id, passwordHash)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) MarkVerified(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `UPDATE users SET is_verified=true WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) CreateDriver(ctx context.Context, d Driver) (Driver, error) {
	d.ID = uuid.NewString()
	_, err := r.DB.Exec(ctx, `
		INSERT INTO drivers(id, user_id, name, phone, county_id)
		VALUES ($1,$2,$3,$4,NULLIF($5,''))`,
		d.ID, d.UserID, d.Name, d.Phone, d.CountyID)
	if err != nil {
		return Driver{}, fmt.Errorf("insert driver: %w", err)
	}
	return d, nil
}

func (r *Repo) ListDrivers(ctx context.Context) ([]Driver, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, user_id, name, phone, COALESCE(county_id,''), created_at
		FROM drivers ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Driver
	for rows.Next() {
		var d Driver
		if err := rows.Scan(&d.ID, &d.UserID, &d.Name, &d.Phone, &d.CountyID, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
