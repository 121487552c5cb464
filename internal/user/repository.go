package user

import (
	"context"
	"database/sql"
	"errors"

	"carexyz/internal/db"

	"github.com/jmoiron/sqlx"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already registered")
	ErrNIDExists    = errors.New("NID already registered")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, u User) (*User, error) {
	query := `
		INSERT INTO users (nid_no, name, email, contact, password_hash, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, nid_no, name, email, contact, password_hash, role, created_at
	`

	var created User
	err := r.db.GetContext(ctx, &created, query, u.NIDNo, u.Name, u.Email, u.Contact, u.PasswordHash, u.Role)
	if err != nil {
		switch {
		case db.IsUniqueViolation(err, "users_email_key"):
			return nil, ErrEmailExists
		case db.IsUniqueViolation(err, "users_nid_no_key"):
			return nil, ErrNIDExists
		}
		return nil, err
	}

	return &created, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, nid_no, name, email, contact, password_hash, role, created_at
		FROM users
		WHERE email = $1
	`

	return r.findOne(ctx, query, email)
}

func (r *repository) FindByID(ctx context.Context, id int) (*User, error) {
	query := `
		SELECT id, nid_no, name, email, contact, password_hash, role, created_at
		FROM users
		WHERE id = $1
	`

	return r.findOne(ctx, query, id)
}

func (r *repository) EmailExists(ctx context.Context, email string) (bool, error) {
	return db.Exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email)
}

func (r *repository) NIDExists(ctx context.Context, nidNo string) (bool, error) {
	return db.Exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM users WHERE nid_no = $1)`, nidNo)
}

func (r *repository) UpdateProfile(ctx context.Context, id int, name, contact string) (*User, error) {
	query := `
		UPDATE users
		SET name = $2, contact = $3
		WHERE id = $1
		RETURNING id, nid_no, name, email, contact, password_hash, role, created_at
	`

	return r.findOne(ctx, query, id, name, contact)
}

func (r *repository) findOne(ctx context.Context, query string, args ...interface{}) (*User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
