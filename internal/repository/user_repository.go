package repository

import (
	"context"

	"github.com/spec-kit/credit-service/internal/domain"
)

// UserRepository defines persistence access for card holders.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type userRepository struct {
	db DBTX
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, password_hash, full_name, income, another_loans, birth_date, sex,
            document_verified, face_verified, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (email, password_hash, full_name, income, another_loans, birth_date, sex,
            document_verified, face_verified)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		user.Email,
		user.PasswordHash,
		user.FullName,
		user.Income,
		user.AnotherLoans,
		user.BirthDate,
		sexValue(user.Sex),
		user.DocumentVerified,
		user.FaceVerified,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	return translate(err)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET full_name=$1, income=$2, another_loans=$3, birth_date=$4, sex=$5,
            document_verified=$6, face_verified=$7, updated_at=NOW()
        WHERE id=$8
        RETURNING updated_at`

	err := r.db.QueryRow(ctx, query,
		user.FullName,
		user.Income,
		user.AnotherLoans,
		user.BirthDate,
		sexValue(user.Sex),
		user.DocumentVerified,
		user.FaceVerified,
		user.ID,
	).Scan(&user.UpdatedAt)
	return translate(err)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.scanOne(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.scanOne(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email)
}

func (r *userRepository) scanOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var (
		user domain.User
		sex  *string
	)
	if err := r.db.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FullName,
		&user.Income,
		&user.AnotherLoans,
		&user.BirthDate,
		&sex,
		&user.DocumentVerified,
		&user.FaceVerified,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, translate(err)
	}
	if sex != nil {
		s := domain.Sex(*sex)
		user.Sex = &s
	}
	return &user, nil
}

func sexValue(s *domain.Sex) *string {
	if s == nil {
		return nil
	}
	v := string(*s)
	return &v
}
