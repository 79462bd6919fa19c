package repository

import (
	"context"
	"database/sql"
	"fmt"

	"busenjoyer/internal/database"
	"busenjoyer/internal/models"
)

type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `user_id, phone, email, password_hash, first_name, surname, is_partner, registered_at, is_active`

func (r *UserRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	user := &models.User{}
	query := `SELECT ` + userColumns + ` FROM users WHERE phone = $1`

	err := r.db.QueryRowContext(ctx, query, phone).Scan(
		&user.UserID,
		&user.Phone,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.Surname,
		&user.IsPartner,
		&user.RegisteredAt,
		&user.IsActive,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return user, err
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (phone, email, password_hash, first_name, surname, is_partner)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING user_id, registered_at, is_active`

	err := r.db.QueryRowContext(ctx, query,
		user.Phone,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.Surname,
		user.IsPartner,
	).Scan(&user.UserID, &user.RegisteredAt, &user.IsActive)

	return mapConstraintError(err)
}

// CreatePartner registers the partner user, the company and the link between
// them in one transaction. A failure anywhere leaves nothing behind.
func (r *UserRepository) CreatePartner(ctx context.Context, user *models.User, company *models.Company) error {
	return r.db.WithinTx(ctx, func(tx *sql.Tx) error {
		userQuery := `
			INSERT INTO users (phone, email, password_hash, first_name, surname, is_partner)
			VALUES ($1, $2, $3, $4, $5, TRUE)
			RETURNING user_id, registered_at, is_active`

		err := tx.QueryRowContext(ctx, userQuery,
			user.Phone,
			user.Email,
			user.PasswordHash,
			user.FirstName,
			user.Surname,
		).Scan(&user.UserID, &user.RegisteredAt, &user.IsActive)
		if err != nil {
			return mapConstraintError(err)
		}
		user.IsPartner = true

		companyQuery := `INSERT INTO companies (name, slug) VALUES ($1, $2) RETURNING id`
		if err := tx.QueryRowContext(ctx, companyQuery, company.Name, company.Slug).Scan(&company.ID); err != nil {
			return mapConstraintError(err)
		}

		linkQuery := `INSERT INTO partners (user_id, company_id) VALUES ($1, $2)`
		if _, err := tx.ExecContext(ctx, linkQuery, user.UserID, company.ID); err != nil {
			return fmt.Errorf("failed to link partner: %w", err)
		}

		return nil
	})
}

// GetCompanyByUserID resolves the company a partner user manages.
func (r *UserRepository) GetCompanyByUserID(ctx context.Context, userID int64) (*models.Company, error) {
	company := &models.Company{}
	query := `
		SELECT c.id, c.name, c.slug
		FROM companies c
		JOIN partners p ON p.company_id = c.id
		WHERE p.user_id = $1`

	err := r.db.QueryRowContext(ctx, query, userID).Scan(&company.ID, &company.Name, &company.Slug)
	if err == sql.ErrNoRows {
		return nil, nil
	}

	return company, err
}
