package repository

import (
	"context"

	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/core/domain"
)

func (r *SQLRepository) CreateAccount(ctx context.Context, account domain.Account) error {
	return r.run(func() error {
		_, err := r.db.ExecContext(ctx,
			"INSERT INTO accounts (username, password_hash, role, created_at) VALUES ($1, $2, $3, $4)",
			account.Username,
			account.PasswordHash,
			account.Role,
			account.CreatedAt,
		)
		if isUniqueViolation(err, "") {
			return domain.ErrDuplicateUsername
		}
		return err
	})
}

func (r *SQLRepository) FindAccount(ctx context.Context, username string) (*domain.Account, error) {
	var account domain.Account
	err := r.run(func() error {
		return notFound(r.db.QueryRowContext(ctx,
			"SELECT username, password_hash, role, created_at FROM accounts WHERE username = $1",
			username,
		).Scan(&account.Username, &account.PasswordHash, &account.Role, &account.CreatedAt))
	})
	if err != nil {
		return nil, err
	}
	return &account, nil
}
