package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gocomet/fleet-rides/internal/domain/user"
)

type userRepo struct{ q querier }

const userColumns = `id, name, email, role, department, created_at`

func (r *userRepo) Create(ctx context.Context, u *user.User) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO users (id, name, email, role, department, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		u.ID, u.Name, u.Email, u.Role, u.Department, u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *userRepo) FindByRoleAndDepartment(ctx context.Context, role user.Role, department string) (*user.User, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE role = $1 AND department = $2 ORDER BY created_at LIMIT 1`,
		role, department)
	return scanUser(row)
}

func (r *userRepo) FindByRole(ctx context.Context, role user.Role) (*user.User, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE role = $1 ORDER BY created_at LIMIT 1`, role)
	return scanUser(row)
}

func scanUser(row rowScanner) (*user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Department, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
