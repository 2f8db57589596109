package repository

import (
	"context"
	"fmt"

	"github.com/sysu-ecnc-dev/shift-assignments/backend/internal/domain"
)

func (q *Queries) GetUserByID(ctx context.Context, id domain.ID) (*domain.User, error) {
	query := `
		SELECT company_id, full_name, email, is_active, created_at
		FROM users WHERE id = $1
	`

	ctx, cancel := q.withTimeout(ctx)
	defer cancel()

	user := &domain.User{
		ID: id,
	}

	dst := []any{(*int64)(&user.CompanyID), &user.FullName, &user.Email, &user.IsActive, &user.CreatedAt}
	if err := q.db.QueryRowContext(ctx, query, int64(id)).Scan(dst...); err != nil {
		return nil, err
	}

	return user, nil
}

func (q *Queries) CreateUser(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (company_id, full_name, email)
		VALUES ($1, $2, $3)
		RETURNING id, is_active, created_at
	`

	ctx, cancel := q.withTimeout(ctx)
	defer cancel()

	args := []any{int64(user.CompanyID), user.FullName, user.Email}
	if err := q.db.QueryRowContext(ctx, query, args...).Scan((*int64)(&user.ID), &user.IsActive, &user.CreatedAt); err != nil {
		return err
	}

	return nil
}

func (q *Queries) ListCompanyWorkers(ctx context.Context, companyID domain.ID, workerIDs []domain.ID) ([]domain.ID, error) {
	if len(workerIDs) == 0 {
		return []domain.ID{}, nil
	}

	args := []any{int64(companyID)}
	in, args := inClause(args, workerIDs)
	query := fmt.Sprintf(`
		SELECT id FROM users
		WHERE company_id = $1 AND id IN (%s)
	`, in)

	ctx, cancel := q.withTimeout(ctx)
	defer cancel()

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translate(err)
	}

	ids, err := scanIDs(rows)
	return ids, translate(err)
}
