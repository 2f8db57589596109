package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/shift-assignments/backend/internal/domain"
)

const (
	constraintNoOverlap      = "shift_assignments_no_overlap"
	constraintActiveShiftKey = "shift_assignments_active_shift_user_key"
	constraintDateOrder      = "shift_assignments_date_order_check"
)

// translate 把 PostgreSQL 的约束错误转换为 domain 中定义的错误，其他错误原样返回
func translate(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case "23P01": // exclusion_violation
		return fmt.Errorf("%w: %w", domain.ErrOverlapViolation, err)
	case "23505": // unique_violation
		if pgErr.ConstraintName == constraintActiveShiftKey {
			return fmt.Errorf("%w: %w", domain.ErrDuplicateViolation, err)
		}
	case "23503": // foreign_key_violation
		return fmt.Errorf("%w: %w", domain.ErrUnknownReference, err)
	case "23514": // check_violation
		if pgErr.ConstraintName == constraintDateOrder {
			return fmt.Errorf("%w: %w", domain.ErrInvalidRangeViolation, err)
		}
	case "40001", "40P01": // serialization_failure, deadlock_detected
		return fmt.Errorf("%w: %w", domain.ErrSerializationFailure, err)
	}

	return err
}
