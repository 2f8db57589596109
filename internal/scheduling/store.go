package scheduling

import (
	"context"

	"github.com/sysu-ecnc-dev/shift-assignments/backend/internal/domain"
)

// Store 提供可串行化事务
type Store interface {
	// InTx 在 SERIALIZABLE 隔离级别的事务中执行 fn，fn 返回错误时回滚
	InTx(ctx context.Context, fn func(q Queries) error) error
}

// Queries 是事务内可用的查询，记录不存在时返回 sql.ErrNoRows
type Queries interface {
	GetShift(ctx context.Context, id domain.ID) (*domain.Shift, error)
	GetAssignment(ctx context.Context, id domain.ID) (*domain.ShiftAssignment, error)

	// ListCompanyWorkers 返回 workerIDs 中存在且属于该公司的员工
	ListCompanyWorkers(ctx context.Context, companyID domain.ID, workerIDs []domain.ID) ([]domain.ID, error)
	// ListActiveWorkersOnShift 返回 workerIDs 中在该班次已有有效排班的员工
	ListActiveWorkersOnShift(ctx context.Context, shiftID domain.ID, workerIDs []domain.ID, excludeID domain.ID) ([]domain.ID, error)
	// ListOverlappingWorkers 返回 workerIDs 中在任意班次上有与 r 相交的有效排班的员工
	ListOverlappingWorkers(ctx context.Context, workerIDs []domain.ID, r domain.DateRange, excludeID domain.ID) ([]domain.ID, error)

	InsertAssignments(ctx context.Context, assignments []*domain.ShiftAssignment) error
	UpdateAssignment(ctx context.Context, a *domain.ShiftAssignment) error
	SoftDeleteAssignment(ctx context.Context, a *domain.ShiftAssignment) error

	ListAssignments(ctx context.Context, filter domain.AssignmentFilter) ([]*domain.ShiftAssignment, int64, error)
}
