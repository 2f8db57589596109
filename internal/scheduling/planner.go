package scheduling

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sysu-ecnc-dev/shift-assignments/backend/internal/domain"
)

type PlanInput struct {
	CompanyID domain.ID
	ShiftID   domain.ID
	WorkerIDs []domain.ID
	RoleID    domain.ID
	StartDate time.Time
	EndDate   *time.Time
	Notes     *string
}

func (in *PlanInput) validate() (domain.DateRange, []domain.ID, error) {
	switch {
	case in.CompanyID <= 0:
		return domain.DateRange{}, nil, invalidInput("缺少公司 ID")
	case in.ShiftID <= 0:
		return domain.DateRange{}, nil, invalidInput("缺少班次 ID")
	case in.RoleID <= 0:
		return domain.DateRange{}, nil, invalidInput("缺少角色 ID")
	case in.StartDate.IsZero():
		return domain.DateRange{}, nil, invalidInput("缺少开始日期")
	case len(in.WorkerIDs) == 0:
		return domain.DateRange{}, nil, invalidInput("至少需要指定一名员工")
	}

	for _, id := range in.WorkerIDs {
		if id <= 0 {
			return domain.DateRange{}, nil, invalidInput("无效的员工 ID: %d", id)
		}
	}

	r := domain.NewDateRange(in.StartDate, in.EndDate)
	if !r.Valid() {
		return domain.DateRange{}, nil, invalidInput("结束日期不能早于开始日期")
	}

	return r, dedupe(in.WorkerIDs), nil
}

// Plan 为一批员工创建同一班次、同一日期范围的排班
//
// 存在冲突的员工会被跳过，其余员工在同一个事务中全部写入；
// 如果所有员工都存在冲突，则不写入任何数据并返回 fully_rejected。
func (s *Service) Plan(ctx context.Context, in PlanInput) (*domain.PlanResult, error) {
	return s.plan(ctx, in, false)
}

// Preview 执行与 Plan 相同的校验和冲突检测，但不写入数据
func (s *Service) Preview(ctx context.Context, in PlanInput) (*domain.PlanResult, error) {
	return s.plan(ctx, in, true)
}

func (s *Service) plan(ctx context.Context, in PlanInput, dryRun bool) (*domain.PlanResult, error) {
	r, workerIDs, err := in.validate()
	if err != nil {
		return nil, err
	}

	var result *domain.PlanResult
	err = s.run(ctx, "批量排班", func(q Queries) error {
		shift, err := q.GetShift(ctx, in.ShiftID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return notFound("班次不存在")
			}
			return err
		}
		// 其他公司的班次对调用方不可见
		if shift.CompanyID != in.CompanyID || shift.DeletedAt != nil {
			return notFound("班次不存在")
		}

		// 未知员工会让整批写入因外键失败，提前拒绝并指出是哪些员工
		missing, err := missingWorkers(ctx, q, in.CompanyID, workerIDs)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			return unknownWorkers(missing)
		}

		c, err := detect(ctx, q, workerIDs, in.ShiftID, r, 0)
		if err != nil {
			return err
		}
		blocked := c.blocked()

		now := s.now()
		assignments := make([]*domain.ShiftAssignment, 0, len(workerIDs))
		for _, workerID := range workerIDs {
			if _, ok := blocked[workerID]; ok {
				continue
			}
			a := &domain.ShiftAssignment{
				ShiftID:   in.ShiftID,
				UserID:    workerID,
				RoleID:    in.RoleID,
				StartDate: r.Start,
				EndDate:   r.End,
				Status:    domain.AssignmentStatusActive,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if in.Notes != nil {
				notes := *in.Notes
				a.Notes = &notes
			}
			assignments = append(assignments, a)
		}

		result = &domain.PlanResult{
			Outcome:              domain.OutcomeOf(len(assignments), len(blocked)),
			Created:              len(assignments),
			Skipped:              len(blocked),
			DuplicateWorkerIDs:   c.Duplicates,
			OverlappingWorkerIDs: c.Overlapping,
			Assignments:          assignments,
			DryRun:               dryRun,
		}

		if dryRun {
			result.Assignments = []*domain.ShiftAssignment{}
			return nil
		}
		if len(assignments) == 0 {
			return nil
		}

		if err := q.InsertAssignments(ctx, assignments); err != nil {
			return fmt.Errorf("写入排班失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !dryRun {
		recordPlan(result.Created, result.Skipped, result.DuplicateWorkerIDs, result.OverlappingWorkerIDs)
	}

	return result, nil
}
