package scheduling

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sysu-ecnc-dev/shift-assignments/backend/internal/domain"
)

// UpdateInput 中为 nil 的字段保持不变
type UpdateInput struct {
	StartDate    *time.Time
	EndDate      *time.Time
	ClearEndDate bool
	Status       *domain.AssignmentStatus
	Notes        *string
	RoleID       *domain.ID
}

func (in *UpdateInput) validate() error {
	if in.ClearEndDate && in.EndDate != nil {
		return invalidInput("不能同时设置和清除结束日期")
	}
	if in.Status != nil && !in.Status.Valid() {
		return invalidInput("无效的排班状态: %s", *in.Status)
	}
	if in.RoleID != nil && *in.RoleID <= 0 {
		return invalidInput("无效的角色 ID")
	}
	return nil
}

func (in *UpdateInput) apply(a *domain.ShiftAssignment) {
	if in.StartDate != nil {
		a.StartDate = domain.TruncateDate(*in.StartDate)
	}
	if in.EndDate != nil {
		end := domain.TruncateDate(*in.EndDate)
		a.EndDate = &end
	}
	if in.ClearEndDate {
		a.EndDate = nil
	}
	if in.Status != nil {
		a.Status = *in.Status
	}
	if in.Notes != nil {
		notes := *in.Notes
		a.Notes = &notes
	}
	if in.RoleID != nil {
		a.RoleID = *in.RoleID
	}
}

// ensureNoConflicts 检查 a 变为有效排班后是否与其他有效排班冲突，a 自身不参与比较
func ensureNoConflicts(ctx context.Context, q Queries, a *domain.ShiftAssignment) error {
	c, err := detect(ctx, q, []domain.ID{a.UserID}, a.ShiftID, a.Range(), a.ID)
	if err != nil {
		return err
	}
	if c.Empty() {
		return nil
	}

	msg := "员工在该日期范围内已有其他有效排班"
	if len(c.Overlapping) == 0 {
		msg = "员工已在该班次中存在有效排班"
	}
	return conflict(msg, c.Duplicates, c.Overlapping)
}

func save(ctx context.Context, q Queries, a *domain.ShiftAssignment) error {
	if err := q.UpdateAssignment(ctx, a); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &Error{Kind: KindConflict, Message: "排班已被其他请求修改，请刷新后重试", Err: err}
		}
		return fmt.Errorf("更新排班失败: %w", err)
	}
	return nil
}

// Update 修改一条排班，修改后的记录若为有效状态则必须通过冲突检测
func (s *Service) Update(ctx context.Context, id domain.ID, in UpdateInput) (*domain.ShiftAssignment, error) {
	if id <= 0 {
		return nil, invalidInput("无效的排班 ID")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	var updated *domain.ShiftAssignment
	err := s.run(ctx, "修改排班", func(q Queries) error {
		current, err := load(ctx, q, id)
		if err != nil {
			return err
		}

		next := current.Clone()
		in.apply(next)
		if !next.Range().Valid() {
			return invalidInput("结束日期不能早于开始日期")
		}

		if next.Status == domain.AssignmentStatusActive {
			if err := ensureNoConflicts(ctx, q, next); err != nil {
				return err
			}
		}

		next.UpdatedAt = s.now()
		if err := save(ctx, q, next); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ToggleStatus 在 active 和 inactive 之间切换，重新启用时同样需要通过冲突检测
func (s *Service) ToggleStatus(ctx context.Context, id domain.ID) (*domain.ShiftAssignment, error) {
	if id <= 0 {
		return nil, invalidInput("无效的排班 ID")
	}

	var toggled *domain.ShiftAssignment
	err := s.run(ctx, "切换排班状态", func(q Queries) error {
		current, err := load(ctx, q, id)
		if err != nil {
			return err
		}

		next := current.Clone()
		if current.Status == domain.AssignmentStatusActive {
			next.Status = domain.AssignmentStatusInactive
		} else {
			next.Status = domain.AssignmentStatusActive
			if err := ensureNoConflicts(ctx, q, next); err != nil {
				return err
			}
		}

		next.UpdatedAt = s.now()
		if err := save(ctx, q, next); err != nil {
			return err
		}
		toggled = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toggled, nil
}

// Delete 软删除一条排班，删除后的记录不再参与任何冲突检测
func (s *Service) Delete(ctx context.Context, id domain.ID) (*domain.ShiftAssignment, error) {
	if id <= 0 {
		return nil, invalidInput("无效的排班 ID")
	}

	var deleted *domain.ShiftAssignment
	err := s.run(ctx, "删除排班", func(q Queries) error {
		current, err := load(ctx, q, id)
		if err != nil {
			return err
		}

		now := s.now()
		next := current.Clone()
		next.Status = domain.AssignmentStatusInactive
		next.DeletedAt = &now
		next.UpdatedAt = now

		if err := q.SoftDeleteAssignment(ctx, next); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return notFound("排班不存在")
			}
			return fmt.Errorf("删除排班失败: %w", err)
		}
		deleted = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}
