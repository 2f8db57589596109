package scheduling

import (
	"context"
	"fmt"
	"slices"

	"github.com/sysu-ecnc-dev/shift-assignments/backend/internal/domain"
)

// Conflicts 是冲突检测的结果，同一个员工可能同时出现在两个集合中
type Conflicts struct {
	// 在该班次上已有有效排班的员工，不论日期
	Duplicates []domain.ID `json:"duplicateWorkerIds"`
	// 在任意班次上已有日期相交的有效排班的员工
	Overlapping []domain.ID `json:"overlappingWorkerIds"`
}

func (c *Conflicts) Empty() bool {
	return len(c.Duplicates) == 0 && len(c.Overlapping) == 0
}

func (c *Conflicts) blocked() map[domain.ID]struct{} {
	blocked := make(map[domain.ID]struct{}, len(c.Duplicates)+len(c.Overlapping))
	for _, id := range c.Duplicates {
		blocked[id] = struct{}{}
	}
	for _, id := range c.Overlapping {
		blocked[id] = struct{}{}
	}
	return blocked
}

func detect(ctx context.Context, q Queries, workerIDs []domain.ID, shiftID domain.ID, r domain.DateRange, excludeID domain.ID) (*Conflicts, error) {
	duplicates, err := q.ListActiveWorkersOnShift(ctx, shiftID, workerIDs, excludeID)
	if err != nil {
		return nil, fmt.Errorf("查询班次内的重复排班失败: %w", err)
	}

	overlapping, err := q.ListOverlappingWorkers(ctx, workerIDs, r, excludeID)
	if err != nil {
		return nil, fmt.Errorf("查询日期重叠的排班失败: %w", err)
	}

	return &Conflicts{
		Duplicates:  sortedUnique(duplicates),
		Overlapping: sortedUnique(overlapping),
	}, nil
}

// FindConflicts 找出 workerIDs 中无法在 r 范围内被安排到 shiftID 的员工
func (s *Service) FindConflicts(ctx context.Context, workerIDs []domain.ID, shiftID domain.ID, r domain.DateRange) (*Conflicts, error) {
	if shiftID <= 0 {
		return nil, invalidInput("无效的班次 ID")
	}
	if r.Start.IsZero() {
		return nil, invalidInput("缺少开始日期")
	}
	if !r.Valid() {
		return nil, invalidInput("结束日期不能早于开始日期")
	}
	workerIDs = dedupe(workerIDs)
	if len(workerIDs) == 0 {
		return &Conflicts{Duplicates: []domain.ID{}, Overlapping: []domain.ID{}}, nil
	}

	var c *Conflicts
	err := s.run(ctx, "冲突检测", func(q Queries) error {
		var err error
		c, err = detect(ctx, q, workerIDs, shiftID, r, 0)
		return err
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func missingWorkers(ctx context.Context, q Queries, companyID domain.ID, workerIDs []domain.ID) ([]domain.ID, error) {
	known, err := q.ListCompanyWorkers(ctx, companyID, workerIDs)
	if err != nil {
		return nil, err
	}

	missing := make([]domain.ID, 0)
	for _, id := range workerIDs {
		if !slices.Contains(known, id) {
			missing = append(missing, id)
		}
	}
	return sortedUnique(missing), nil
}

// dedupe 去掉重复的 ID，保留第一次出现的顺序
func dedupe(ids []domain.ID) []domain.ID {
	seen := make(map[domain.ID]struct{}, len(ids))
	out := make([]domain.ID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func sortedUnique(ids []domain.ID) []domain.ID {
	out := append([]domain.ID{}, ids...)
	slices.Sort(out)
	return slices.Compact(out)
}
