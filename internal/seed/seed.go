package seed

import (
	"context"
	"log/slog"
	"math/rand"

	"github.com/sysu-ecnc-dev/shift-assignments/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-assignments/backend/internal/utils"
)

// Writer 由 repository.Queries 实现
type Writer interface {
	CreateUser(ctx context.Context, user *domain.User) error
	CreateShift(ctx context.Context, shift *domain.Shift) error
}

// SeedWorkers 插入 n 个随机员工，返回成功插入的数量
func SeedWorkers(ctx context.Context, w Writer, r *rand.Rand, companyID domain.ID, n int, emailDomain string) int {
	cnt := 0
	for _, user := range utils.GenerateRandomWorkers(r, companyID, n, emailDomain) {
		if err := utils.ValidateUser(user); err != nil {
			slog.Error("生成的员工不合法", slog.String("error", err.Error()))
			continue
		}

		if err := w.CreateUser(ctx, user); err != nil {
			slog.Error("无法插入员工", slog.String("email", user.Email), slog.String("error", err.Error()))
			continue
		}

		cnt++
	}

	return cnt
}

// SeedShifts 插入 n 个当天内互不相交的随机班次，返回成功插入的班次
func SeedShifts(ctx context.Context, w Writer, r *rand.Rand, companyID domain.ID, n int) []*domain.Shift {
	shifts := utils.GenerateRandomShifts(r, companyID, n)
	if err := utils.ValidateShiftsTime(shifts); err != nil {
		slog.Error("生成的班次不合法", slog.String("error", err.Error()))
		return nil
	}

	created := make([]*domain.Shift, 0, len(shifts))
	for _, shift := range shifts {
		if err := w.CreateShift(ctx, shift); err != nil {
			slog.Error("无法插入班次", slog.String("name", shift.Name), slog.String("error", err.Error()))
			continue
		}
		created = append(created, shift)
	}

	return created
}
