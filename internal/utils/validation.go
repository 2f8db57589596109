package utils

import (
	"fmt"
	"net/mail"
	"time"

	"github.com/sysu-ecnc-dev/shift-assignments/backend/internal/domain"
)

const timeOfDayLayout = "15:04:05"

func ValidateShiftTime(shift *domain.Shift) error {
	startTime, err := time.Parse(timeOfDayLayout, shift.StartTime)
	if err != nil {
		return fmt.Errorf("班次 %s 的开始时间格式错误", shift.Name)
	}
	endTime, err := time.Parse(timeOfDayLayout, shift.EndTime)
	if err != nil {
		return fmt.Errorf("班次 %s 的结束时间格式错误", shift.Name)
	}
	if !endTime.After(startTime) {
		return fmt.Errorf("班次 %s 的结束时间必须晚于开始时间", shift.Name)
	}
	return nil
}

// ValidateShiftsTime 检查每个班次的时间，以及同一批班次之间的时间是否冲突
func ValidateShiftsTime(shifts []*domain.Shift) error {
	for _, shift := range shifts {
		if err := ValidateShiftTime(shift); err != nil {
			return err
		}
	}

	for i := 0; i < len(shifts); i++ {
		iStartTime, _ := time.Parse(timeOfDayLayout, shifts[i].StartTime)
		iEndTime, _ := time.Parse(timeOfDayLayout, shifts[i].EndTime)

		for j := i + 1; j < len(shifts); j++ {
			jStartTime, _ := time.Parse(timeOfDayLayout, shifts[j].StartTime)
			jEndTime, _ := time.Parse(timeOfDayLayout, shifts[j].EndTime)

			if jStartTime.Before(iEndTime) && iStartTime.Before(jEndTime) {
				return fmt.Errorf("班次 %s 和班次 %s 之间的时间冲突", shifts[i].Name, shifts[j].Name)
			}
		}
	}
	return nil
}

func ValidateUser(user *domain.User) error {
	if user.FullName == "" {
		return fmt.Errorf("员工姓名不能为空")
	}
	if _, err := mail.ParseAddress(user.Email); err != nil {
		return fmt.Errorf("员工 %s 的邮箱 %q 格式错误", user.FullName, user.Email)
	}
	return nil
}
