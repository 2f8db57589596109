package domain

import (
	"fmt"
	"time"
)

// Shift 是公司内的一个班次，StartTime / EndTime 只用于展示，不参与冲突检测
type Shift struct {
	ID        ID         `json:"id"`
	CompanyID ID         `json:"companyId"`
	Name      string     `json:"name"`
	StartTime string     `json:"startTime"`
	EndTime   string     `json:"endTime"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// TimeLabel 返回形如 "09:00-12:00" 的展示文本
func (s *Shift) TimeLabel() string {
	start, err1 := time.Parse("15:04:05", s.StartTime)
	end, err2 := time.Parse("15:04:05", s.EndTime)
	if err1 != nil || err2 != nil {
		return fmt.Sprintf("%s-%s", s.StartTime, s.EndTime)
	}
	return fmt.Sprintf("%s-%s", start.Format("15:04"), end.Format("15:04"))
}
