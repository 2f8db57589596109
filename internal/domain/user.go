package domain

import (
	"time"
)

// User 是被排班的员工
type User struct {
	ID        ID        `json:"id"`
	CompanyID ID        `json:"companyId"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}
