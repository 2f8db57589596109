package domain

import "time"

type AssignmentEventType string

const (
	AssignmentCreated AssignmentEventType = "assignment_created"
	AssignmentUpdated AssignmentEventType = "assignment_updated"
	AssignmentToggled AssignmentEventType = "assignment_toggled"
	AssignmentDeleted AssignmentEventType = "assignment_deleted"
)

// AssignmentEvent 在排班写入提交之后发送到消息队列，由 notifier 转成邮件
type AssignmentEvent struct {
	Type       AssignmentEventType `json:"type"`
	Assignment *ShiftAssignment    `json:"assignment"`
	OccurredAt time.Time           `json:"occurredAt"`
}

// AssignmentMailData 是排班通知邮件模板的数据
type AssignmentMailData struct {
	Summary   string
	FullName  string
	ShiftName string
	ShiftTime string
	StartDate string
	EndDate   string
	Status    string
	Notes     string
}
