package domain

type PlanOutcome string

const (
	PlanOutcomeFullyRejected    PlanOutcome = "fully_rejected"
	PlanOutcomePartiallyCreated PlanOutcome = "partially_created"
	PlanOutcomeFullyCreated     PlanOutcome = "fully_created"
)

// PlanResult 是一次批量排班的结果
//
// 三种结果共用同一个结构：全部被拒绝时 Created 为 0 且没有写入任何数据，
// DuplicateWorkerIDs 和 OverlappingWorkerIDs 说明了每个员工被跳过的原因。
type PlanResult struct {
	Outcome              PlanOutcome        `json:"outcome"`
	Created              int                `json:"created"`
	Skipped              int                `json:"skipped"`
	DuplicateWorkerIDs   []ID               `json:"duplicateWorkerIds"`
	OverlappingWorkerIDs []ID               `json:"overlappingWorkerIds"`
	Assignments          []*ShiftAssignment `json:"assignments"`
	DryRun               bool               `json:"dryRun,omitempty"`
}

func OutcomeOf(created, skipped int) PlanOutcome {
	switch {
	case created == 0:
		return PlanOutcomeFullyRejected
	case skipped > 0:
		return PlanOutcomePartiallyCreated
	default:
		return PlanOutcomeFullyCreated
	}
}
