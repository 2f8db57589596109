package handler

type ContextKey string

var (
	CompanyIDCtx       ContextKey = "companyID"
	ShiftIDCtx         ContextKey = "shiftID"
	ShiftAssignmentCtx ContextKey = "shiftAssignment"
)
