package domain

import (
	"encoding/json"
)

type shiftAssignmentAlias ShiftAssignment

// MarshalJSON 把日期字段编码为 YYYY-MM-DD
func (a ShiftAssignment) MarshalJSON() ([]byte, error) {
	var endDate *string
	if a.EndDate != nil {
		s := a.EndDate.Format(DateLayout)
		endDate = &s
	}

	return json.Marshal(struct {
		shiftAssignmentAlias
		StartDate string  `json:"startDate"`
		EndDate   *string `json:"endDate"`
	}{
		shiftAssignmentAlias: shiftAssignmentAlias(a),
		StartDate:            a.StartDate.Format(DateLayout),
		EndDate:              endDate,
	})
}

func (a *ShiftAssignment) UnmarshalJSON(b []byte) error {
	aux := struct {
		*shiftAssignmentAlias
		StartDate string  `json:"startDate"`
		EndDate   *string `json:"endDate"`
	}{
		shiftAssignmentAlias: (*shiftAssignmentAlias)(a),
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}

	if aux.StartDate != "" {
		start, err := ParseDate(aux.StartDate)
		if err != nil {
			return err
		}
		a.StartDate = start
	}
	a.EndDate = nil
	if aux.EndDate != nil {
		end, err := ParseDate(*aux.EndDate)
		if err != nil {
			return err
		}
		a.EndDate = &end
	}

	return nil
}
