package domain

import (
	"time"
)

const DateLayout = "2006-01-02"

// TruncateDate 去掉时分秒，统一为 UTC 零点
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// DateRange 是一个闭区间 [Start, End]，End 为 nil 表示没有结束日期
type DateRange struct {
	Start time.Time
	End   *time.Time
}

func NewDateRange(start time.Time, end *time.Time) DateRange {
	r := DateRange{Start: TruncateDate(start)}
	if end != nil {
		e := TruncateDate(*end)
		r.End = &e
	}
	return r
}

// Valid 要求结束日期不早于开始日期，同一天是合法的
func (r DateRange) Valid() bool {
	return r.End == nil || !r.End.Before(r.Start)
}

func (r DateRange) Unbounded() bool {
	return r.End == nil
}

// Overlaps 判断两个闭区间是否相交，首尾同一天也算相交
func (r DateRange) Overlaps(o DateRange) bool {
	if o.End != nil && r.Start.After(*o.End) {
		return false
	}
	if r.End != nil && r.End.Before(o.Start) {
		return false
	}
	return true
}

func (r DateRange) Contains(d time.Time) bool {
	d = TruncateDate(d)
	if d.Before(r.Start) {
		return false
	}
	return r.End == nil || !d.After(*r.End)
}

func (r DateRange) String() string {
	if r.End == nil {
		return r.Start.Format(DateLayout) + " ~"
	}
	return r.Start.Format(DateLayout) + " ~ " + r.End.Format(DateLayout)
}
