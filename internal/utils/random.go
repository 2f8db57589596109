package utils

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/shift-assignments/backend/internal/domain"
)

var surnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}

var givenNameChars = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "霞", "飞", "玲", "超",
	"华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌", "庆",
}

// WorkerName 是随机生成的员工姓名，姓和名分开保存，生成邮箱时两者的写法不同
type WorkerName struct {
	Surname string
	Given   string
}

func (n WorkerName) String() string {
	return n.Surname + n.Given
}

// RandomWorkerName 生成单字姓加一到两个字的名
func RandomWorkerName(r *rand.Rand) WorkerName {
	given := make([]string, r.Intn(2)+1)
	for i := range given {
		given[i] = givenNameChars[r.Intn(len(givenNameChars))]
	}
	return WorkerName{
		Surname: surnames[r.Intn(len(surnames))],
		Given:   strings.Join(given, ""),
	}
}

// WorkerMailbox 返回邮箱的本地部分，姓取完整拼音，名取拼音首字母，如 张伟明 -> zhang.wm
func WorkerMailbox(name WorkerName) string {
	surname := pinyin.LazyPinyin(name.Surname, pinyin.NewArgs())
	initials := pinyin.LazyPinyin(name.Given, pinyin.Args{Style: pinyin.FirstLetter})
	return strings.Join(surname, "") + "." + strings.Join(initials, "")
}

// GenerateRandomWorkers 生成 n 个在职员工，重名时在邮箱后面加序号保证邮箱唯一
func GenerateRandomWorkers(r *rand.Rand, companyID domain.ID, n int, emailDomain string) []*domain.User {
	taken := make(map[string]int, n)
	workers := make([]*domain.User, 0, n)

	for range n {
		name := RandomWorkerName(r)
		local := WorkerMailbox(name)
		if cnt := taken[local]; cnt > 0 {
			taken[local]++
			local = fmt.Sprintf("%s%d", local, cnt+1)
		} else {
			taken[local] = 1
		}

		workers = append(workers, &domain.User{
			CompanyID: companyID,
			FullName:  name.String(),
			Email:     local + "@" + emailDomain,
			IsActive:  true,
		})
	}

	return workers
}

var shiftNames = []string{"早班", "中班", "午班", "晚班", "夜班", "值班"}

// GenerateRandomShifts 把一天平均分成 n 段，每段生成一个班次，保证班次之间时间不相交
func GenerateRandomShifts(r *rand.Rand, companyID domain.ID, n int) []*domain.Shift {
	if n <= 0 {
		return nil
	}
	n = min(n, 24)

	shifts := make([]*domain.Shift, n)
	hoursPerShift := 24 / n

	for i := range shifts {
		startHour := i * hoursPerShift
		endHour := startHour + r.Intn(hoursPerShift)

		shifts[i] = &domain.Shift{
			CompanyID: companyID,
			Name:      fmt.Sprintf("%s%02d", shiftNames[i%len(shiftNames)], i+1),
			StartTime: fmt.Sprintf("%02d:%02d:00", startHour, r.Intn(30)),
			EndTime:   fmt.Sprintf("%02d:%02d:00", endHour, 30+r.Intn(30)),
		}
	}

	return shifts
}
