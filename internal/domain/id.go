package domain

import (
	"bytes"
	"fmt"
	"strconv"
)

// ID 是数据库中的 64 位主键
//
// JSON 中统一编码为十进制字符串，避免 JavaScript 等客户端在超过 2^53 时丢失精度；
// 解码时同时接受字符串和数字，且不经过浮点数转换。
type ID int64

func ParseID(s string) (ID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("无效的 ID: %q", s)
	}
	return ID(v), nil
}

func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

func (id ID) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(id.String())), nil
}

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}

	s := string(b)
	if len(b) >= 2 && b[0] == '"' && b[len(b)-1] == '"' {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return fmt.Errorf("无效的 ID: %s", b)
		}
		s = unquoted
	}

	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("无效的 ID: %s", b)
	}
	*id = ID(v)

	return nil
}
