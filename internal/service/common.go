package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ── 通用业务错误 ──

// ErrValidation 参数校验失败；具体原因以 %w 包装在错误链上
var ErrValidation = errors.New("参数校验失败")

func validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// ── 字段规范化 ──

// 与表结构 VARCHAR 长度一致
const (
	maxTitleLen = 200
	maxTagsLen  = 500
)

var timeSlotPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// validTimeSlot 校验 24 小时制 HH:MM
func validTimeSlot(slot string) bool {
	return timeSlotPattern.MatchString(slot)
}

// normalizeTags 去掉空白与重复项，按首次出现顺序以逗号连接
func normalizeTags(raw string) string {
	if raw == "" {
		return ""
	}
	seen := make(map[string]struct{})
	out := make([]string, 0, 4)
	for _, part := range strings.Split(raw, ",") {
		tag := strings.TrimSpace(part)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return strings.Join(out, ",")
}

// requireTitle 标题去空白后不能为空
func requireTitle(title string) (string, error) {
	t := strings.TrimSpace(title)
	if t == "" {
		return "", validationf("标题不能为空")
	}
	return t, nil
}
