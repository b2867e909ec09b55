package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// DaysInWeek 一周天数，星期编号 1=周一 … 7=周日
const DaysInWeek = 7

// Days 按星期分桶的定长结构，下标为 weekday-1。
// JSON 形态为以 "1".."7" 为键的对象，空桶不输出。
type Days[T any] [DaysInWeek][]T

// Get 返回指定星期（1..7）的列表
func (d *Days[T]) Get(weekday int) []T {
	return d[weekday-1]
}

// Add 向指定星期（1..7）追加一项
func (d *Days[T]) Add(weekday int, item T) {
	d[weekday-1] = append(d[weekday-1], item)
}

// Len 所有星期的条目总数
func (d *Days[T]) Len() int {
	n := 0
	for i := range d {
		n += len(d[i])
	}
	return n
}

// MarshalJSON 按星期升序输出，保证键顺序稳定
func (d Days[T]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for i, items := range d {
		if len(items) == 0 {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		raw, err := json.Marshal(items)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&buf, "%q:", strconv.Itoa(i+1))
		buf.Write(raw)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON 只接受规范写法 "1".."7" 作为键（"01"、"+1" 等同义写法会互相覆盖，一律拒绝）
func (d *Days[T]) UnmarshalJSON(data []byte) error {
	var raw map[string][]T
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var out Days[T]
	for key, items := range raw {
		weekday, err := strconv.Atoi(key)
		if err != nil || weekday < 1 || weekday > DaysInWeek || strconv.Itoa(weekday) != key {
			return fmt.Errorf("星期键 %q 无效，取值范围 1-7", key)
		}
		out[weekday-1] = items
	}
	*d = out
	return nil
}
