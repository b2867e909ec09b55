package errors

import "errors"

// ErrNotFound 记录不存在，或不属于当前用户。
// 带 owner 条件的写语句影响 0 行时统一返回该错误，不区分两种情况，避免泄露他人数据是否存在。
var ErrNotFound = errors.New("记录不存在或无权访问")

// ErrForeignReference 引用的记录不属于当前上下文（如周不属于该计划、排期不属于该周）
var ErrForeignReference = errors.New("引用的记录不属于当前对象")
