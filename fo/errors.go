package fo

import (
	"errors"
	"fmt"
)

// ErrValidation 是所有配置错误的哨兵值，可用 errors.Is 判断。
var ErrValidation = errors.New("table validation failed")

// ValidationError 描述表格结构中的配置错误；整个表格构建因此失败。
type ValidationError struct {
	Element string
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Element, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
