package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// BreakClass 描述强制断开的上下文（列、页、奇偶页）。
type BreakClass int

const (
	BreakAuto BreakClass = iota
	BreakColumn
	BreakPage
	BreakEvenPage
	BreakOddPage
)

func (b BreakClass) String() string {
	switch b {
	case BreakAuto:
		return "auto"
	case BreakColumn:
		return "column"
	case BreakPage:
		return "page"
	case BreakEvenPage:
		return "even-page"
	case BreakOddPage:
		return "odd-page"
	default:
		return fmt.Sprintf("BreakClass(%d)", int(b))
	}
}

// ParseBreakClass parses break-before / break-after values.
func ParseBreakClass(value string) (BreakClass, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "auto":
		return BreakAuto, nil
	case "column":
		return BreakColumn, nil
	case "page":
		return BreakPage, nil
	case "even-page":
		return BreakEvenPage, nil
	case "odd-page":
		return BreakOddPage, nil
	default:
		return BreakAuto, fmt.Errorf("未知的 break 取值 %q", value)
	}
}

func breakClassPriority(b BreakClass) int {
	switch b {
	case BreakColumn:
		return 1
	case BreakPage:
		return 2
	case BreakEvenPage, BreakOddPage:
		return 3
	default:
		return 0
	}
}

// CompareBreakClasses returns the stronger of two break classes; on a tie the
// first one is kept.
func CompareBreakClasses(a, b BreakClass) BreakClass {
	if breakClassPriority(b) > breakClassPriority(a) {
		return b
	}
	return a
}

// Keep 描述 keep-together / keep-with-next / keep-with-previous 的强度。
// strength: 0 = auto, keepAlways = always, 其余为整数强度。
type Keep struct {
	strength int
	context  BreakClass
}

const keepAlways = -1

var (
	KeepAuto   = Keep{}
	KeepAlways = Keep{strength: keepAlways, context: BreakAuto}
)

// KeepStrength returns an integer keep; non-positive values mean auto.
func KeepStrength(n int) Keep {
	if n <= 0 {
		return KeepAuto
	}
	return Keep{strength: n}
}

// ParseKeep parses "auto", "always" or a positive integer, optionally
// restricted to a context with a "page:" or "column:" prefix.
func ParseKeep(value string) (Keep, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	ctx := BreakAuto
	if head, tail, ok := strings.Cut(v, ":"); ok {
		switch head {
		case "page":
			ctx = BreakPage
		case "column":
			ctx = BreakColumn
		default:
			return KeepAuto, fmt.Errorf("未知的 keep 上下文 %q", head)
		}
		v = tail
	}
	var k Keep
	switch v {
	case "", "auto":
		return KeepAuto, nil
	case "always":
		k = KeepAlways
	default:
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return KeepAuto, fmt.Errorf("非法的 keep 取值 %q", value)
		}
		k = KeepStrength(n)
	}
	k.context = ctx
	return k, nil
}

func (k Keep) IsAuto() bool   { return k.strength == 0 }
func (k Keep) IsAlways() bool { return k.strength == keepAlways }

// Context is the break class the keep applies to; BreakAuto means any.
func (k Keep) Context() BreakClass { return k.context }

// Penalty maps the keep to a break cost: auto 0, always Infinite, integer
// strengths just below Infinite.
func (k Keep) Penalty() int {
	switch {
	case k.IsAuto():
		return 0
	case k.IsAlways():
		return Infinite
	default:
		return Infinite - 1
	}
}

// Compare returns the stronger keep: always beats integers, larger integers
// beat smaller ones, anything beats auto.
func (k Keep) Compare(o Keep) Keep {
	switch {
	case k.IsAlways():
		return k
	case o.IsAlways():
		return o
	case o.strength > k.strength:
		return o
	default:
		return k
	}
}

func (k Keep) String() string {
	var s string
	switch {
	case k.IsAuto():
		return "auto"
	case k.IsAlways():
		s = "always"
	default:
		s = strconv.Itoa(k.strength)
	}
	if k.context != BreakAuto {
		return k.context.String() + ":" + s
	}
	return s
}
