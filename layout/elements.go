package layout

import "fmt"

// Infinite 是惩罚值的无穷大：P == Infinite 表示禁止断开，P == -Infinite 表示强制断开。
const Infinite = 1000

// Position 由产生元素的一方附加，优化器只负责透传。
type Position any

// ElementKind distinguishes the three element types of a breakable sequence.
type ElementKind int

const (
	KindBox ElementKind = iota
	KindGlue
	KindPenalty
)

func (k ElementKind) String() string {
	switch k {
	case KindBox:
		return "box"
	case KindGlue:
		return "glue"
	case KindPenalty:
		return "penalty"
	default:
		return fmt.Sprintf("ElementKind(%d)", int(k))
	}
}

// Element 是可断序列中的一个元素（box/glue/penalty）。
type Element interface {
	Kind() ElementKind
	Width() int
	Position() Position
}

// Box 是必须整体放置的内容块。
type Box struct {
	W   int
	Pos Position
	// Auxiliary 标记不携带真实内容的填充块。
	Auxiliary bool
}

func (b *Box) Kind() ElementKind  { return KindBox }
func (b *Box) Width() int         { return b.W }
func (b *Box) Position() Position { return b.Pos }

// Glue 是弹性填充；前面是 box 时它本身也是合法断点。
type Glue struct {
	W       int
	Stretch int
	Shrink  int
	Pos     Position
}

func (g *Glue) Kind() ElementKind  { return KindGlue }
func (g *Glue) Width() int         { return g.W }
func (g *Glue) Position() Position { return g.Pos }

// Penalty 是一个候选断点。W 只在断开时计入。
type Penalty struct {
	W          int
	P          int
	Flagged    bool
	BreakClass BreakClass
	Pos        Position
}

func (p *Penalty) Kind() ElementKind  { return KindPenalty }
func (p *Penalty) Width() int         { return p.W }
func (p *Penalty) Position() Position { return p.Pos }

// IsForcedBreak reports whether the penalty must be taken.
func (p *Penalty) IsForcedBreak() bool { return p.P == -Infinite }

// IsForbidden reports whether the penalty may never be taken.
func (p *Penalty) IsForbidden() bool { return p.P >= Infinite }

// IsLegalBreak reports whether elems[i] is a legal break point: a penalty
// below Infinite, or a glue directly preceded by a box.
func IsLegalBreak(elems []Element, i int) bool {
	switch el := elems[i].(type) {
	case *Penalty:
		return el.P < Infinite
	case *Glue:
		if i == 0 {
			return false
		}
		return elems[i-1].Kind() == KindBox
	default:
		return false
	}
}

// ContentLength sums the widths of boxes and glues. Penalty widths only
// count when a break is taken there, so they are ignored.
func ContentLength(elems []Element) int {
	total := 0
	for _, el := range elems {
		if el.Kind() != KindPenalty {
			total += el.Width()
		}
	}
	return total
}

// EndsWithForcedBreak reports whether the list terminates in a forced penalty.
func EndsWithForcedBreak(elems []Element) bool {
	if len(elems) == 0 {
		return false
	}
	p, ok := elems[len(elems)-1].(*Penalty)
	return ok && p.IsForcedBreak()
}

// Describe 返回元素的简短文字描述，供 CLI 与日志使用。
func Describe(el Element) string {
	switch e := el.(type) {
	case *Box:
		return fmt.Sprintf("box(%s)", FormatMPT(e.W))
	case *Glue:
		return fmt.Sprintf("glue(%s)", FormatMPT(e.W))
	case *Penalty:
		return fmt.Sprintf("penalty(%s, %s, %s)", FormatMPT(e.W), FormatPenaltyValue(e.P), e.BreakClass)
	default:
		return fmt.Sprintf("%T", el)
	}
}

// FormatPenaltyValue renders ±Infinite as ±inf.
func FormatPenaltyValue(p int) string {
	switch {
	case p >= Infinite:
		return "+inf"
	case p <= -Infinite:
		return "-inf"
	default:
		return fmt.Sprintf("%d", p)
	}
}
