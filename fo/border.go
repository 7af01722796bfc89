package fo

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ByLCY/folio/layout"
)

// Side 表示相对书写方向的四条边。
type Side int

const (
	Before Side = iota
	After
	Start
	End
)

// Sides lists the four sides in resolution order.
var Sides = [...]Side{Before, After, Start, End}

func (s Side) String() string {
	switch s {
	case Before:
		return "before"
	case After:
		return "after"
	case Start:
		return "start"
	case End:
		return "end"
	default:
		return fmt.Sprintf("Side(%d)", int(s))
	}
}

// Opposite returns the side facing s on the neighbouring unit.
func (s Side) Opposite() Side {
	switch s {
	case Before:
		return After
	case After:
		return Before
	case Start:
		return End
	default:
		return Start
	}
}

// IsVertical reports whether s separates rows (before/after).
func (s Side) IsVertical() bool { return s == Before || s == After }

// BorderStyle 是边框线型。
type BorderStyle int

const (
	StyleNone BorderStyle = iota
	StyleHidden
	StyleDotted
	StyleDashed
	StyleSolid
	StyleDouble
	StyleGroove
	StyleRidge
	StyleInset
	StyleOutset
)

var styleNames = map[BorderStyle]string{
	StyleNone:   "none",
	StyleHidden: "hidden",
	StyleDotted: "dotted",
	StyleDashed: "dashed",
	StyleSolid:  "solid",
	StyleDouble: "double",
	StyleGroove: "groove",
	StyleRidge:  "ridge",
	StyleInset:  "inset",
	StyleOutset: "outset",
}

func (s BorderStyle) String() string {
	if n, ok := styleNames[s]; ok {
		return n
	}
	return fmt.Sprintf("BorderStyle(%d)", int(s))
}

// ParseBorderStyle maps a style keyword to its BorderStyle.
func ParseBorderStyle(value string) (BorderStyle, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	for s, n := range styleNames {
		if n == v {
			return s, nil
		}
	}
	return StyleNone, fmt.Errorf("未知的边框样式 %q", value)
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Black 是边框的默认颜色。
var Black = Color{}

// ParseColor accepts #rgb and #rrggbb.
func ParseColor(value string) (Color, error) {
	v := strings.TrimPrefix(strings.TrimSpace(value), "#")
	switch len(v) {
	case 3:
		v = string([]byte{v[0], v[0], v[1], v[1], v[2], v[2]})
	case 6:
	default:
		return Color{}, fmt.Errorf("非法颜色 %q", value)
	}
	n, err := strconv.ParseUint(v, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("非法颜色 %q: %w", value, err)
	}
	return Color{R: int(n >> 16 & 0xff), G: int(n >> 8 & 0xff), B: int(n & 0xff)}, nil
}

func (c Color) Hex() string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }

// BorderInfo 是一条边上声明的边框（未解析）。
type BorderInfo struct {
	Style BorderStyle `json:"style"`
	Width int         `json:"width"` // mpt
	Color Color       `json:"color"`
	// Discard 对应 border-*-width.conditionality=discard：在断开处不保留。
	Discard bool `json:"discard,omitempty"`
}

// RetainedWidth is the width taken into account by the collapse rules: zero
// for none and hidden borders.
func (b *BorderInfo) RetainedWidth() int {
	if b == nil || b.Style == StyleNone || b.Style == StyleHidden {
		return 0
	}
	return b.Width
}

// Visible reports whether the border paints anything.
func (b *BorderInfo) Visible() bool { return b.RetainedWidth() > 0 }

func (b *BorderInfo) String() string {
	if b == nil {
		return "-"
	}
	s := b.Style.String()
	if b.Style != StyleNone && b.Style != StyleHidden {
		s += " " + layout.FormatMPT(b.Width) + " " + b.Color.Hex()
	}
	return s
}

// ParseBorder parses a shorthand such as "solid 1pt #333" or "dashed 2pt discard".
// Tokens may appear in any order; a missing width defaults to 1pt for
// visible styles.
func ParseBorder(value string) (*BorderInfo, error) {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return nil, fmt.Errorf("边框声明为空")
	}
	b := &BorderInfo{Style: StyleNone, Width: -1}
	styleSet := false
	for _, f := range fields {
		lower := strings.ToLower(f)
		switch {
		case strings.HasPrefix(f, "#"):
			c, err := ParseColor(f)
			if err != nil {
				return nil, err
			}
			b.Color = c
		case lower == "discard":
			b.Discard = true
		case lower == "retain":
			b.Discard = false
		default:
			if st, err := ParseBorderStyle(lower); err == nil {
				if styleSet {
					return nil, fmt.Errorf("边框声明 %q 含有多个样式", value)
				}
				b.Style = st
				styleSet = true
				continue
			}
			w, err := layout.ParseMPT(f)
			if err != nil {
				return nil, fmt.Errorf("边框声明 %q 无法识别 %q", value, f)
			}
			b.Width = w
		}
	}
	if b.Width < 0 {
		if b.Style == StyleNone || b.Style == StyleHidden {
			b.Width = 0
		} else {
			b.Width = 1000
		}
	}
	return b, nil
}

// BorderPaddingBackground 汇总一个元素四条边的边框与内边距。
type BorderPaddingBackground struct {
	Borders    [4]*BorderInfo `json:"borders"`
	Padding    [4]int         `json:"padding"`
	Background *Color         `json:"background,omitempty"`
}

// BorderInfo returns the border declared on side, or nil.
func (b *BorderPaddingBackground) BorderInfo(side Side) *BorderInfo {
	if b == nil {
		return nil
	}
	return b.Borders[side]
}

func (b *BorderPaddingBackground) SetBorderInfo(info *BorderInfo, side Side) {
	b.Borders[side] = info
}

// BorderWidth returns the width of the border on side. When discard is true
// (the side touches a break) a conditional border contributes nothing.
func (b *BorderPaddingBackground) BorderWidth(side Side, discard bool) int {
	info := b.BorderInfo(side)
	if info == nil {
		return 0
	}
	if discard && info.Discard {
		return 0
	}
	return info.RetainedWidth()
}

func (b *BorderPaddingBackground) PaddingWidth(side Side) int {
	if b == nil {
		return 0
	}
	return b.Padding[side]
}

// CopyPadding copies padding values from src.
func (b *BorderPaddingBackground) CopyPadding(src *BorderPaddingBackground) {
	if src == nil {
		return
	}
	b.Padding = src.Padding
}

// HasBorder reports whether any side declares a border.
func (b *BorderPaddingBackground) HasBorder() bool {
	if b == nil {
		return false
	}
	for _, info := range b.Borders {
		if info != nil {
			return true
		}
	}
	return false
}
