package layout

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// This file defines unit-safe lengths. All layout arithmetic is done in
// millipoints (1/1000 pt) so that steps and penalties stay integral.

// Unit represents the original unit of a length value as written in the DSL.
type Unit int

const (
	UnitNone Unit = iota // bare numbers, read as points
	UnitMM               // millimeters
	UnitCM               // centimeters
	UnitIN               // inches
	UnitPT               // points
	UnitMPT              // millipoints
)

// Conversion constants between pt and mm.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
)

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitMM:
		return "mm"
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	case UnitPT:
		return "pt"
	case UnitMPT:
		return "mpt"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func (l Length) IsZero() bool { return l.Value == 0 }

// ToPT converts the length to points. Bare numbers are already points.
func (l Length) ToPT() float64 {
	switch l.Unit {
	case UnitMM:
		return l.Value * MmToPt
	case UnitCM:
		return l.Value * 10 * MmToPt
	case UnitIN:
		return l.Value * 72
	case UnitMPT:
		return l.Value / 1000
	default:
		return l.Value
	}
}

// ToMM converts the length to millimeters.
func (l Length) ToMM() float64 {
	switch l.Unit {
	case UnitMM:
		return l.Value
	case UnitCM:
		return l.Value * 10
	case UnitIN:
		return l.Value * 25.4
	default:
		return l.ToPT() * PtToMm
	}
}

// ToMPT converts the length to millipoints, rounded to the nearest integer.
func (l Length) ToMPT() int {
	if l.Unit == UnitMPT {
		return int(math.Round(l.Value))
	}
	return int(math.Round(l.ToPT() * 1000))
}

func (l Length) String() string {
	return strconv.FormatFloat(l.Value, 'f', -1, 64) + UnitToString(l.Unit)
}

// ParseLength parses a DSL length such as "12pt", "2.5mm" or "40" (points).
func ParseLength(value string) (Length, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, fmt.Errorf("长度为空")
	}
	unit := UnitNone
	num := v
	// mpt 必须先于 pt 匹配
	for _, suf := range []struct {
		s string
		u Unit
	}{{"mpt", UnitMPT}, {"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, fmt.Errorf("无法解析长度 %q: %w", value, err)
	}
	if f < 0 {
		return Length{}, fmt.Errorf("长度不能为负数: %q", value)
	}
	return Length{Value: f, Unit: unit}, nil
}

// ParseMPT is a shortcut for ParseLength(value).ToMPT().
func ParseMPT(value string) (int, error) {
	l, err := ParseLength(value)
	if err != nil {
		return 0, err
	}
	return l.ToMPT(), nil
}

// MPTToMM converts millipoints to millimeters, used by the preview renderer.
func MPTToMM(mpt int) float64 { return float64(mpt) / 1000 * PtToMm }

// FormatMPT renders millipoints as points for human-readable output.
func FormatMPT(mpt int) string {
	return strconv.FormatFloat(float64(mpt)/1000, 'f', -1, 64) + "pt"
}
