package layout

import (
	"fmt"
	"math"
)

// MaxLength 表示不受限的最大值。
const MaxLength = math.MaxInt32

// MinOptMax 是弹性尺寸：最小值、最优（自然）值与最大值。
// 约定 Min <= Opt <= Max。
type MinOptMax struct {
	Min int `json:"min"`
	Opt int `json:"opt"`
	Max int `json:"max"`
}

// Fixed returns a rigid triple.
func Fixed(v int) MinOptMax { return MinOptMax{Min: v, Opt: v, Max: v} }

// Unbounded returns (0, 0, MaxLength), the value of an auto dimension.
func Unbounded() MinOptMax { return MinOptMax{Min: 0, Opt: 0, Max: MaxLength} }

// NewMinOptMax validates the ordering of the three values.
func NewMinOptMax(minV, opt, maxV int) (MinOptMax, error) {
	if minV > opt || opt > maxV {
		return MinOptMax{}, fmt.Errorf("min/opt/max 顺序非法: %d/%d/%d", minV, opt, maxV)
	}
	return MinOptMax{Min: minV, Opt: opt, Max: maxV}, nil
}

// ExtendMinimum raises Min to v (if larger) and pushes Opt and Max up to keep
// the ordering intact.
func (m MinOptMax) ExtendMinimum(v int) MinOptMax {
	if m.Min < v {
		m.Min = v
		m.Opt = max(m.Opt, m.Min)
		m.Max = max(m.Max, m.Opt)
	}
	return m
}

// Plus adds two triples, saturating Max at MaxLength.
func (m MinOptMax) Plus(o MinOptMax) MinOptMax {
	out := MinOptMax{Min: m.Min + o.Min, Opt: m.Opt + o.Opt}
	if m.Max >= MaxLength-o.Max {
		out.Max = MaxLength
	} else {
		out.Max = m.Max + o.Max
	}
	return out
}

func (m MinOptMax) IsStiff() bool { return m.Min == m.Max }

func (m MinOptMax) String() string {
	maxS := FormatMPT(m.Max)
	if m.Max >= MaxLength {
		maxS = "inf"
	}
	return fmt.Sprintf("%s/%s/%s", FormatMPT(m.Min), FormatMPT(m.Opt), maxS)
}
