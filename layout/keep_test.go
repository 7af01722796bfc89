package layout

import "testing"

func TestKeepCompare(t *testing.T) {
	five := KeepStrength(5)
	two := KeepStrength(2)
	cases := []struct {
		name string
		a, b Keep
		want Keep
	}{
		{"auto vs auto", KeepAuto, KeepAuto, KeepAuto},
		{"auto vs int", KeepAuto, two, two},
		{"int vs larger int", two, five, five},
		{"larger int vs int", five, two, five},
		{"int vs always", five, KeepAlways, KeepAlways},
		{"always vs auto", KeepAlways, KeepAuto, KeepAlways},
	}
	for _, c := range cases {
		if got := c.a.Compare(c.b); got != c.want {
			t.Fatalf("%s: got %v want %v", c.name, got, c.want)
		}
	}
}

func TestKeepPenalty(t *testing.T) {
	if p := KeepAuto.Penalty(); p != 0 {
		t.Fatalf("auto 的惩罚应为 0，实际 %d", p)
	}
	if p := KeepAlways.Penalty(); p != Infinite {
		t.Fatalf("always 的惩罚应为 Infinite，实际 %d", p)
	}
	if p := KeepStrength(3).Penalty(); p != Infinite-1 {
		t.Fatalf("整数强度的惩罚应为 Infinite-1，实际 %d", p)
	}
}

func TestParseKeep(t *testing.T) {
	k, err := ParseKeep("page:always")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !k.IsAlways() || k.Context() != BreakPage {
		t.Fatalf("page:always 解析错误: %v", k)
	}
	if k, _ := ParseKeep("auto"); !k.IsAuto() {
		t.Fatalf("auto 解析错误: %v", k)
	}
	if _, err := ParseKeep("sometimes"); err == nil {
		t.Fatalf("非法取值应当报错")
	}
	if _, err := ParseKeep("0"); err == nil {
		t.Fatalf("0 不是合法的整数强度")
	}
}

func TestCompareBreakClasses(t *testing.T) {
	if got := CompareBreakClasses(BreakAuto, BreakColumn); got != BreakColumn {
		t.Fatalf("column 应优先于 auto，实际 %v", got)
	}
	if got := CompareBreakClasses(BreakPage, BreakColumn); got != BreakPage {
		t.Fatalf("page 应优先于 column，实际 %v", got)
	}
	if got := CompareBreakClasses(BreakOddPage, BreakEvenPage); got != BreakOddPage {
		t.Fatalf("同级时保留第一个，实际 %v", got)
	}
}

func TestMinOptMaxExtendMinimum(t *testing.T) {
	m := Unbounded().ExtendMinimum(4000)
	if m.Min != 4000 || m.Opt != 4000 || m.Max != MaxLength {
		t.Fatalf("ExtendMinimum 结果错误: %+v", m)
	}
	f := Fixed(1000).ExtendMinimum(3000)
	if f.Min != 3000 || f.Opt != 3000 || f.Max != 3000 {
		t.Fatalf("ExtendMinimum 应同时推高 opt/max: %+v", f)
	}
	if got := Fixed(5).ExtendMinimum(2); got != Fixed(5) {
		t.Fatalf("较小的值不应改变三元组: %+v", got)
	}
}

func TestContentLengthAndLegalBreaks(t *testing.T) {
	elems := []Element{
		&Box{W: 10},
		&Penalty{W: 3, P: 0},
		&Box{W: 5},
		&Glue{W: 2},
		&Box{W: 1},
		&Penalty{P: Infinite},
	}
	if got := ContentLength(elems); got != 18 {
		t.Fatalf("ContentLength = %d, want 18", got)
	}
	legal := []bool{false, true, false, true, false, false}
	for i, want := range legal {
		if got := IsLegalBreak(elems, i); got != want {
			t.Fatalf("IsLegalBreak(%d) = %v, want %v", i, got, want)
		}
	}
}
