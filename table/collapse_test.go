package table

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ByLCY/folio/fo"
)

func mustBorder(t *testing.T, value string) *fo.BorderInfo {
	t.Helper()
	b, err := fo.ParseBorder(value)
	if err != nil {
		t.Fatalf("parse border %q: %v", value, err)
	}
	return b
}

func TestHiddenBorderDominates(t *testing.T) {
	g := buildGrid(t, `table T border "solid 5pt" { body { row border-before hidden { cell border-before "solid 2pt" { box 10pt } } } }`)
	gu := g.Rows()[0].GridUnit(0)
	if got := gu.BorderInfo(fo.Before); got != nil {
		t.Fatalf("hidden should leave no border, got %s", got)
	}
	res := DetermineWinner(gu, nil, fo.Before, VerticalStartEndOfTable)
	if res.Rule != 1 || res.Level != LevelRow || res.Winner.Style != fo.StyleHidden {
		t.Fatalf("unexpected resolution rule=%d level=%s winner=%s", res.Rule, res.Level, res.Winner)
	}
	if res.Current[LevelTable] == nil {
		t.Fatalf("table border should be a candidate on the table edge")
	}
	if got := gu.BorderInfo(fo.After); got == nil || got.Width != 5000 {
		t.Fatalf("other sides keep the table border, got %s", got)
	}
}

func TestCollapseRules(t *testing.T) {
	cases := []struct {
		name  string
		cell  string
		row   string
		body  string
		rule  int
		level Level
		want  string
	}{
		{"widest wins", "solid 1pt", "dashed 3pt", "solid 2pt", 3, LevelRow, "dashed 3pt"},
		{"style preference", "solid 1pt", "dotted 2pt", "double 2pt", 4, LevelBody, "double 2pt"},
		{"ridge beats groove", "groove 2pt", "ridge 2pt", "inset 2pt", 4, LevelRow, "ridge 2pt"},
		{"precedence order", "solid 1pt", "solid 2pt #f00", "solid 2pt #00f", 5, LevelRow, "solid 2pt #f00"},
		{"cell first", "dotted 2pt #0f0", "dotted 2pt #f00", "dotted 1pt", 5, LevelCell, "dotted 2pt #0f0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := `table T { body border-before "` + tc.body + `" { row border-before "` + tc.row +
				`" { cell border-before "` + tc.cell + `" { box 10pt } } } }`
			g := buildGrid(t, src)
			gu := g.Rows()[0].GridUnit(0)
			res := DetermineWinner(gu, nil, fo.Before, VerticalStartEndOfTable)
			if res.Rule != tc.rule || res.Level != tc.level {
				t.Fatalf("expected rule %d at %s, got rule %d at %s", tc.rule, tc.level, res.Rule, res.Level)
			}
			if !res.AnyVisible {
				t.Fatalf("visible candidates should be reported")
			}
			if diff := cmp.Diff(mustBorder(t, tc.want), gu.BorderInfo(fo.Before)); diff != "" {
				t.Fatalf("resolved border mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNoVisibleBorderResolvesToNone(t *testing.T) {
	g := buildGrid(t, `table T { body { row border-before none { cell border-before none { box 10pt } } } }`)
	gu := g.Rows()[0].GridUnit(0)
	res := DetermineWinner(gu, nil, fo.Before, VerticalStartEndOfTable)
	if res.AnyVisible {
		t.Fatalf("no candidate is visible")
	}
	// 规则 2 不提前结束，仍由规则 5 给出结果
	if res.Rule != 5 || res.Level != LevelCell {
		t.Fatalf("expected rule 5 at cell level, got rule %d at %s", res.Rule, res.Level)
	}
	if gu.BorderInfo(fo.Before) != nil {
		t.Fatalf("a non-visible winner is stored as no border")
	}
	if res := DetermineWinner(gu, nil, fo.End, 0); res.Rule != 0 || res.Winner != nil {
		t.Fatalf("no candidates at all should give rule 0, got %d", res.Rule)
	}
}

func TestBorderSymmetry(t *testing.T) {
	cases := []struct {
		name  string
		upper string
		lower string
		row   string
		want  string
	}{
		{"wider lower", "solid 1pt", "dashed 2pt", "dotted 0.5pt", "dashed 2pt"},
		{"wider upper", "double 3pt", "solid 2pt", "solid 1pt", "double 3pt"},
		{"row wins", "solid 1pt", "solid 1pt", "groove 4pt", "groove 4pt"},
		{"hidden below", "solid 4pt", "hidden", "solid 1pt", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := `table T { body {
  row { cell border-after "` + tc.upper + `" { box 10pt } ; cell border-end "` + tc.upper + `" { box 10pt } ; cell border-start "` + tc.lower + `" { box 10pt } }
  row border-before "` + tc.row + `" { cell border-before "` + tc.lower + `" { box 10pt } ; cell { box 10pt } ; cell { box 10pt } }
} }`
			g := buildGrid(t, src)
			rows := g.Rows()
			var want *fo.BorderInfo
			if tc.want != "" {
				want = mustBorder(t, tc.want)
			}
			above := rows[0].GridUnit(0).BorderInfo(fo.After)
			below := rows[1].GridUnit(0).BorderInfo(fo.Before)
			if diff := cmp.Diff(above, below); diff != "" {
				t.Fatalf("vertical edge differs between perspectives (-above +below):\n%s", diff)
			}
			if diff := cmp.Diff(want, below); diff != "" {
				t.Fatalf("vertical edge mismatch (-want +got):\n%s", diff)
			}

			left := rows[0].GridUnit(1)
			right := rows[0].GridUnit(2)
			fromLeft := DetermineWinner(left, right, fo.End, 0)
			fromRight := DetermineWinner(right, left, fo.Start, 0)
			if diff := cmp.Diff(fromLeft.Winner, fromRight.Winner); diff != "" {
				t.Fatalf("horizontal edge differs between perspectives (-left +right):\n%s", diff)
			}
			if diff := cmp.Diff(left.BorderInfo(fo.End), right.BorderInfo(fo.Start)); diff != "" {
				t.Fatalf("stored horizontal borders differ (-left +right):\n%s", diff)
			}
		})
	}
}

// assertSharedEdges checks that both units of every interior edge store the
// same resolved border, and that resolving from either side agrees.
func assertSharedEdges(t *testing.T, g *Grid) {
	t.Helper()
	rows := g.Rows()
	for i := 0; i+1 < len(rows); i++ {
		for c := 0; c < g.NumColumns(); c++ {
			up, down := rows[i].SafelyGetGridUnit(c), rows[i+1].SafelyGetGridUnit(c)
			if up == nil || down == nil || up.IsEmpty() || down.IsEmpty() || up.Primary() == down.Primary() {
				continue
			}
			if diff := cmp.Diff(up.BorderInfo(fo.After), down.BorderInfo(fo.Before)); diff != "" {
				t.Fatalf("edge below %s differs (-above +below):\n%s", up, diff)
			}
			fromUp := DetermineWinner(up, down, fo.After, 0)
			fromDown := DetermineWinner(down, up, fo.Before, 0)
			if diff := cmp.Diff(fromUp.Winner, fromDown.Winner); diff != "" {
				t.Fatalf("winner below %s differs (-above +below):\n%s", up, diff)
			}
		}
	}
	for _, row := range rows {
		for c := 0; c+1 < g.NumColumns(); c++ {
			left, right := row.SafelyGetGridUnit(c), row.SafelyGetGridUnit(c+1)
			if left == nil || right == nil || left.IsEmpty() || right.IsEmpty() || left.Primary() == right.Primary() {
				continue
			}
			if diff := cmp.Diff(left.BorderInfo(fo.End), right.BorderInfo(fo.Start)); diff != "" {
				t.Fatalf("edge right of %s differs (-left +right):\n%s", left, diff)
			}
		}
	}
}

func TestBorderSymmetryAcrossLevels(t *testing.T) {
	cases := []struct {
		name  string
		src   string
		check func(t *testing.T, g *Grid)
	}{
		{
			name: "column before and after",
			src: `table T {
  column border-before "solid 5pt" border-after "dashed 4pt"
  body { row { cell { box 10pt } } row { cell { box 10pt } } row { cell { box 10pt } } }
}`,
			check: func(t *testing.T, g *Grid) {
				rows := g.Rows()
				if got := rows[0].GridUnit(0).BorderInfo(fo.Before); got == nil || got.Width != 5000 {
					t.Fatalf("column border should apply at the table top, got %s", got)
				}
				if got := rows[2].GridUnit(0).BorderInfo(fo.After); got == nil || got.Width != 4000 {
					t.Fatalf("column border should apply at the table bottom, got %s", got)
				}
				for i := 1; i < len(rows); i++ {
					if got := rows[i].GridUnit(0).BorderInfo(fo.Before); got != nil {
						t.Fatalf("row %d: column borders must not reach interior edges, got %s", i+1, got)
					}
				}
			},
		},
		{
			name: "column start and end",
			src: `table T {
  column border-end "solid 3pt"
  column border-start "dotted 2pt"
  body { row { cell { box 10pt } ; cell { box 10pt } } }
}`,
			check: func(t *testing.T, g *Grid) {
				if got := g.Rows()[0].GridUnit(1).BorderInfo(fo.Start); got == nil || got.Width != 3000 {
					t.Fatalf("wider column border should win, got %s", got)
				}
			},
		},
		{
			name: "adjacent bodies",
			src: `table T {
  body border-after "solid 3pt" { row { cell { box 10pt } } }
  body border-before "double 2pt" { row { cell { box 10pt } } }
}`,
			check: func(t *testing.T, g *Grid) {
				if got := g.Bodies()[1].Rows[0].GridUnit(0).BorderInfo(fo.Before); got == nil || got.Style != fo.StyleSolid {
					t.Fatalf("wider body border should win, got %s", got)
				}
			},
		},
		{
			name: "table border stays on the outer edge",
			src: `table T border "solid 2pt" {
  header border-after "dashed 1pt" { row { cell { box 10pt } } }
  body { row { cell { box 10pt } } row { cell { box 10pt } } }
}`,
			check: func(t *testing.T, g *Grid) {
				if got := g.Bodies()[0].Rows[0].GridUnit(0).BorderInfo(fo.Before); got == nil || got.Style != fo.StyleDashed {
					t.Fatalf("header border should win below the header, got %s", got)
				}
				if got := g.Bodies()[0].Rows[1].GridUnit(0).BorderInfo(fo.Before); got != nil {
					t.Fatalf("interior body edge should have no border, got %s", got)
				}
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := buildGrid(t, tc.src)
			assertSharedEdges(t, g)
			tc.check(t, g)
		})
	}
}

func TestHeaderMeetsFirstBody(t *testing.T) {
	g := buildGrid(t, `
table T {
  header { row { cell border-after "solid 1pt" { box 10pt } } }
  body { row { cell border-before "solid 3pt" { box 10pt } } }
}`)
	header := g.Header().Rows[0].GridUnit(0)
	body := g.Bodies()[0].Rows[0].GridUnit(0)
	if got := header.BorderInfo(fo.After); got == nil || got.Width != 3000 {
		t.Fatalf("header after border should be the wider body border, got %s", got)
	}
	if diff := cmp.Diff(header.BorderInfo(fo.After), body.BorderInfo(fo.Before)); diff != "" {
		t.Fatalf("shared edge differs (-header +body):\n%s", diff)
	}
	if w := body.Primary().BeforeBorderWidth(false); w != 1500 {
		t.Fatalf("collapsed before border counts half, got %d", w)
	}
}

func TestResolveBordersLastWriteWins(t *testing.T) {
	g := buildGrid(t, `table T { body { row { cell border "solid 1pt" padding 2pt { box 10pt } } } }`)
	gu := g.Rows()[0].GridUnit(0)
	first := *gu.BorderInfo(fo.Before)

	g.ResolveBorders()
	if diff := cmp.Diff(first, *gu.BorderInfo(fo.Before)); diff != "" {
		t.Fatalf("resolving twice changed the result (-first +second):\n%s", diff)
	}
	if got := gu.EffectiveBorders().PaddingWidth(fo.Start); got != 2000 {
		t.Fatalf("padding should be copied with the borders, got %d", got)
	}

	gu.Cell().BPB.SetBorderInfo(mustBorder(t, "solid 4pt"), fo.Before)
	g.ResolveBorders()
	if got := gu.BorderInfo(fo.Before); got == nil || got.Width != 4000 {
		t.Fatalf("re-resolution should pick up the new border, got %s", got)
	}
}

func TestSeparateBorderModel(t *testing.T) {
	g := buildGrid(t, `
table T border-collapse separate border-separation 2pt {
  body { row border "solid 5pt" { cell border "solid 1pt" { box 10pt } } }
}`)
	gu := g.Rows()[0].GridUnit(0)
	if got := gu.BorderInfo(fo.Before); got == nil || got.Width != 1000 {
		t.Fatalf("separate model keeps the cell border, got %s", got)
	}
	p := gu.Primary()
	if w := p.BeforeBorderWidth(false); w != 2000 {
		t.Fatalf("before width should include half the separation, got %d", w)
	}
	if w := p.StartEndBorderWidths(); w != [2]int{1000, 1000} {
		t.Fatalf("unexpected start/end widths %v", w)
	}
}

func TestStylePreferenceOrder(t *testing.T) {
	order := []fo.BorderStyle{
		fo.StyleDouble, fo.StyleSolid, fo.StyleDashed, fo.StyleDotted,
		fo.StyleRidge, fo.StyleOutset, fo.StyleGroove, fo.StyleInset,
	}
	for i := 1; i < len(order); i++ {
		if stylePreference(order[i-1]) <= stylePreference(order[i]) {
			t.Fatalf("%s should be preferred over %s", order[i-1], order[i])
		}
	}
	if stylePreference(fo.StyleNone) != preferenceFloor || stylePreference(fo.StyleHidden) != preferenceFloor {
		t.Fatalf("none and hidden rank last")
	}
}
