package table

import (
	"fmt"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/ByLCY/folio/fo"
	"github.com/ByLCY/folio/layout"
)

func layoutTable(t *testing.T, src string, opts Options) *Result {
	t.Helper()
	if opts.Logger == nil {
		logger, _ := test.NewNullLogger()
		opts.Logger = logger
	}
	res, err := Layout(buildTable(t, src), opts)
	if err != nil {
		t.Fatalf("layout failed: %v", err)
	}
	return res
}

func describe(elems []layout.Element) []string {
	out := make([]string, 0, len(elems))
	for _, el := range elems {
		out = append(out, layout.Describe(el))
	}
	return out
}

// breakSteps returns the offset of every penalty and of the legal ones.
func breakSteps(elems []layout.Element) (all, legal []int) {
	offset := 0
	for _, el := range elems {
		switch e := el.(type) {
		case *layout.Penalty:
			step := offset + e.W
			all = append(all, step)
			if e.P < layout.Infinite {
				legal = append(legal, step)
			}
		default:
			offset += el.Width()
		}
	}
	return all, legal
}

func TestStepperSpanningCellScenario(t *testing.T) {
	res := layoutTable(t, `
table T {
  body {
    row { cell span-rows 2 { box 70pt } ; cell { box 40pt } }
    row { cell column-number 2 { box 50pt } }
    row { cell span-columns 2 { box 30pt } }
  }
}`, Options{})

	if len(res.RowGroups) != 2 {
		t.Fatalf("expected 2 row groups, got %d", len(res.RowGroups))
	}
	elems := res.Elements()
	want := []string{
		"box(40pt)", "penalty(30pt, +inf, auto)",
		"box(50pt)", "penalty(0pt, 0, auto)",
		"box(30pt)", "penalty(0pt, 0, auto)",
	}
	if diff := cmp.Diff(want, describe(elems)); diff != "" {
		t.Fatalf("elements mismatch (-want +got):\n%s", diff)
	}
	all, legal := breakSteps(elems)
	if diff := cmp.Diff([]int{70000, 90000, 120000}, all); diff != "" {
		t.Fatalf("steps mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{90000, 120000}, legal); diff != "" {
		t.Fatalf("legal breaks mismatch (-want +got):\n%s", diff)
	}
}

func TestStepperStepsAreMonotonic(t *testing.T) {
	res := layoutTable(t, `
table T {
  body {
    row {
      cell { lines 3 10pt }
      cell { box 15pt ; penalty 0 ; box 15pt }
    }
  }
}`, Options{})
	rg := res.RowGroups[0]
	want := []string{
		"box(10pt)", "penalty(5pt, 0, auto)",
		"box(5pt)", "penalty(5pt, 0, auto)",
		"box(15pt)", "penalty(0pt, 0, auto)",
	}
	if diff := cmp.Diff(want, describe(rg.Elements)); diff != "" {
		t.Fatalf("elements mismatch (-want +got):\n%s", diff)
	}
	all, _ := breakSteps(rg.Elements)
	for i := 1; i < len(all); i++ {
		if all[i] <= all[i-1] {
			t.Fatalf("steps are not strictly increasing: %v", all)
		}
	}
	if last := all[len(all)-1]; last != TotalHeight(rg.Rows) {
		t.Fatalf("last step %d should equal the row group height %d", last, TotalHeight(rg.Rows))
	}
	if got := layout.ContentLength(rg.Elements); got != TotalHeight(rg.Rows) {
		t.Fatalf("content length %d should equal the row group height", got)
	}
}

func TestStepperNextRowStartingOnPreviousStep(t *testing.T) {
	// 第一行的首步 10pt 大于行高 5pt，第二行恰好在 10pt 处结束
	res := layoutTable(t, `
table T {
  body {
    row { cell span-rows 3 { lines 6 10pt } ; cell { box 5pt } }
    row { cell column-number 2 { box 5pt } }
    row { cell column-number 2 { box 5pt } }
  }
}`, Options{})
	if len(res.RowGroups) != 1 {
		t.Fatalf("expected one row group, got %d", len(res.RowGroups))
	}
	rg := res.RowGroups[0]
	all, legal := breakSteps(rg.Elements)
	if diff := cmp.Diff([]int{10000, 15000, 20000, 30000, 40000, 50000, 60000}, all); diff != "" {
		t.Fatalf("steps mismatch (-want +got):\n%s", diff)
	}
	if slices.Contains(legal, 10000) {
		t.Fatalf("the break inside the first row should stay impossible: %v", legal)
	}
	if last := all[len(all)-1]; last != TotalHeight(rg.Rows) {
		t.Fatalf("last step %d should equal the row group height %d", last, TotalHeight(rg.Rows))
	}
	if got := layout.ContentLength(rg.Elements); got != TotalHeight(rg.Rows) {
		t.Fatalf("content length %d should equal the row group height", got)
	}

	first := rg.Elements[0].Position().(*ContentPosition)
	var labels []string
	for _, cp := range first.CellParts {
		labels = append(labels, cp.Primary.Label())
	}
	if !slices.Contains(labels, "body#1[2,2]") {
		t.Fatalf("the second row's cell should belong to the first box, got %v", labels)
	}
}

func TestStepperMergedStepKeepsForcedBreak(t *testing.T) {
	res := layoutTable(t, `
table T {
  body {
    row { cell span-rows 3 { lines 6 10pt } ; cell { box 5pt } }
    row break-after page { cell column-number 2 { box 5pt } }
    row { cell column-number 2 { box 5pt } }
  }
}`, Options{})
	elems := res.RowGroups[0].Elements
	pen, ok := elems[1].(*layout.Penalty)
	if !ok {
		t.Fatalf("expected a penalty after the first box, got %s", layout.Describe(elems[1]))
	}
	if !pen.IsForcedBreak() || pen.BreakClass != layout.BreakPage {
		t.Fatalf("the row break should force the merged break, got %s", layout.Describe(pen))
	}
	all, _ := breakSteps(elems)
	for i := 1; i < len(all); i++ {
		if all[i] <= all[i-1] {
			t.Fatalf("steps are not strictly increasing: %v", all)
		}
	}
}

func TestStepperTagsRowGroupBoundaries(t *testing.T) {
	res := layoutTable(t, `
table T {
  body {
    row { cell { lines 3 10pt } }
    row { cell { box 10pt } }
  }
}`, Options{})
	for i, rg := range res.RowGroups {
		var boxes []layout.Element
		for _, el := range rg.Elements {
			if el.Kind() == layout.KindBox {
				boxes = append(boxes, el)
			}
		}
		if len(boxes) == 0 {
			t.Fatalf("row group %d has no box", i)
		}
		first := Tags(boxes[0].Position())
		last := Tags(boxes[len(boxes)-1].Position())
		if !slices.Contains(first, "first-in-row-group") {
			t.Fatalf("row group %d: first box tags %v", i, first)
		}
		if !slices.Contains(last, "last-in-row-group") {
			t.Fatalf("row group %d: last box tags %v", i, last)
		}
		if len(boxes) > 2 {
			for _, b := range boxes[1 : len(boxes)-1] {
				if tags := Tags(b.Position()); len(tags) != 0 {
					t.Fatalf("row group %d: inner box tagged %v", i, tags)
				}
			}
		}
	}
}

func TestStepperForcedBreakBetweenRows(t *testing.T) {
	res := layoutTable(t, `
table T {
  body {
    row { cell span-rows 2 { box 10pt } ; cell { box 20pt } }
    row break-before page { cell { box 20pt } }
  }
}`, Options{})
	want := []string{
		"box(20pt)", "penalty(0pt, -inf, page)",
		"box(20pt)", "penalty(0pt, 0, auto)",
	}
	if diff := cmp.Diff(want, describe(res.Elements())); diff != "" {
		t.Fatalf("elements mismatch (-want +got):\n%s", diff)
	}
	box := res.RowGroups[0].Elements[2]
	pos := box.Position().(*ContentPosition)
	if pos.Row.Index() != 1 {
		t.Fatalf("second box should belong to row 2, got %s", pos.Row)
	}
	for _, part := range pos.CellParts {
		if part.Primary.RowSpan() == 2 && !part.IsEmpty() {
			t.Fatalf("finished spanning cell should contribute an empty part, got %s", part)
		}
	}
}

func TestStepperForcedBreakInContent(t *testing.T) {
	res := layoutTable(t, `table T { body { row { cell { box 10pt ; penalty forced 0 column ; box 10pt } } } }`, Options{})
	want := []string{
		"box(10pt)", "penalty(0pt, -inf, column)",
		"box(10pt)", "penalty(0pt, 0, auto)",
	}
	if diff := cmp.Diff(want, describe(res.Elements())); diff != "" {
		t.Fatalf("elements mismatch (-want +got):\n%s", diff)
	}
}

func TestStepperKeeps(t *testing.T) {
	cases := map[string]struct {
		src  string
		want []string
	}{
		"table keep-together": {
			src:  `table T keep-together always { body { row { cell { lines 2 10pt } } } }`,
			want: []string{"box(10pt)", "penalty(0pt, +inf, auto)", "box(10pt)", "penalty(0pt, 0, auto)"},
		},
		"body keep-together": {
			src:  `table T { body keep-together always { row { cell { lines 2 10pt } } } }`,
			want: []string{"box(10pt)", "penalty(0pt, +inf, auto)", "box(10pt)", "penalty(0pt, 0, auto)"},
		},
		"row keep-together": {
			src:  `table T { body { row keep-together always { cell { lines 2 10pt } } } }`,
			want: []string{"box(10pt)", "penalty(0pt, +inf, auto)", "box(10pt)", "penalty(0pt, 0, auto)"},
		},
		"integer keep": {
			src:  `table T { body { row keep-together 5 { cell { lines 2 10pt } } } }`,
			want: []string{"box(10pt)", "penalty(0pt, 999, auto)", "box(10pt)", "penalty(0pt, 0, auto)"},
		},
		"cell keep-with-next": {
			src:  `table T { body { row { cell keep-with-next always { lines 2 10pt } } } }`,
			want: []string{"box(10pt)", "penalty(0pt, 0, auto)", "box(10pt)", "penalty(0pt, +inf, auto)"},
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			res := layoutTable(t, tc.src, Options{})
			if diff := cmp.Diff(tc.want, describe(res.Elements())); diff != "" {
				t.Fatalf("elements mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStepperMinHeightFiller(t *testing.T) {
	res := layoutTable(t, `table T { body { row min-height 30pt { cell { lines 2 10pt } } } }`, Options{})
	want := []string{"box(30pt)", "penalty(0pt, 0, auto)"}
	if diff := cmp.Diff(want, describe(res.Elements())); diff != "" {
		t.Fatalf("elements mismatch (-want +got):\n%s", diff)
	}
}

func TestPadToExplicitHeight(t *testing.T) {
	elems := []layout.Element{
		&layout.Box{W: 10000}, &layout.Penalty{}, &layout.Box{W: 10000},
	}
	got := describe(padToExplicitHeight(elems, layout.Unbounded(), layout.Unbounded().ExtendMinimum(30000), 20000))
	want := []string{"box(10pt)", "penalty(20pt, 0, auto)", "box(10pt)", "box(10pt)"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("padding mismatch (-want +got):\n%s", diff)
	}
	if out := padToExplicitHeight(elems, layout.Unbounded(), layout.Unbounded(), 20000); len(out) != len(elems) {
		t.Fatalf("unconstrained cell should stay unchanged")
	}
}

func TestHeaderFooterPenaltyWidth(t *testing.T) {
	src := `
table T %s {
  header { row { cell { box 10pt } } }
  footer { row { cell { box 5pt } } }
  body { row { cell { lines 2 10pt } } }
}`
	res := layoutTable(t, fmt.Sprintf(src, ""), Options{})
	if res.HeaderHeight != 10000 || res.FooterHeight != 5000 {
		t.Fatalf("unexpected header/footer heights %d/%d", res.HeaderHeight, res.FooterHeight)
	}
	if len(res.RowGroups) != 3 || res.RowGroups[1].Part.Kind() != fo.PartBody {
		t.Fatalf("row groups should follow document order")
	}
	body := res.RowGroups[1].Elements
	want := []string{"box(10pt)", "penalty(15pt, 0, auto)", "box(10pt)", "penalty(15pt, 0, auto)"}
	if diff := cmp.Diff(want, describe(body)); diff != "" {
		t.Fatalf("body elements mismatch (-want +got):\n%s", diff)
	}
	if tags := Tags(body[1].Position()); !cmp.Equal(tags, []string{"repeat-header", "repeat-footer"}) {
		t.Fatalf("unexpected penalty tags %v", tags)
	}
	header := res.RowGroups[0].Elements
	if diff := cmp.Diff([]string{"box(10pt)", "penalty(0pt, 0, auto)"}, describe(header)); diff != "" {
		t.Fatalf("header elements mismatch (-want +got):\n%s", diff)
	}

	omitted := layoutTable(t, fmt.Sprintf(src, "omit-header-at-break true"), Options{})
	if got := omitted.RowGroups[1].Elements[1].Width(); got != 5000 {
		t.Fatalf("omitted header should not count, got %d", got)
	}
	forced := layoutTable(t, fmt.Sprintf(src, ""), Options{OmitFooterAtBreak: true})
	if got := forced.RowGroups[1].Elements[1].Width(); got != 10000 {
		t.Fatalf("omitted footer should not count, got %d", got)
	}
}

func TestLayoutJoinsRowGroups(t *testing.T) {
	cases := map[string]struct {
		src  string
		want []string
	}{
		"row keeps and breaks": {
			src: `table T { body {
  row keep-with-next always { cell { box 10pt } }
  row { cell { box 10pt } }
  row break-before odd-page { cell { box 10pt } }
} }`,
			want: []string{
				"box(10pt)", "penalty(0pt, +inf, auto)",
				"box(10pt)", "penalty(0pt, -inf, odd-page)",
				"box(10pt)", "penalty(0pt, 0, auto)",
			},
		},
		"body keep stays inside the body": {
			src: `table T {
  body keep-together always { row { cell { box 10pt } } row { cell { box 10pt } } }
  body { row { cell { box 10pt } } }
}`,
			want: []string{
				"box(10pt)", "penalty(0pt, +inf, auto)",
				"box(10pt)", "penalty(0pt, 0, auto)",
				"box(10pt)", "penalty(0pt, 0, auto)",
			},
		},
		"table keep spans bodies": {
			src: `table T keep-together always {
  body { row { cell { box 10pt } } }
  body { row { cell { box 10pt } } }
}`,
			want: []string{
				"box(10pt)", "penalty(0pt, +inf, auto)",
				"box(10pt)", "penalty(0pt, 0, auto)",
			},
		},
		"keep-with-previous on a cell": {
			src: `table T { body {
  row { cell { box 10pt } }
  row { cell keep-with-previous always { box 10pt } }
} }`,
			want: []string{
				"box(10pt)", "penalty(0pt, +inf, auto)",
				"box(10pt)", "penalty(0pt, 0, auto)",
			},
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			res := layoutTable(t, tc.src, Options{})
			if diff := cmp.Diff(tc.want, describe(res.Elements())); diff != "" {
				t.Fatalf("elements mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLayoutUsesCellFactory(t *testing.T) {
	var created []string
	opts := Options{NewActiveCell: func(pgu *PrimaryGridUnit, row *EffRow, rowIndex, previousRowsLength int) ActiveCell {
		created = append(created, pgu.Label())
		return NewContentCell(pgu, row, rowIndex, previousRowsLength)
	}}
	res := layoutTable(t, `table T { body { row { cell { box 5pt } ; cell { box 5pt } } row { cell { box 5pt } ; cell { box 5pt } } } }`, opts)
	if len(created) != len(res.Grid.Primaries()) {
		t.Fatalf("expected one active cell per primary, got %v", created)
	}
}

func TestResultJSON(t *testing.T) {
	res := layoutTable(t, `table Invoice { body { row height 12pt { cell { box 10pt } } } }`, Options{})
	out := res.JSON()
	if out.Table != "Invoice" || out.Columns != 1 || out.BorderModel != "collapse" {
		t.Fatalf("unexpected header fields %+v", out)
	}
	if len(out.RowGroups) != 1 || len(out.RowGroups[0].Rows) != 1 {
		t.Fatalf("unexpected row groups %+v", out.RowGroups)
	}
	row := out.RowGroups[0].Rows[0]
	if row.Index != 1 || row.Height != layout.Fixed(12000) {
		t.Fatalf("unexpected row %+v", row)
	}
	first := out.RowGroups[0].Elements[0]
	if diff := cmp.Diff([]string{"first-in-row-group", "last-in-row-group"}, first.Tags); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}
	if first.Width != 12000 {
		t.Fatalf("box should include the row height filler, got %d", first.Width)
	}
}
