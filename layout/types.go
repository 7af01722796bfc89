package layout

// 该文件定义可断序列的 JSON 表示，供调试输出与 CLI 共用。

// ElementJSON 是单个元素的 JSON 友好表示；长度单位为毫点（mpt）。
type ElementJSON struct {
	Type       string   `json:"type"`
	Width      int      `json:"width"`
	Stretch    int      `json:"stretch,omitempty"`
	Shrink     int      `json:"shrink,omitempty"`
	Penalty    *int     `json:"penalty,omitempty"`
	BreakClass string   `json:"breakClass,omitempty"`
	Flagged    bool     `json:"flagged,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// Tagger 为元素的 Position 生成附加标签（例如 first-in-row-group）。
type Tagger func(pos Position) []string

// ElementsToJSON converts a sequence for debug output. tag may be nil.
func ElementsToJSON(elems []Element, tag Tagger) []ElementJSON {
	out := make([]ElementJSON, 0, len(elems))
	for _, el := range elems {
		item := ElementJSON{Type: el.Kind().String(), Width: el.Width()}
		switch e := el.(type) {
		case *Glue:
			item.Stretch = e.Stretch
			item.Shrink = e.Shrink
		case *Penalty:
			p := e.P
			item.Penalty = &p
			item.BreakClass = e.BreakClass.String()
			item.Flagged = e.Flagged
		}
		if tag != nil {
			item.Tags = tag(el.Position())
		}
		out = append(out, item)
	}
	return out
}
