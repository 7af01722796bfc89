package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
)

func newTableWriter(w io.Writer, header ...string) *tablewriter.Table {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(header)
	tw.SetAutoWrapText(false)
	tw.SetAutoFormatHeaders(false)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	return tw
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("输出 JSON 失败: %w", err)
	}
	return nil
}

// writeTitle 在多个表格的表格输出之间打印表名。
func writeTitle(w io.Writer, name string, index int) {
	if index > 0 {
		fmt.Fprintln(w)
	}
	if name == "" {
		name = fmt.Sprintf("#%d", index+1)
	}
	fmt.Fprintf(w, "table %s\n", name)
}
