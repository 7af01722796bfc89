package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ByLCY/folio/renderer"
	canvasrenderer "github.com/ByLCY/folio/renderer/canvas"
	"github.com/ByLCY/folio/table"
)

func newPreviewCmd(a *app) *cobra.Command {
	var outPath, fontPath string
	cmd := &cobra.Command{
		Use:   "preview <file>",
		Short: "Draw a PDF preview of the grid, the borders and the break positions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := a.layoutFile(args[0])
			if err != nil {
				return err
			}
			opts := canvasrenderer.Options{
				ColumnWidth: a.cfg.Preview.ColumnWidth,
				Margin:      a.cfg.Preview.Margin,
				FontPath:    a.cfg.Preview.Font,
			}
			if flagChanged(cmd.Flags(), "font") {
				opts.FontPath = fontPath
			}
			var r renderer.Renderer = canvasrenderer.NewRendererWithOptions(opts)
			for _, res := range results {
				path := previewPath(outPath, res, len(results))
				if err := writePreview(r, res, path); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "已生成 PDF：%s\n", path)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "output/preview.pdf", "PDF 输出路径")
	cmd.Flags().StringVar(&fontPath, "font", "", "单元格标签字体（覆盖配置 preview.font）")
	return cmd
}

// previewPath 在输出多个表格时为文件名追加表名。
func previewPath(outPath string, res *table.Result, n int) string {
	if n <= 1 {
		return outPath
	}
	ext := filepath.Ext(outPath)
	return strings.TrimSuffix(outPath, ext) + "-" + res.Table.Name + ext
}

func writePreview(r renderer.Renderer, res *table.Result, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	pdfBytes, err := r.Render(res)
	if err != nil {
		return fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	if err := os.WriteFile(outputPath, pdfBytes, 0o644); err != nil {
		return fmt.Errorf("写入 PDF 文件失败: %w", err)
	}
	return nil
}
