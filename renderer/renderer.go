package renderer

import "github.com/ByLCY/folio/table"

// Renderer 将表格布局结果输出为最终文件，例如 PDF 预览。
// Render 返回生成的二进制数据（例如 PDF 字节切片）以及可能的错误。
type Renderer interface {
	Render(result *table.Result) ([]byte, error)
}
