package table

import "github.com/sirupsen/logrus"

// Options 配置表格布局阶段所需的依赖。
type Options struct {
	// Logger 默认为 logrus.StandardLogger()。
	Logger logrus.FieldLogger
	// NewActiveCell 由单元格内容布局方提供；默认使用 NewContentCell。
	NewActiveCell CellFactory
	// OmitHeaderAtBreak / OmitFooterAtBreak 在表格自身属性之外强制不重复表头/表尾。
	OmitHeaderAtBreak bool
	OmitFooterAtBreak bool
}

func (o Options) entry() *logrus.Entry {
	if o.Logger == nil {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return o.Logger.WithFields(logrus.Fields{})
}

func (o Options) cellFactory() CellFactory {
	if o.NewActiveCell == nil {
		return NewContentCell
	}
	return o.NewActiveCell
}
