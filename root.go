package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ByLCY/folio/binding"
	"github.com/ByLCY/folio/dsl"
	"github.com/ByLCY/folio/fo"
	"github.com/ByLCY/folio/internal/config"
	"github.com/ByLCY/folio/internal/logging"
	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/table"
)

// app 保存一次命令执行的全局参数与派生状态。
type app struct {
	configPath string
	logLevel   string
	logFormat  string
	output     string
	dataPath   string
	tableName  string
	debugPath  string
	omitHeader bool
	omitFooter bool

	cfg *config.Config
	log *logrus.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "folio",
		Short: "Table layout inspector",
		Long: `folio lays out the tables of a DSL file and prints what the page
breaker would see: the box/glue/penalty sequence of every row group, the
resolved collapsed borders and the grid occupancy. It can also draw a PDF
preview with the legal page break positions.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.preRun,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "配置文件路径（默认 ~/.config/folio/config.yaml）")
	flags.StringVar(&a.logLevel, "log-level", "info", "日志级别：trace, debug, info, warn, error")
	flags.StringVar(&a.logFormat, "log-format", "text", "日志格式：text, json")
	flags.StringVarP(&a.output, "output", "o", "table", "输出格式：table, json")
	flags.StringVar(&a.dataPath, "data", "", "绑定到 DSL 的 YAML/JSON 数据文件")
	flags.StringVar(&a.tableName, "table", "", "只处理指定名称的表格")
	flags.StringVar(&a.debugPath, "debug", "", "布局调试 JSON 输出路径")
	flags.BoolVar(&a.omitHeader, "omit-header-at-break", false, "断页处不重复表头")
	flags.BoolVar(&a.omitFooter, "omit-footer-at-break", false, "断页处不重复表尾")

	root.AddCommand(
		newStepsCmd(a),
		newBordersCmd(a),
		newGridCmd(a),
		newPreviewCmd(a),
		newConfigCmd(a),
	)
	return root
}

// skipConfigLoad 标记不读取配置文件的子命令（例如覆盖损坏配置的 config init）。
const skipConfigLoad = "folio/skip-config-load"

// preRun 合并配置文件与命令行参数：命令行 > 配置文件 > 默认值。
func (a *app) preRun(cmd *cobra.Command, _ []string) error {
	cfg := &config.Config{}
	if cmd.Annotations[skipConfigLoad] == "" {
		path, err := a.resolveConfigPath()
		if err != nil {
			return err
		}
		if cfg, err = config.Load(path); err != nil {
			return err
		}
	}
	a.cfg = cfg

	flags := cmd.Flags()
	if !flagChanged(flags, "log-level") && cfg.LogLevel != "" {
		a.logLevel = cfg.LogLevel
	}
	if !flagChanged(flags, "log-format") && cfg.LogFormat != "" {
		a.logFormat = cfg.LogFormat
	}
	if !flagChanged(flags, "output") && cfg.OutputFormat != "" {
		a.output = cfg.OutputFormat
	}
	if !flagChanged(flags, "omit-header-at-break") {
		a.omitHeader = cfg.OmitHeaderAtBreak
	}
	if !flagChanged(flags, "omit-footer-at-break") {
		a.omitFooter = cfg.OmitFooterAtBreak
	}

	a.output = strings.ToLower(strings.TrimSpace(a.output))
	if a.output != "table" && a.output != "json" {
		return fmt.Errorf("未知输出格式 %q（可选 table, json）", a.output)
	}

	var err error
	a.log, err = logging.Configure(cmd.ErrOrStderr(), a.logLevel, a.logFormat)
	return err
}

func (a *app) resolveConfigPath() (string, error) {
	if a.configPath != "" {
		return a.configPath, nil
	}
	return config.DefaultConfigPath()
}

func flagChanged(flags *pflag.FlagSet, name string) bool {
	f := flags.Lookup(name)
	return f != nil && f.Changed
}

// layoutFile 串联解析、数据绑定、FO 构建与表格布局。
func (a *app) layoutFile(inputPath string) ([]*table.Result, error) {
	file, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("无法打开 DSL 文件 %s: %w", inputPath, err)
	}
	defer file.Close()

	doc, err := dsl.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("解析 DSL 失败: %w", err)
	}

	var data any
	if a.dataPath != "" {
		data, err = binding.Load(a.dataPath)
		if err != nil {
			return nil, fmt.Errorf("读取数据失败: %w", err)
		}
	}

	tables, err := fo.Build(doc, data)
	if err != nil {
		return nil, fmt.Errorf("构建表格失败: %w", err)
	}

	opts := table.Options{
		Logger:            a.log,
		OmitHeaderAtBreak: a.omitHeader,
		OmitFooterAtBreak: a.omitFooter,
	}
	var results []*table.Result
	for _, t := range tables {
		if a.tableName != "" && t.Name != a.tableName {
			continue
		}
		res, err := table.Layout(t, opts)
		if err != nil {
			return nil, fmt.Errorf("表格 %s 布局失败: %w", t.Name, err)
		}
		a.log.WithFields(logrus.Fields{
			"table":     t.Name,
			"rowGroups": len(res.RowGroups),
		}).Debug("layout done")
		results = append(results, res)
	}
	if len(results) == 0 {
		if a.tableName != "" {
			return nil, fmt.Errorf("找不到表格 %q", a.tableName)
		}
		return nil, fmt.Errorf("文件 %s 中没有表格", inputPath)
	}

	if a.debugPath != "" {
		if err := writeDebug(resultsJSON(results), a.debugPath); err != nil {
			return nil, err
		}
	}
	return results, nil
}

func resultsJSON(results []*table.Result) []table.ResultJSON {
	out := make([]table.ResultJSON, 0, len(results))
	for _, r := range results {
		out = append(out, r.JSON())
	}
	return out
}

func writeDebug(v any, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(v, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
