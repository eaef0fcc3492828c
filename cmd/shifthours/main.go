// ShiftHours 命令行工具
//
// 从 JSON 或 YAML 文件读取一周的班次和员工，输出周工时汇总、自检报告或 xlsx 工作簿。
//
//	shifthours weekly -f week.yaml
//	shifthours diagnose -f week.json --json
//	shifthours export -f week.yaml -o hours.xlsx
package main

import (
	"fmt"
	"os"

	"github.com/paiban/shifthours/internal/config"
	"github.com/paiban/shifthours/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// options 全局参数
type options struct {
	configPath string
	inputPath  string
	verbose    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "shifthours",
		Short:        "周工时汇总与导出前自检",
		Version:      fmt.Sprintf("%s (%s, %s)", Version, GitCommit, BuildTime),
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", os.Getenv(config.ConfigFileEnv), "配置文件路径")
	root.PersistentFlags().StringVarP(&opts.inputPath, "file", "f", "", "输入文件 (.json/.yaml/.yml)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "输出调试日志")

	root.AddCommand(
		newWeeklyCmd(opts),
		newDiagnoseCmd(opts),
		newExportCmd(opts),
	)
	return root
}

// load 读取配置和输入文件
func (o *options) load() (*config.Config, *input, error) {
	cfg, err := config.LoadFile(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	if o.inputPath == "" {
		return nil, nil, fmt.Errorf("缺少输入文件，请使用 --file 指定")
	}
	in, err := readInput(o.inputPath)
	if err != nil {
		return nil, nil, err
	}
	return cfg, in, nil
}

// hoursLogger 日志写到 stderr，避免污染标准输出中的报告
func (o *options) hoursLogger(cmd *cobra.Command) *logger.HoursLogger {
	level := zerolog.WarnLevel
	if o.verbose {
		level = zerolog.DebugLevel
	}
	l := logger.New(cmd.ErrOrStderr(), logger.Config{Format: "console"}).Level(level)
	return logger.NewHoursLoggerWith(l)
}
