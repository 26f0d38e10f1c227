package config

import (
	"context"
	"os"
	"strings"

	"github.com/mmdatafocus/hubspot_pipeline/appctx"
	"github.com/sirupsen/logrus"
)

var (
	logg *logrus.Logger
)

func GetLogger() *logrus.Logger {
	return logg
}

func init() {
	logg = logrus.New()
	logg.SetFormatter(&logrus.JSONFormatter{})
	logg.SetLevel(logrus.InfoLevel)
	logg.SetOutput(os.Stdout)
	if lvl := strings.TrimSpace(os.Getenv("LOG_LEVEL")); lvl != "" {
		SetLogLevel(lvl)
	}
}

// SetLogLevel switches the shared logger's level; unknown names are ignored.
func SetLogLevel(level string) {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		logg.WithField("level", level).Warn("unknown log level, keeping current")
		return
	}
	logg.SetLevel(lvl)
}

// WithContext tags an entry with the run id and tool name carried by ctx.
func WithContext(ctx context.Context) *logrus.Entry {
	fields := logrus.Fields{}
	if runId, ok := appctx.GetRunId(ctx); ok {
		fields["run_id"] = runId
	}
	if tool, ok := appctx.GetTool(ctx); ok {
		fields["tool"] = tool
	}
	return logg.WithFields(fields)
}

func LogError(logger *logrus.Logger, moduleName string, funcName string, context string, data any, err error) {
	fields := logrus.Fields{
		"module":   moduleName,
		"funcName": funcName,
		"context":  context,
	}
	if data != nil {
		fields["data"] = data
	}
	logger.WithFields(fields).Error(err.Error())
}
