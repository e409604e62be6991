package logging

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"alerting-platform/internal/config"
	"alerting-platform/internal/models"
)

// Logger wraps logrus with rotating file output. Delivery attempts and task
// executions are additionally reported as structured events so an external
// collector can consume them from the log stream.
type Logger struct {
	*logrus.Logger
}

func New(cfg config.Config) *Logger {
	l := logrus.New()

	level, err := logrus.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	rotated := &lumberjack.Logger{
		Filename:   cfg.Logger.Filename,
		MaxSize:    cfg.Logger.MaxSizeMB,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAgeDays,
	}
	l.SetOutput(io.MultiWriter(os.Stdout, rotated))

	return &Logger{Logger: l}
}

// NewNop returns a logger that discards everything; used by tests.
func NewNop() *Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &Logger{Logger: l}
}

// DeliveryEvent reports one delivery attempt outcome.
func (l *Logger) DeliveryEvent(alertID, userID int64, channel models.Channel, recipient string, status models.DeliveryStatus, duration time.Duration, errMsg string) {
	fields := logrus.Fields{
		"event":     "delivery_attempt",
		"alert_id":  alertID,
		"user_id":   userID,
		"channel":   channel,
		"recipient": recipient,
		"status":    status,
		"duration":  duration.String(),
	}
	if errMsg != "" {
		fields["error"] = errMsg
		l.WithFields(fields).Warn("delivery attempt failed")
		return
	}
	l.WithFields(fields).Info("delivery attempt succeeded")
}

// TaskEvent reports one scheduled task execution outcome.
func (l *Logger) TaskEvent(result models.TaskResult) {
	fields := logrus.Fields{
		"event":    "task_execution",
		"task":     result.TaskName,
		"success":  result.Success,
		"duration": result.Duration.String(),
	}
	if result.Success {
		l.WithFields(fields).Info(result.Message)
		return
	}
	l.WithFields(fields).Error(result.Message)
}
