package notify

import "go.uber.org/zap"

// Notifier はユーザー向けの通知面。
// 元のUIのtoastに相当する。操作の成否はここを通して伝え、
// 想定内の失敗をエラー境界まで漏らさない。
type Notifier interface {
	Success(msg string)
	Info(msg string)
	Warning(msg string)
	Error(msg string)
}

// zapに流す実装。CLIではこれで十分。
type logNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) Notifier {
	return &logNotifier{log: log}
}

func (n *logNotifier) Success(msg string) { n.log.Info(msg, zap.String("kind", "success")) }
func (n *logNotifier) Info(msg string)    { n.log.Info(msg, zap.String("kind", "info")) }
func (n *logNotifier) Warning(msg string) { n.log.Warn(msg, zap.String("kind", "warning")) }
func (n *logNotifier) Error(msg string)   { n.log.Error(msg, zap.String("kind", "error")) }
