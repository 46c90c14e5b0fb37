package domain

import (
	"context"

	"github.com/google/uuid"
)

// RunInfo 携带一次批处理运行的上下文信息
type RunInfo struct {
	RunID    string
	Operator string // SYSTEM 或具体用户
	DataDir  string // 原始数据目录
}

// NewRunInfo creates a RunInfo with a fresh random run id.
func NewRunInfo(operator, dataDir string) RunInfo {
	if operator == "" {
		operator = "SYSTEM"
	}
	return RunInfo{RunID: uuid.NewString(), Operator: operator, DataDir: dataDir}
}

type runInfoKey struct{}

// NewContext returns a new Context that carries the RunInfo value.
func NewContext(ctx context.Context, info RunInfo) context.Context {
	return context.WithValue(ctx, runInfoKey{}, info)
}

// FromContext returns the RunInfo value stored in ctx, if any.
func FromContext(ctx context.Context) (RunInfo, bool) {
	info, ok := ctx.Value(runInfoKey{}).(RunInfo)
	return info, ok
}
