package appctx

import "context"

// ContextKey is the shared type for all context keys in this codebase.
// Keeping it in a tiny package avoids import cycles (config <-> pipeline).
type ContextKey string

func (c ContextKey) String() string { return string(c) }

var (
	ContextKeyRunId = ContextKey("RunId")
	ContextKeyTool  = ContextKey("Tool")
)

func GetString(ctx context.Context, key ContextKey) (string, bool) {
	v, ok := ctx.Value(key).(string)
	return v, ok
}

func Set(ctx context.Context, key ContextKey, value any) context.Context {
	return context.WithValue(ctx, key, value)
}

func SetRunId(ctx context.Context, runId string) context.Context {
	return Set(ctx, ContextKeyRunId, runId)
}

func GetRunId(ctx context.Context) (string, bool) {
	return GetString(ctx, ContextKeyRunId)
}

func SetTool(ctx context.Context, tool string) context.Context {
	return Set(ctx, ContextKeyTool, tool)
}

func GetTool(ctx context.Context) (string, bool) {
	return GetString(ctx, ContextKeyTool)
}
