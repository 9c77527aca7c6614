package llm

import (
	"context"

	"go.uber.org/zap"
)

type contextKey string

const callInfoKey contextKey = "llm_call_info"

// Call sources recorded on CallInfo.
const (
	SourceWeb   = "web"
	SourceMCP   = "mcp"
	SourceProbe = "probe"
)

// CallInfo identifies the turn a model call belongs to. It is added to
// invocation log lines, and RequestID is sent to endpoints as X-Request-Id.
type CallInfo struct {
	RequestID string
	Username  string
	Source    string
}

// WithCallInfo attaches info to ctx. Non-empty fields override what an outer
// caller already set; empty fields keep it.
func WithCallInfo(ctx context.Context, info CallInfo) context.Context {
	merged := CallInfoFrom(ctx)
	if info.RequestID != "" {
		merged.RequestID = info.RequestID
	}
	if info.Username != "" {
		merged.Username = info.Username
	}
	if info.Source != "" {
		merged.Source = info.Source
	}
	return context.WithValue(ctx, callInfoKey, merged)
}

// CallInfoFrom returns the call info on ctx, or the zero value.
func CallInfoFrom(ctx context.Context) CallInfo {
	info, _ := ctx.Value(callInfoKey).(CallInfo)
	return info
}

// RequestID returns the request ID on ctx, or "".
func RequestID(ctx context.Context) string {
	return CallInfoFrom(ctx).RequestID
}

// Fields renders the set fields for structured logging.
func (c CallInfo) Fields() []zap.Field {
	fields := make([]zap.Field, 0, 3)
	if c.RequestID != "" {
		fields = append(fields, zap.String("request_id", c.RequestID))
	}
	if c.Username != "" {
		fields = append(fields, zap.String("username", c.Username))
	}
	if c.Source != "" {
		fields = append(fields, zap.String("source", c.Source))
	}
	return fields
}
