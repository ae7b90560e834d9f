package mcp

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type contextKey int

const requestIDKey contextKey = iota

// RequestID returns the id assigned to the current tool call.
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

// requestMiddleware tags each tool call with an id and logs its outcome.
func requestMiddleware(logger *slog.Logger) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if method != "tools/call" {
				return next(ctx, method, req)
			}

			id := uuid.NewString()
			ctx = context.WithValue(ctx, requestIDKey, id)
			tool := ""
			if p, ok := safeParams(req).(*sdkmcp.CallToolParamsRaw); ok && p != nil {
				tool = p.Name
			}

			start := time.Now()
			result, err := next(ctx, method, req)
			attrs := []any{"request_id", id, "tool", tool, "duration", time.Since(start)}
			switch {
			case err != nil:
				logger.Warn("tool call failed", append(attrs, "error", err)...)
			case isToolError(result):
				logger.Info("tool returned error", attrs...)
			default:
				logger.Debug("tool call finished", attrs...)
			}
			return result, err
		}
	}
}

func isToolError(result sdkmcp.Result) bool {
	r, ok := result.(*sdkmcp.CallToolResult)
	return ok && r != nil && r.IsError
}
