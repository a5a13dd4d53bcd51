package httpapi

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var apiTracer = otel.Tracer("battle-arena/internal/interfaces/httpapi")
var noopSpan = trace.SpanFromContext(context.Background())

const (
	attrBattleID = attribute.Key("arena.battle.id")
	attrUserID   = attribute.Key("arena.user.id")
	attrCallerID = attribute.Key("arena.caller.id")
)

// startSpan only opens child spans of a traced request, and only for
// handlers and authentication. Health checks carry no parent span.
func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if !trace.SpanFromContext(ctx).SpanContext().IsValid() || !shouldCreateHTTPAPISpan(name) {
		return ctx, noopSpan
	}
	return apiTracer.Start(ctx, name)
}

func shouldCreateHTTPAPISpan(name string) bool {
	return strings.HasPrefix(name, "httpapi.Handler.") || name == "httpapi.RequireAuth"
}

// requestInfo holds the arena identifiers resolved while serving one request.
// RequestLogging owns it; inner handlers fill it in.
type requestInfo struct {
	callerID string
	battleID string
	userID   string
}

type requestInfoKey struct{}

func withRequestInfo(ctx context.Context) (context.Context, *requestInfo) {
	info := &requestInfo{}
	return context.WithValue(ctx, requestInfoKey{}, info), info
}

func requestInfoFromContext(ctx context.Context) *requestInfo {
	info, _ := ctx.Value(requestInfoKey{}).(*requestInfo)
	return info
}

func annotateBattle(ctx context.Context, span trace.Span, battleID string) {
	span.SetAttributes(attrBattleID.String(battleID))
	if info := requestInfoFromContext(ctx); info != nil {
		info.battleID = battleID
	}
}

func annotateUser(ctx context.Context, span trace.Span, userID string) {
	span.SetAttributes(attrUserID.String(userID))
	if info := requestInfoFromContext(ctx); info != nil {
		info.userID = userID
	}
}

func annotateCaller(ctx context.Context, span trace.Span, callerID string) {
	span.SetAttributes(attrCallerID.String(callerID))
	if info := requestInfoFromContext(ctx); info != nil {
		info.callerID = callerID
	}
}
