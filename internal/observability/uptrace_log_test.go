package observability

import (
	"errors"
	"testing"

	otellog "go.opentelemetry.io/otel/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestShouldSkipUptraceLog(t *testing.T) {
	if !shouldSkipUptraceLog("http request", map[string]any{"path": "/healthz"}) {
		t.Fatalf("expected health check log to be skipped")
	}
	if shouldSkipUptraceLog("http request", map[string]any{"path": "/v1/battles/active"}) {
		t.Fatalf("did not expect non-health log to be skipped")
	}
	if shouldSkipUptraceLog("event publish failed", map[string]any{"path": "/healthz"}) {
		t.Fatalf("did not expect non-request log to be skipped")
	}
}

func TestEncodeFieldsAndAttributes(t *testing.T) {
	values := encodeFields(
		[]zapcore.Field{zap.String("component_id", "sweeper")},
		[]zapcore.Field{
			zap.String("battle_id", "battle-1"),
			zap.Int("attempt", 2),
			zap.NamedError("error", errors.New("boom")),
		},
	)

	attrs := buildOTelLogAttributes(values)
	if len(attrs) != 4 {
		t.Fatalf("expected 4 attributes, got %d", len(attrs))
	}
	// Attributes are sorted by key.
	if attrs[0].Key != "attempt" || attrs[0].Value.AsInt64() != 2 {
		t.Fatalf("unexpected attempt attribute: %+v", attrs[0])
	}
	if attrs[1].Key != "battle_id" || attrs[1].Value.AsString() != "battle-1" {
		t.Fatalf("unexpected battle_id attribute: %+v", attrs[1])
	}
	if attrs[3].Key != "error" || attrs[3].Value.AsString() != "boom" {
		t.Fatalf("unexpected error attribute: %+v", attrs[3])
	}
}

func TestToOTelLogValue_Map(t *testing.T) {
	v := toOTelLogValue(map[string]any{
		"votes_a": 6,
		"draw":    false,
	}, 0)
	if v.Kind() != otellog.KindMap {
		t.Fatalf("expected map value, got %s", v.Kind())
	}
	if items := v.AsMap(); len(items) != 2 {
		t.Fatalf("expected 2 map items, got %d", len(items))
	}
}

func TestUptraceLogCore_RespectsLevel(t *testing.T) {
	core := newUptraceLogCore("test", zapcore.WarnLevel)
	if core.Enabled(zapcore.InfoLevel) {
		t.Fatalf("info should be disabled for a warn core")
	}
	if !core.Enabled(zapcore.ErrorLevel) {
		t.Fatalf("error should be enabled for a warn core")
	}
	child := core.With([]zapcore.Field{zap.String("battle_id", "battle-1")})
	if err := child.Write(zapcore.Entry{Level: zapcore.ErrorLevel, Message: "settle failed"}, nil); err != nil {
		t.Fatalf("write: %v", err)
	}
}
