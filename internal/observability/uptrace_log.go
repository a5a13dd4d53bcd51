package observability

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	otelglobal "go.opentelemetry.io/otel/log/global"
	"go.uber.org/zap/zapcore"
)

const (
	uptraceLogInstrumentation = "battle-arena/internal/platform/logging"
	healthPath                = "/healthz"
	maxLogValueDepth          = 3
)

// uptraceLogCore forwards zap entries to the global OpenTelemetry logger provider.
type uptraceLogCore struct {
	logger otellog.Logger
	level  zapcore.LevelEnabler
	fields []zapcore.Field
}

func newUptraceLogCore(serviceVersion string, level zapcore.LevelEnabler) zapcore.Core {
	return &uptraceLogCore{
		logger: otelglobal.Logger(
			uptraceLogInstrumentation,
			otellog.WithInstrumentationVersion(serviceVersion),
		),
		level: level,
	}
}

func (c *uptraceLogCore) Enabled(level zapcore.Level) bool {
	return c.level.Enabled(level)
}

func (c *uptraceLogCore) With(fields []zapcore.Field) zapcore.Core {
	next := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	next = append(next, c.fields...)
	next = append(next, fields...)
	return &uptraceLogCore{logger: c.logger, level: c.level, fields: next}
}

func (c *uptraceLogCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return ce.AddCore(entry, c)
	}
	return ce
}

func (c *uptraceLogCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	values := encodeFields(c.fields, fields)
	if shouldSkipUptraceLog(entry.Message, values) {
		return nil
	}

	ctx := context.Background()
	severity := toOTelSeverity(entry.Level)
	if !c.logger.Enabled(ctx, otellog.EnabledParameters{Severity: severity, EventName: entry.Message}) {
		return nil
	}

	record := otellog.Record{}
	record.SetTimestamp(entry.Time.UTC())
	record.SetObservedTimestamp(time.Now().UTC())
	record.SetSeverity(severity)
	record.SetSeverityText(entry.Level.CapitalString())
	record.SetEventName(entry.Message)
	record.SetBody(otellog.StringValue(entry.Message))
	if entry.LoggerName != "" {
		values["component"] = entry.LoggerName
	}
	if attrs := buildOTelLogAttributes(values); len(attrs) > 0 {
		record.AddAttributes(attrs...)
	}

	c.logger.Emit(ctx, record)
	return nil
}

func (c *uptraceLogCore) Sync() error {
	return nil
}

func encodeFields(groups ...[]zapcore.Field) map[string]any {
	enc := zapcore.NewMapObjectEncoder()
	for _, fields := range groups {
		for _, field := range fields {
			field.AddTo(enc)
		}
	}
	return enc.Fields
}

func shouldSkipUptraceLog(msg string, values map[string]any) bool {
	if msg != "http request" {
		return false
	}
	path, ok := values["path"].(string)
	return ok && path == healthPath
}

func buildOTelLogAttributes(values map[string]any) []otellog.KeyValue {
	if len(values) == 0 {
		return nil
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	attrs := make([]otellog.KeyValue, 0, len(keys))
	for _, key := range keys {
		name := key
		if strings.TrimSpace(name) == "" {
			name = "arg"
		}
		attrs = append(attrs, otellog.KeyValue{Key: name, Value: toOTelLogValue(values[key], 0)})
	}
	return attrs
}

func toOTelSeverity(level zapcore.Level) otellog.Severity {
	switch {
	case level <= zapcore.DebugLevel:
		return otellog.SeverityDebug
	case level == zapcore.InfoLevel:
		return otellog.SeverityInfo
	case level == zapcore.WarnLevel:
		return otellog.SeverityWarn
	case level >= zapcore.DPanicLevel:
		return otellog.SeverityFatal
	default:
		return otellog.SeverityError
	}
}

func toOTelLogValue(value any, depth int) otellog.Value {
	if depth >= maxLogValueDepth {
		return otellog.StringValue(fmt.Sprint(value))
	}
	if value == nil {
		return otellog.Value{}
	}

	switch v := value.(type) {
	case string:
		return otellog.StringValue(v)
	case bool:
		return otellog.BoolValue(v)
	case int:
		return otellog.IntValue(v)
	case int32:
		return otellog.Int64Value(int64(v))
	case int64:
		return otellog.Int64Value(v)
	case uint32:
		return otellog.Int64Value(int64(v))
	case uint64:
		if v > math.MaxInt64 {
			return otellog.StringValue(fmt.Sprint(v))
		}
		return otellog.Int64Value(int64(v))
	case float64:
		return otellog.Float64Value(v)
	case []byte:
		return otellog.BytesValue(append([]byte(nil), v...))
	case time.Time:
		return otellog.StringValue(v.UTC().Format(time.RFC3339Nano))
	case time.Duration:
		return otellog.StringValue(v.String())
	case error:
		return otellog.StringValue(v.Error())
	case fmt.Stringer:
		return otellog.StringValue(v.String())
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return otellog.Value{}
		}
		return toOTelLogValue(rv.Elem().Interface(), depth+1)
	case reflect.Slice, reflect.Array:
		items := make([]otellog.Value, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			items = append(items, toOTelLogValue(rv.Index(i).Interface(), depth+1))
		}
		return otellog.SliceValue(items...)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return otellog.StringValue(fmt.Sprint(value))
		}
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			return keys[i].String() < keys[j].String()
		})
		kvs := make([]otellog.KeyValue, 0, len(keys))
		for _, key := range keys {
			kvs = append(kvs, otellog.KeyValue{
				Key:   key.String(),
				Value: toOTelLogValue(rv.MapIndex(key).Interface(), depth+1),
			})
		}
		return otellog.MapValue(kvs...)
	default:
		return otellog.StringValue(fmt.Sprint(value))
	}
}
