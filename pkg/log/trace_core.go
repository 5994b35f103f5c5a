// Copyright 2025 Arcentra Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	tracectx "github.com/arcentrix/ringlane/pkg/trace/context"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// traceCore is a zapcore.Core wrapper that stamps trace/span ids onto entries.
type traceCore struct {
	zapcore.Core
}

func (tc *traceCore) With(fields []zapcore.Field) zapcore.Core {
	return &traceCore{Core: tc.Core.With(fields)}
}

func (tc *traceCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	ctx := tracectx.GetContext()
	if ctx == nil {
		return tc.Core.Write(entry, fields)
	}

	span := trace.SpanFromContext(ctx)
	spanCtx := span.SpanContext()
	if !spanCtx.IsValid() {
		return tc.Core.Write(entry, fields)
	}

	traceID := spanCtx.TraceID()
	spanID := spanCtx.SpanID()
	if traceID.IsValid() && spanID.IsValid() {
		traceFields := []zapcore.Field{
			zap.String("trace_id", traceID.String()),
			zap.String("span_id", spanID.String()),
		}
		if spanCtx.TraceFlags() != 0 {
			traceFields = append(traceFields, zap.Uint8("trace_flags", uint8(spanCtx.TraceFlags())))
		}
		fields = append(traceFields, fields...)
	}

	return tc.Core.Write(entry, fields)
}

func (tc *traceCore) Enabled(level zapcore.Level) bool {
	return tc.Core.Enabled(level)
}

func (tc *traceCore) Check(entry zapcore.Entry, checkedEntry *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	return tc.Core.Check(entry, checkedEntry)
}

func (tc *traceCore) Sync() error {
	return tc.Core.Sync()
}

// wrapCoreWithTrace wraps core so every write carries the active span's ids.
func wrapCoreWithTrace(core zapcore.Core) zapcore.Core {
	return &traceCore{Core: core}
}
