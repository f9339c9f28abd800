package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want *zapcore.Level
	}{
		{"debug", levelPtr(zapcore.DebugLevel)},
		{"info", levelPtr(zapcore.InfoLevel)},
		{"warn", levelPtr(zapcore.WarnLevel)},
		{"error", levelPtr(zapcore.ErrorLevel)},
		{"verbose", nil},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := parseLevel(tt.in)
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("parseLevel(%q) = %v, want nil", tt.in, *got)
			case tt.want != nil && (got == nil || *got != *tt.want):
				t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, *tt.want)
			}
		})
	}
}

func TestNewAndWith(t *testing.T) {
	for _, pretty := range []bool{true, false} {
		l := New("error", pretty)
		child := l.With(String("component", "test"))
		child.Info("discarded below error level")
		_ = l.Sync()
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Error("nothing happens", Error(nil), Int("n", 1), Bool("b", true))
	l.With(Any("k", "v")).Warnf("still %s", "nothing")
}

func levelPtr(l zapcore.Level) *zapcore.Level { return &l }
