package platform

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	base := errors.New("http 403")
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, KindUnknown},
		{"plain error", base, KindUnknown},
		{"forbidden", NewError(KindForbidden, "send", base), KindForbidden},
		{"wrapped not found", fmt.Errorf("resolve seller: %w", NewError(KindNotFound, "member", nil)), KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	base := errors.New("boom")
	err := NewError(KindUnavailable, "edit", base)
	if !errors.Is(err, base) {
		t.Error("errors.Is should see the wrapped error")
	}
	if !IsForbidden(NewError(KindForbidden, "send", nil)) || IsNotFound(err) {
		t.Error("Is* helpers misclassify")
	}
}
