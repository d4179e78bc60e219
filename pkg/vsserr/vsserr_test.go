package vsserr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, Unknown},
		{"conflict", Conflictf("engine.Put", "stale version"), Conflict},
		{"invalid", Invalidf("engine.Put", "empty store_id"), InvalidRequest},
		{"wrapped", fmt.Errorf("outer: %w", Internalf("pg.Exec", "boom")), Internal},
		{"plain", errors.New("unclassified"), Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("rows affected 0")
	err := Wrap("engine.Delete", Conflict, cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "engine.Delete: CONFLICT: rows affected 0", err.Error())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "CONFLICT", Conflict.String())
	assert.Equal(t, "NO_SUCH_KEY", NoSuchKey.String())
	assert.Equal(t, "UNKNOWN", Unknown.String())
}
