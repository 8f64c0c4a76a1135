package orchestrator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	cause := errors.New("connection refused")

	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "with cause",
			err:  newError(KindNetworkFailure, "extraction service unreachable", cause),
			want: "network_failure: extraction service unreachable: connection refused",
		},
		{
			name: "without cause",
			err:  newError(KindInvalidInput, "url is required", nil),
			want: "invalid_input: url is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := newError(KindRemoteFailure, "malformed report", cause)
	assert.ErrorIs(t, err, cause)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindExportFailure, KindOf(newError(KindExportFailure, "x", nil)))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.Equal(t, Kind(""), KindOf(nil))
}
