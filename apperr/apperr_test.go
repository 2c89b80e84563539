package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKind(t *testing.T) {
	tests := []struct {
		err      error
		expected string
	}{
		{fmt.Errorf("%w: bad username", ErrValidation), "validation"},
		{fmt.Errorf("%w: duplicate", ErrConflict), "conflict"},
		{fmt.Errorf("wrapped: %w", fmt.Errorf("%w: skin", ErrNotFound)), "not_found"},
		{fmt.Errorf("%w: dial tcp", ErrNetwork), "network"},
		{errors.New("boom"), "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := Kind(tt.err); got != tt.expected {
				t.Errorf("Kind(%v) = %q, want %q", tt.err, got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(nil); got != "" {
		t.Errorf("UserMessage(nil) = %q, want empty", got)
	}

	netErr := fmt.Errorf("%w: dial tcp 127.0.0.1:1: connection refused", ErrNetwork)
	if got := UserMessage(netErr); got != NetworkMessage {
		t.Errorf("UserMessage(network) = %q, want %q", got, NetworkMessage)
	}

	valErr := fmt.Errorf("%w: username must be 3-16 characters", ErrValidation)
	if got := UserMessage(valErr); got != valErr.Error() {
		t.Errorf("UserMessage(validation) = %q, want %q", got, valErr.Error())
	}
}
