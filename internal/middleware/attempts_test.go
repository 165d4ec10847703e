package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffDelay(t *testing.T) {
	tests := []struct {
		attempts int64
		want     time.Duration
	}{
		{0, 0},
		{1, 0},
		{2, 0},
		{3, 2 * time.Second},
		{4, 4 * time.Second},
		{5, 8 * time.Second},
		{11, 512 * time.Second},
		{12, 10 * time.Minute}, // capped
		{40, 10 * time.Minute},
		{1000, 10 * time.Minute},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BackoffDelay(tt.attempts), "attempts=%d", tt.attempts)
	}
}
