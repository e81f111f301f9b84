package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		name string
		in   time.Duration
		want string
	}{
		{name: "zero", in: 0, want: "-"},
		{name: "negative", in: -time.Second, want: "-"},
		{name: "sub millisecond", in: 500 * time.Microsecond, want: "500µs"},
		{name: "truncated", in: 1234567 * time.Microsecond, want: "1.234s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatElapsed(tt.in))
		})
	}
}
