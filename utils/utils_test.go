package utils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"45 000 ₽", 45000, true},
		{"45 000", 45000, true},
		{"1 250 000 руб.", 1250000, true},
		{"48500", 48500, true},
		{"цена по запросу", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParsePrice(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "0", FormatPrice(0))
	assert.Equal(t, "999", FormatPrice(999))
	assert.Equal(t, "48 500", FormatPrice(48500))
	assert.Equal(t, "1 000 000", FormatPrice(1000000))
	assert.Equal(t, "-3 500", FormatPrice(-3500))
}

func TestSleepHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := Sleep(ctx, time.Minute)
	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)

	assert.NoError(t, Sleep(context.Background(), time.Millisecond))
	assert.NoError(t, Sleep(context.Background(), 0))
}

func TestNewLogger(t *testing.T) {
	log, err := NewLogger("debug", true)
	require.NoError(t, err)
	assert.NotNil(t, log)

	_, err = NewLogger("loud", false)
	assert.Error(t, err)
}
