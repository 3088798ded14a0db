package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSchedule(t *testing.T) {
	s, err := ParseSchedule([]string{"2", "3"})
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, s.Period)
	assert.Equal(t, 3, s.Count)
}

func TestParseSchedule_WrongArgumentCount(t *testing.T) {
	for _, args := range [][]string{nil, {"2"}, {"2", "3", "4"}} {
		_, err := ParseSchedule(args)
		assert.ErrorIs(t, err, ErrUsage, "args %v", args)
	}
}

func TestParseSchedule_NonNumericIsZero(t *testing.T) {
	s, err := ParseSchedule([]string{"abc", "x"})
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), s.Period)
	assert.Equal(t, 0, s.Count)
}

func TestParseSchedule_HugePeriodClamps(t *testing.T) {
	longest := time.Duration(MaxPeriodSeconds) * time.Second

	tests := []struct {
		input    string
		expected time.Duration
	}{
		{"10000000000", longest},
		{"99999999999999", longest},
		{"99999999999999999999999", longest},
		{"9223372036", longest},
		{"9223372035", 9223372035 * time.Second},
		{"-10000000000", time.Duration(MinPeriodSeconds) * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			s, err := ParseSchedule([]string{tt.input, "1"})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, s.Period)
			if tt.input[0] != '-' {
				assert.Positive(t, s.Period)
			}
		})
	}
}

func TestParseLenientInt(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"5", 5},
		{"  42", 42},
		{"+7", 7},
		{"-3", -3},
		{"12abc", 12},
		{"007", 7},
		{"abc", 0},
		{"", 0},
		{"-", 0},
		{" \t", 0},
		{"1.9", 1},
		{"99999999999999999999999", int(^uint(0) >> 1)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLenientInt(tt.input))
		})
	}
}
