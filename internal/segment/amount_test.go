package segment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sva/internal/segment"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"1.234,56", 1234.56, true},
		{"10.50", 10.50, true},
		{"10,50", 10.50, true},
		{"1050,00", 1050, true},
		{"1,234.56", 1234.56, true},
		{"1.000", 1000, true},
		{"1.234.567,89", 1234567.89, true},
		{"R$ 1.050,00", 1050, true},
		{"100", 100, true},
		{"0,0850", 0.085, true},
		{"", 0, false},
		{"abc", 0, false},
		{"-5", 0, false},
		{"12,", 0, false},
		{"1.2.3", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := segment.ParseAmount(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestIsCurrency(t *testing.T) {
	assert.True(t, segment.IsCurrency("10,50"))
	assert.True(t, segment.IsCurrency("1.050,00"))
	assert.True(t, segment.IsCurrency("R$10.50"))
	assert.True(t, segment.IsCurrency("0,0850"))
	assert.False(t, segment.IsCurrency("100"))
	assert.False(t, segment.IsCurrency("CX"))
	assert.False(t, segment.IsCurrency("10,5"))
}
