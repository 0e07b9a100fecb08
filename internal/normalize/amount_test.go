package normalize

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAmount(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain integer", "251200", "251200"},
		{"dot thousands", "251.200", "251200"},
		{"multiple dot groups", "1.251.200", "1251200"},
		{"dot decimal two digits", "251.20", "251.2"},
		{"dot decimal one digit", "251.2", "251.2"},
		{"comma thousands", "251,200", "251200"},
		{"comma decimal", "251,20", "251.2"},
		{"comma decimal one digit", "251,5", "251.5"},
		{"mixed comma wins", "1.234,56", "1234.56"},
		{"mixed dot wins", "1,234.56", "1234.56"},
		{"mixed large", "251.200,50", "251200.5"},
		{"currency symbol", "$251.200,50", "251200.5"},
		{"currency and spaces", "COP $ 1.234.567", "1234567"},
		{"zero", "0", "0"},
		{"garbage", "N/A", "0"},
		{"empty", "", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want, err := decimal.NewFromString(tt.want)
			if err != nil {
				t.Fatalf("bad want %q: %v", tt.want, err)
			}
			got := Amount(tt.in)
			assert.True(t, want.Equal(got), "Amount(%q) = %s, want %s", tt.in, got, want)
		})
	}
}

func TestAmountDeterministic(t *testing.T) {
	for _, in := range []string{"251.200", "1.234,56", "garbage", "999,99"} {
		first := Amount(in)
		for i := 0; i < 10; i++ {
			assert.True(t, first.Equal(Amount(in)), "Amount(%q) not stable", in)
		}
	}
}

func TestAmountIdempotent(t *testing.T) {
	// Re-normalizing an already-clean decimal string is stable.
	for _, in := range []string{"251.200,50", "1.234,56", "42", "99,9"} {
		once := Amount(in)
		twice := Amount(once.String())
		assert.True(t, once.Equal(twice), "normalize not idempotent for %q: %s vs %s", in, once, twice)
	}
}
