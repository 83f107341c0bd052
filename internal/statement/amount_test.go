package statement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "1,234.56", want: "1234.56"},
		{input: "1 234.56", want: "1234.56"},
		{input: "1234.56", want: "1234.56"},
		{input: "0.99", want: "0.99"},
		{input: "12,345,678.00", want: "12345678"},
		{input: "", wantErr: true},
		{input: "1.2.3", wantErr: true},
		{input: "-5.00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestFindAmounts(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{line: "SALARY PAYMENT FROM ACME 10,000.00 15,000.00", want: []string{"10,000.00", "15,000.00"}},
		{line: "FEE 1 234.56 9 876.54", want: []string{"1 234.56", "9 876.54"}},
		{line: "INV 2024 500.00", want: []string{"500.00"}},
		{line: "REF 12345 100.00", want: []string{"100.00"}},
		{line: "IB PAYMENT TO ACME REF 789 250.00 5,000.00", want: []string{"250.00", "5,000.00"}},
		{line: "CASH DEPOSIT 1 500.00 15 429.65", want: []string{"1 500.00", "15 429.65"}},
		{line: "NO AMOUNTS HERE 12.5", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			tokens := findAmounts(tt.line)
			got := make([]string, 0, len(tokens))
			for _, tok := range tokens {
				got = append(got, tok.text)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStripAmounts(t *testing.T) {
	assert.Equal(t, "SALARY PAYMENT FROM ACME", stripAmounts("SALARY  PAYMENT FROM ACME 10,000.00 15,000.00"))
}
