package statement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNoise(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{line: "Page 1 of 3", want: true},
		{line: "  page 2  ", want: true},
		{line: "3", want: true},
		{line: "2/4", want: true},
		{line: "Date Description Debit Credit Balance", want: true},
		{line: "Details Service Fee Debits Credits Date Balance", want: true},
		{line: "OPENING BALANCE 5,000.00", want: true},
		{line: "Closing Balance", want: true},
		{line: "Month-end Balance 12,000.00", want: true},
		{line: "TOTAL 12,345.67", want: true},
		{line: "Total Debits 8,000.00", want: true},
		{line: "Statement Period: 01 January 2024 to 31 January 2024", want: true},
		{line: "Account Number 1234 5678 90", want: true},
		{line: "Continued on next page", want: true},
		{line: "VAT Registration No 4123456789", want: true},
		{line: "-----------------------------", want: true},
		{line: "16 01 SALARY PAYMENT FROM ACME 10,000.00 15,000.00", want: false},
		{line: "CONTINUED NOTE", want: false},
		{line: "TOTAL GARAGE SANDTON", want: false},
		{line: "BALANCE BROUGHT FORWARD 5,000.00", want: false},
		{line: "ENGEN GARAGE", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNoise(tt.line))
		})
	}
}
