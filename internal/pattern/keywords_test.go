package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		name    string
		details string
		want    []string
		limit   int
	}{
		{
			name:    "drops stop-words and numbers",
			details: "DEBIT ORDER OUTSURANCE POLICY 88213",
			limit:   3,
			want:    []string{"outsurance", "policy"},
		},
		{
			name:    "frequency then length",
			details: "ENGEN GARAGE ENGEN SANDTON",
			limit:   2,
			want:    []string{"engen", "sandton"},
		},
		{
			name:    "limit applies",
			details: "VODACOM AIRTIME PREPAID BUNDLE",
			limit:   1,
			want:    []string{"vodacom"},
		},
		{
			name:    "default limit",
			details: "alpha bravo charlie delta echo",
			limit:   0,
			want:    []string{"charlie", "alpha", "bravo"},
		},
		{
			name:    "punctuation and mixed tokens",
			details: "PAYMENT TO CITY-OF-JOBURG REF#123 INV2024",
			limit:   5,
			want:    []string{"joburg", "city"},
		},
		{
			name:    "nothing usable",
			details: "IB PAYMENT 12345",
			limit:   3,
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractKeywords(tt.details, tt.limit))
		})
	}
}

func TestSignificantKeyword(t *testing.T) {
	assert.Equal(t, "engen", SignificantKeyword([]string{"bp", "engen"}))
	assert.Equal(t, "shell", SignificantKeyword([]string{"shell"}))
	assert.Equal(t, "sap", SignificantKeyword([]string{"sap", "abc"}))
	assert.Equal(t, "", SignificantKeyword(nil))
}
