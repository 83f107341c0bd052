package classification

import (
	"testing"

	"github.com/sthwalo/acc-sub003/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainDetector_Bonus(t *testing.T) {
	d, err := NewDomainDetector(DetectorPattern{
		Name:         "Fuel",
		DetailsRegex: `\b(ENGEN|SASOL)\b`,
		RuleRegex:    `fuel`,
		Bonus:        0.4,
	})
	require.NoError(t, err)
	assert.Equal(t, "Fuel", d.Name())

	fuelRule := model.ClassificationRule{Pattern: "garage", AccountName: "Fuel and Oil"}
	rentRule := model.ClassificationRule{Pattern: "rent", AccountName: "Rent Paid"}

	assert.InDelta(t, 0.4, d.Bonus("engen sandton", fuelRule), 1e-9)
	assert.Zero(t, d.Bonus("ENGEN SANDTON", rentRule))
	assert.Zero(t, d.Bonus("WOOLWORTHS", fuelRule))
}

func TestNewDomainDetector_Errors(t *testing.T) {
	tests := []struct {
		name    string
		pattern DetectorPattern
	}{
		{name: "bad details regex", pattern: DetectorPattern{Name: "x", DetailsRegex: "([", RuleRegex: "a", Bonus: 0.1}},
		{name: "bad rule regex", pattern: DetectorPattern{Name: "x", DetailsRegex: "a", RuleRegex: "([", Bonus: 0.1}},
		{name: "bonus too large", pattern: DetectorPattern{Name: "x", DetailsRegex: "a", RuleRegex: "a", Bonus: 1.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDomainDetector(tt.pattern)
			assert.Error(t, err)
		})
	}
}

func TestDefaultDetectors(t *testing.T) {
	detectors := DefaultDetectors()
	assert.Len(t, detectors, len(DefaultDetectorPatterns()))

	insurance := model.ClassificationRule{Pattern: "insurance", AccountCode: AccountInsurance, AccountName: "Insurance"}
	var total float64
	for _, d := range detectors {
		total += d.Bonus("DEBIT ORDER OLD MUTUAL", insurance)
	}
	assert.InDelta(t, DefaultBonus, total, 1e-9)
}
