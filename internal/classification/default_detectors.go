package classification

// DefaultBonus is the score added when a known counterparty matches a rule's account.
const DefaultBonus = 0.6

// DefaultDetectorPatterns returns the built-in counterparty detectors.
func DefaultDetectorPatterns() []DetectorPattern {
	return []DetectorPattern{
		{
			Name:         "Insurers",
			DetailsRegex: `\b(OUTSURANCE|OLD\s*MUTUAL|DISCOVERY|SANLAM|SANTAM|MOMENTUM|HOLLARD|LIBERTY|MIWAY|KING\s*PRICE|BUDGET\s*INS|CLIENTELE|ASSUPOL)\b`,
			RuleRegex:    `insurance|assurance|^84`,
			Bonus:        DefaultBonus,
		},
		{
			Name:         "Fuel Stations",
			DetailsRegex: `\b(ENGEN|SASOL|SHELL|BP|CALTEX|TOTAL\s*ENERGIES|ASTRON|TOTAL\s*GARAGE)\b`,
			RuleRegex:    `fuel|petrol|^83`,
			Bonus:        DefaultBonus,
		},
		{
			Name:         "Telecoms",
			DetailsRegex: `\b(VODACOM|MTN|TELKOM|CELL\s*C|RAIN|AFRIHOST|WEBAFRICA|VOX)\b`,
			RuleRegex:    `telephone|cellphone|internet|communication|^85`,
			Bonus:        DefaultBonus,
		},
		{
			Name:         "Utilities",
			DetailsRegex: `\b(ESKOM|CITY\s*OF|MUNICIPALITY|MUNIC|PREPAID\s*ELEC|RATES\s*AND\s*TAXES|WATER\s*AND\s*SANITATION)\b`,
			RuleRegex:    `electricity|water|utilit|^86`,
			Bonus:        DefaultBonus,
		},
		{
			Name:         "Bank Charges",
			DetailsRegex: `(##|\bSERVICE\s*FEE\b|\bADMIN\s*FEE\b|\bMONTHLY\s*FEE\b|\bCASH\s*DEPOSIT\s*FEE\b|\bLEDGER\s*FEE\b)`,
			RuleRegex:    `bank\s*charges|^88`,
			Bonus:        DefaultBonus,
		},
		{
			Name:         "Payroll",
			DetailsRegex: `\b(SALARY|SALARIES|WAGES|PAYROLL|PAYE|UIF)\b`,
			RuleRegex:    `salar|wages|payroll|^81`,
			Bonus:        DefaultBonus,
		},
	}
}

// DefaultDetectors returns the compiled built-in detectors.
func DefaultDetectors() []Detector {
	detectors, err := NewDetectors(DefaultDetectorPatterns())
	if err != nil {
		panic(err)
	}
	return detectors
}
