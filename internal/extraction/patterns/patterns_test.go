// internal/extraction/patterns/patterns_test.go
package patterns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// FICO
// ==========================

func TestFICO(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		expectNil   bool
		expectedMin int
		expectedMax *int
	}{
		{
			name:        "number adjacent to token",
			text:        "Minimum FICO 680 required",
			expectedMin: 680,
		},
		{
			name:        "number before token",
			text:        "680+ FICO for all tiers",
			expectedMin: 680,
		},
		{
			name:        "range across adjacent numbers",
			text:        "FICO 650 floor\nFICO 720 preferred",
			expectedMin: 650,
			expectedMax: intp(720),
		},
		{
			name:        "credit score fallback line scan",
			text:        "Credit score of 700 or better",
			expectedMin: 700,
		},
		{
			name:      "no trigger keywords",
			text:      "Loan amounts from $10,000 to $100,000",
			expectNil: true,
		},
		{
			name:      "trigger but no in-range number",
			text:      "FICO required, see addendum",
			expectNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FICO(tt.text)
			if tt.expectNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			require.NotNil(t, got.MinScore)
			assert.Equal(t, tt.expectedMin, *got.MinScore)
			if tt.expectedMax == nil {
				assert.Nil(t, got.MaxScore)
			} else {
				require.NotNil(t, got.MaxScore)
				assert.Equal(t, *tt.expectedMax, *got.MaxScore)
			}
		})
	}
}

// ==========================
// PayNet
// ==========================

func TestPayNet(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		expectNil   bool
		expectedMin int
	}{
		{
			name:        "score after token",
			text:        "PayNet score of 70 required",
			expectedMin: 70,
		},
		{
			name: "number before token wins over FICO on same line",
			// The 650 belongs to PayNet, not the 670 FICO next to it.
			text:        "650+ PayNet, 670+ FICO",
			expectedMin: 65,
		},
		{
			name:        "three digit artifact converted by dividing by ten",
			text:        "PayNet 685 minimum",
			expectedMin: 68,
		},
		{
			name:      "no trigger keywords",
			text:      "FICO 700 required",
			expectNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PayNet(tt.text)
			if tt.expectNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			require.NotNil(t, got.MinScore)
			assert.Equal(t, tt.expectedMin, *got.MinScore)
		})
	}
}

// ==========================
// Loan Amounts
// ==========================

func TestLoanAmounts(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		expectNil   bool
		expectedMin int
		expectedMax int
	}{
		{
			name:        "explicit dollar range",
			text:        "Net Financed $15,000 to $50,000",
			expectedMin: 15000,
			expectedMax: 50000,
		},
		{
			name:        "K suffix",
			text:        "Tickets from $25K to $150K",
			expectedMin: 25000,
			expectedMax: 150000,
		},
		{
			name:        "M suffix",
			text:        "$1M maximum, $50,000 minimum",
			expectedMin: 50000,
			expectedMax: 1_000_000,
		},
		{
			name:        "up to phrasing caps with implicit zero minimum",
			text:        "App-only up to $250K",
			expectedMin: 0,
			expectedMax: 250000,
		},
		{
			name:      "amounts outside plausible band ignored",
			text:      "$500 documentation fee",
			expectNil: true,
		},
		{
			name:      "no amounts at all",
			text:      "FICO 700 required",
			expectNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LoanAmounts(tt.text)
			if tt.expectNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.expectedMin, got.MinAmount)
			assert.Equal(t, tt.expectedMax, got.MaxAmount)
		})
	}
}

// ==========================
// Time in Business
// ==========================

func TestTimeInBusiness(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		expectNil     bool
		expectedYears int
	}{
		{
			name:          "trigger line with number",
			text:          "Time in business: 3 years minimum",
			expectedYears: 3,
		},
		{
			name:          "TIB abbreviation",
			text:          "TIB 2+",
			expectedYears: 2,
		},
		{
			name:          "lowest number on trigger line wins",
			text:          "Years in business 5 preferred, 2 minimum",
			expectedYears: 2,
		},
		{
			name:      "no trigger",
			text:      "FICO 700",
			expectNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TimeInBusiness(tt.text)
			if tt.expectNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.expectedYears, got.MinYears)
		})
	}
}

// ==========================
// Geographic
// ==========================

func TestGeographic(t *testing.T) {
	t.Run("excluded states", func(t *testing.T) {
		got := Geographic("Excluded states: CA, NV")
		require.NotNil(t, got)
		assert.Equal(t, []string{"CA", "NV"}, got.ExcludedStates)
		assert.Empty(t, got.AllowedStates)
	})

	t.Run("allowed states", func(t *testing.T) {
		got := Geographic("Approved states: TX, OK")
		require.NotNil(t, got)
		assert.Equal(t, []string{"TX", "OK"}, got.AllowedStates)
		assert.Empty(t, got.ExcludedStates)
	})

	t.Run("repeated occurrences deduplicated", func(t *testing.T) {
		got := Geographic("Excluded states: CA. We will not fund CA deals.")
		require.NotNil(t, got)
		assert.Equal(t, []string{"CA"}, got.ExcludedStates)
	})

	t.Run("no state codes", func(t *testing.T) {
		assert.Nil(t, Geographic("FICO 700 required"))
	})
}

// ==========================
// Industry
// ==========================

func TestIndustry(t *testing.T) {
	t.Run("trucking exclusion", func(t *testing.T) {
		got := Industry("No trucking or over-the-road hauling")
		require.NotNil(t, got)
		assert.Equal(t, []string{"Trucking"}, got.ExcludedIndustries)
	})

	t.Run("no triggers", func(t *testing.T) {
		assert.Nil(t, Industry("FICO 700 required"))
	})
}

// ==========================
// Equipment
// ==========================

func TestEquipment(t *testing.T) {
	t.Run("max age first pattern wins", func(t *testing.T) {
		got := Equipment("Maximum equipment age: 10 years")
		require.NotNil(t, got)
		require.NotNil(t, got.MaxEquipmentAgeYears)
		assert.Equal(t, 10, *got.MaxEquipmentAgeYears)
	})

	t.Run("age outside 1-50 rejected", func(t *testing.T) {
		assert.Nil(t, Equipment("Maximum equipment age: 99 years"))
	})

	t.Run("excluded types from flagged lines", func(t *testing.T) {
		got := Equipment("Excluded equipment: Aircraft, Boats, Copiers")
		require.NotNil(t, got)
		assert.Contains(t, got.ExcludedTypes, "Boats")
		assert.Contains(t, got.ExcludedTypes, "Copiers")
	})

	t.Run("no semi phrasing adds hardcoded exclusion", func(t *testing.T) {
		got := Equipment("No semi trucks accepted")
		require.NotNil(t, got)
		assert.Contains(t, got.ExcludedTypes, "Semi/Tractor")
	})

	t.Run("nothing found", func(t *testing.T) {
		assert.Nil(t, Equipment("FICO 700 required"))
	})
}

// ==========================
// Minimum Revenue
// ==========================

func TestMinRevenue(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		expectNil bool
		expected  int
	}{
		{name: "min revenue label", text: "Minimum revenue: $500,000", expected: 500000},
		{name: "at least phrasing", text: "Revenue of at least $750,000", expected: 750000},
		{name: "amount before keyword with M suffix", text: "$2M annual revenue", expected: 2_000_000},
		{name: "no trigger", text: "FICO 700", expectNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MinRevenue(tt.text)
			if tt.expectNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.expected, *got)
		})
	}
}

// ==========================
// Section Assembly
// ==========================

func TestFromSection_DefaultLoanAmount(t *testing.T) {
	cs := FromSection("FICO 700 required")

	require.NotNil(t, cs.LoanAmount)
	assert.Equal(t, 5000, cs.LoanAmount.MinAmount)
	assert.Equal(t, 500000, cs.LoanAmount.MaxAmount)
	require.NotNil(t, cs.Fico)
	assert.Nil(t, cs.Paynet)
}

func intp(v int) *int { return &v }
