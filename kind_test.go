package capgains

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyLabel(t *testing.T) {
	tests := []struct {
		label string
		want  Kind
	}{
		{"Investment in Stock", Acquire},
		{"INVESTMENT IN FUND", Acquire},
		{"SIP Investment", Acquire},
		{"Dividend Reinvestment", Acquire},
		{"Bonus", Acquire},
		{"Merger Investment", Acquire},
		{"Demerger Investment", Acquire},
		{"Switch Investment", Acquire},
		{" Stock Split ", Split},
		{"Sell/Redemption", Dispose},
		{"Merger Redemption", Dispose},
		{"Demerger Redemption", Dispose},
		{"Switch Redemption", Dispose},
		{"Dividend", Other},
		{"Rights", Other},
		{"SWP Redemption", Other},
		{"", Other},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyLabel(tt.label), tt.label)
	}
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 1, Priority("Investment in Stock"))
	assert.Equal(t, 7, Priority("stock split"))
	assert.Equal(t, 10, Priority("DIVIDEND"))
	assert.Equal(t, 90, Priority("Sell/Redemption"))
	assert.Equal(t, 93, Priority("SWP Redemption"))
	assert.Equal(t, UnrankedPriority, Priority("Switch Redemption"))
	assert.Equal(t, UnrankedPriority, Priority("unknown"))

	// same day, acquisitions come before disposals.
	assert.Less(t, Priority(LabelBonus), Priority(LabelSellRedemption))
}

func TestNewTransaction(t *testing.T) {
	got := tx("2020-04-01", "ACME", "A", " sell/redemption", -5, 10)
	assert.Equal(t, Dispose, got.Kind)
	assert.Equal(t, "SELL/REDEMPTION", got.Label)
	assert.Equal(t, 90, got.Priority)
	assert.Equal(t, "Q1", got.Quarter)
	assert.Equal(t, "FY2020-2021", got.FY)
	assertQ(t, -5, got.Quantity)
}

func TestKind_MarshalText(t *testing.T) {
	b, err := Split.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "SPLIT", string(b))
	assert.Equal(t, "OTHER", Other.String())
}
