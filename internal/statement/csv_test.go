package statement

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleExport = `Bokföringsdatum;Verifikationsnummer;Text;Belopp
2025-03-10;V100;ICA SUPERMARKET STOCKHOLM;-450,50
2025-03-11;V101;LÖN FEBRUARI;32 000,00
2025-03-12;V102;SL ACCESS;-890,00 kr
`

func TestParseCSV(t *testing.T) {
	transactions, err := ParseCSV(strings.NewReader(sampleExport))
	require.NoError(t, err)
	require.Len(t, transactions, 3)

	first := transactions[0]
	assert.Equal(t, "V100", first.VerificationID)
	assert.Equal(t, "2025-03-10", first.Date.Format("2006-01-02"))
	assert.Equal(t, "ICA SUPERMARKET STOCKHOLM", first.Description)
	assert.Equal(t, "-450.5", first.Amount.String())
	assert.NotEmpty(t, first.ID)

	assert.Equal(t, "32000", transactions[1].Amount.String(), "grouped thousands")
	assert.Equal(t, "-890", transactions[2].Amount.String(), "currency suffix")
}

func TestParseCSVDerivesStableReference(t *testing.T) {
	export := "Datum;Text;Belopp\n2025-03-10;ICA SUPERMARKET;-450,50\n"

	first, err := ParseCSV(strings.NewReader(export))
	require.NoError(t, err)
	second, err := ParseCSV(strings.NewReader(export))
	require.NoError(t, err)

	require.NotEmpty(t, first[0].VerificationID)
	assert.Equal(t, first[0].VerificationID, second[0].VerificationID,
		"derived references must be stable across parses")
	assert.NotEqual(t, first[0].ID, second[0].ID,
		"internal ids must still be unique per parse")
}

func TestParseCSVSkipsEmptyRows(t *testing.T) {
	export := "Datum;Text;Belopp\n2025-03-10;ICA;-450,50\n;;\n"
	transactions, err := ParseCSV(strings.NewReader(export))
	require.NoError(t, err)
	assert.Len(t, transactions, 1)
}

func TestParseCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "missing amount column", input: "Datum;Text\n2025-03-10;ICA\n"},
		{name: "bad date", input: "Datum;Text;Belopp\nyesterday;ICA;-450,50\n"},
		{name: "bad amount", input: "Datum;Text;Belopp\n2025-03-10;ICA;tretton\n"},
		{name: "missing description", input: "Datum;Text;Belopp\n2025-03-10;;-450,50\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}
