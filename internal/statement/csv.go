// Package statement parses bank statement exports into transactions.
package statement

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oskarw/kassa/internal/model"
)

// Swedish banks export semicolon-separated CSV with a header row and decimal
// comma amounts. Column names vary per bank, so headers are matched by
// candidate lists rather than position.
var (
	dateHeaders         = []string{"bokforingsdatum", "transaktionsdatum", "datum", "date"}
	descriptionHeaders  = []string{"text", "beskrivning", "specifikation", "description"}
	amountHeaders       = []string{"belopp", "amount"}
	verificationHeaders = []string{"verifikationsnummer", "referens", "verification"}
)

var dateLayouts = []string{"2006-01-02", "2006/01/02", "02.01.2006"}

// ParseCSV reads a statement export and returns its transactions in file
// order. Rows that cannot be parsed abort the import; a statement is either
// imported whole or not at all.
func ParseCSV(r io.Reader) ([]model.Transaction, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	cols, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	var transactions []model.Transaction
	line := 1
	for {
		record, readErr := reader.Read()
		if readErr == io.EOF {
			break
		}
		line++
		if readErr != nil {
			return nil, fmt.Errorf("line %d: %w", line, readErr)
		}
		if isEmptyRow(record) {
			continue
		}

		txn, rowErr := parseRow(record, cols)
		if rowErr != nil {
			return nil, fmt.Errorf("line %d: %w", line, rowErr)
		}
		transactions = append(transactions, txn)
	}

	return transactions, nil
}

type columns struct {
	date         int
	description  int
	amount       int
	verification int
}

func resolveColumns(header []string) (columns, error) {
	cols := columns{date: -1, description: -1, amount: -1, verification: -1}

	for i, name := range header {
		normalized := normalizeHeader(name)
		switch {
		case cols.date < 0 && matchesAny(normalized, dateHeaders):
			cols.date = i
		case cols.description < 0 && matchesAny(normalized, descriptionHeaders):
			cols.description = i
		case cols.amount < 0 && matchesAny(normalized, amountHeaders):
			cols.amount = i
		case cols.verification < 0 && matchesAny(normalized, verificationHeaders):
			cols.verification = i
		}
	}

	switch {
	case cols.date < 0:
		return cols, fmt.Errorf("no date column found in header %v", header)
	case cols.description < 0:
		return cols, fmt.Errorf("no description column found in header %v", header)
	case cols.amount < 0:
		return cols, fmt.Errorf("no amount column found in header %v", header)
	}
	return cols, nil
}

func parseRow(record []string, cols columns) (model.Transaction, error) {
	var txn model.Transaction

	if cols.amount >= len(record) || cols.date >= len(record) || cols.description >= len(record) {
		return txn, fmt.Errorf("row has %d columns, expected more", len(record))
	}

	date, err := parseDate(record[cols.date])
	if err != nil {
		return txn, err
	}

	amount, err := parseAmount(record[cols.amount])
	if err != nil {
		return txn, err
	}

	description := strings.TrimSpace(record[cols.description])
	if description == "" {
		return txn, fmt.Errorf("row has no description")
	}

	verification := ""
	if cols.verification >= 0 && cols.verification < len(record) {
		verification = strings.TrimSpace(record[cols.verification])
	}
	if verification == "" {
		// Banks do not always export a reference. Derive a stable one so
		// re-importing the same file still deduplicates.
		sum := sha256.Sum256([]byte(date.Format("2006-01-02") + "|" + description + "|" + amount.String()))
		verification = hex.EncodeToString(sum[:16])
	}

	txn.ID = uuid.New().String()
	txn.VerificationID = verification
	txn.Date = date
	txn.Description = description
	txn.Amount = amount
	return txn, nil
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

func parseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	// Strip currency suffixes and spacer characters, then turn the decimal
	// comma into a dot. "1 234,56 kr" becomes "1234.56".
	raw = strings.TrimSuffix(strings.TrimSuffix(raw, "kr"), "SEK")
	raw = strings.Map(func(r rune) rune {
		switch r {
		case ' ', ' ', ' ':
			return -1
		case ',':
			return '.'
		}
		return r
	}, raw)

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("unparsable amount %q", raw)
	}
	return amount, nil
}

func normalizeHeader(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	replacer := strings.NewReplacer("å", "a", "ä", "a", "ö", "o", "é", "e")
	return replacer.Replace(name)
}

func matchesAny(name string, candidates []string) bool {
	for _, candidate := range candidates {
		if strings.Contains(name, candidate) {
			return true
		}
	}
	return false
}

func isEmptyRow(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
