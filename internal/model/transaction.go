package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents a single imported bank-statement row. It is
// immutable once imported except for the classification fields, which are
// set together by exactly one classification event.
type Transaction struct {
	Date           time.Time
	ID             string
	VerificationID string // external statement identifier, unique per import
	Description    string // raw merchant text as it appears on the statement
	Amount         decimal.Decimal
	CategoryID     *int64
	Confidence     *float64
	Method         *ClassificationMethod
}

// Classified reports whether the transaction has been assigned a category.
func (t *Transaction) Classified() bool {
	return t.CategoryID != nil
}

// AmountValue returns the amount as a float64 for statistical scoring.
func (t *Transaction) AmountValue() float64 {
	f, _ := t.Amount.Float64()
	return f
}
