package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// PresetTags are the tag choices offered by the add forms. Anything else is
// treated as a custom tag.
var PresetTags = []string{"Food", "Education", "Travel"}

type (
	TransactionType string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is one income or expense entry. ID is assigned by the
	// collection gateway on creation and is empty before that.
	Transaction struct {
		ID     string
		Type   TransactionType
		Name   string
		Amount Money
		Date   Date
		Tag    string
	}

	// UpdateFields carries a partial update. Only name and amount are
	// mutable after creation; nil means "leave unchanged".
	UpdateFields struct {
		Name   *string
		Amount *Money
	}
)

var (
	ErrInvalidType   = errors.New("invalid transaction type")
	ErrEmptyName     = errors.New("empty name")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
	ErrEmptyTag      = errors.New("empty tag")
)

// IsValid returns true for the two supported transaction types.
func (t TransactionType) IsValid() bool {
	return t == Income || t == Expense
}

// NewDate creates a Date from year, month, day at UTC midnight.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// ISO returns the date formatted as YYYY-MM-DD, the wire and storage format.
func (d Date) ISO() string {
	return d.Format("2006-01-02")
}

// MonthLabel returns the chart bucket label for the date, e.g. "Jan 2024".
func (d Date) MonthLabel() string {
	return d.Format("Jan 2006")
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Float64 returns the amount in currency units for chart plotting.
// Use cents for arithmetic; this is for display only.
func (m Money) Float64() float64 {
	return float64(m.Cents) / 100.0
}

func (t Transaction) Validate() error {
	if !t.Type.IsValid() {
		return ErrInvalidType
	}
	if len(strings.TrimSpace(t.Name)) == 0 {
		return ErrEmptyName
	}
	if len(t.Name) > 200 {
		return errors.New("name too long (max 200 characters)")
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Tag) == "" {
		return ErrEmptyTag
	}
	return nil
}

// Validate checks that a partial update touches at least one mutable field
// and that the touched fields are well formed.
func (u UpdateFields) Validate() error {
	if u.Name == nil && u.Amount == nil {
		return errors.New("no fields to update")
	}
	if u.Name != nil && len(strings.TrimSpace(*u.Name)) == 0 {
		return ErrEmptyName
	}
	if u.Amount != nil {
		if err := u.Amount.Validate(); err != nil {
			return err
		}
	}
	return nil
}
