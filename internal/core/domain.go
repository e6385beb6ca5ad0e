package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	Housing        Category = "Housing"
	Food           Category = "Food"
	Transportation Category = "Transportation"
	Entertainment  Category = "Entertainment"
	Medical        Category = "Medical"
	Beverages      Category = "Beverages"
	Utilities      Category = "Utilities"
	Clothing       Category = "Clothing"
	HouseholdItems Category = "Household Items"
	Gifts          Category = "Gifts"
	Miscellaneous  Category = "Miscellaneous"
)

// MaxDescriptionLength bounds the free-text description of an expense.
const MaxDescriptionLength = 200

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

type (
	Category string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// User is an account as seen by the rest of the application. The
	// credential never leaves the storage and service layers.
	User struct {
		ID       int64
		Username string
		Budget   Money
	}

	Expense struct {
		ID          int64
		UserID      int64
		Category    Category
		Description string
		Amount      Money
		Date        Date
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrDescriptionLong  = fmt.Errorf("description too long (max %d characters)", MaxDescriptionLength)
	ErrEmptyUsername    = errors.New("username is required")
	ErrEmptyPassword    = errors.New("password is required")
	ErrPasswordTooLong  = fmt.Errorf("password too long (max %d bytes)", MaxPasswordBytes)
	ErrBudgetTooLow     = errors.New("monthly budget must be at least 100")
	ErrInvalidMonthYear = errors.New("invalid month or year")
)

// MinBudget is the smallest monthly budget accepted at registration.
var MinBudget = Money{Cents: 100_00}

var categories = []Category{
	Housing, Food, Transportation, Entertainment, Medical, Beverages,
	Utilities, Clothing, HouseholdItems, Gifts, Miscellaneous,
}

// Categories returns the fixed category set in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// ParseCategory matches s against the fixed set, ignoring case and
// surrounding whitespace.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range categories {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", ErrInvalidCategory
}

func (c Category) String() string {
	return string(c)
}

func (c Category) Validate() error {
	if _, err := ParseCategory(string(c)); err != nil {
		return err
	}
	return nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar date in UTC.
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// ParseDate parses a date in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// String returns the storage form of the date (YYYY-MM-DD).
func (d Date) String() string {
	return d.Format(time.DateOnly)
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

// NormalizeDescription trims the text and title-cases each word.
func NormalizeDescription(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return cases.Title(language.English).String(s)
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if err := e.Category.Validate(); err != nil {
		return err
	}
	if err := ValidateDescription(e.Description); err != nil {
		return err
	}
	return e.Amount.Validate()
}

// ValidateDescription checks the description length in characters.
func ValidateDescription(s string) error {
	if utf8.RuneCountInString(s) > MaxDescriptionLength {
		return ErrDescriptionLong
	}
	return nil
}

// ValidateRegistration checks the registration form values.
func ValidateRegistration(username, password string, budget Money) error {
	if strings.TrimSpace(username) == "" {
		return ErrEmptyUsername
	}
	if password == "" {
		return ErrEmptyPassword
	}
	if len(password) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	if budget.Cents < MinBudget.Cents {
		return ErrBudgetTooLow
	}
	return nil
}

var validationErrors = []error{
	ErrInvalidDate, ErrInvalidAmount, ErrInvalidCategory, ErrDescriptionLong,
	ErrEmptyUsername, ErrEmptyPassword, ErrPasswordTooLong, ErrBudgetTooLow,
	ErrInvalidMonthYear,
}

// IsValidation reports whether err is caused by bad user input rather than
// a storage or transport failure.
func IsValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
