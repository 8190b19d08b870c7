package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCurrency(t *testing.T) {
	assert.Equal(t, "$60.00", Currency(60))
	assert.Equal(t, "$19.99", Currency(19.99))
	assert.Equal(t, "$0.00", Currency(0))
	assert.Equal(t, "-$4.50", Currency(-4.5))
}

func TestLineTotal(t *testing.T) {
	tests := []struct {
		qty   int
		price float64
		want  float64
	}{
		{3, 20.00, 60.00},
		{2, 15.00, 30.00},
		{1, 0.10, 0.10},
		{3, 0.335, 1.01}, // rounds half up at the cent
		{0, 99.99, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LineTotal(tt.qty, tt.price), "qty=%d price=%v", tt.qty, tt.price)
	}
	assert.Equal(t, "$60.00", Currency(LineTotal(3, 20.00)))
}

func TestOrderNumber(t *testing.T) {
	assert.Equal(t, "0007", OrderNumber(7))
	assert.Equal(t, "0042", OrderNumber(42))
	assert.Equal(t, "9999", OrderNumber(9999))
	assert.Equal(t, "10234", OrderNumber(10234))
}

func TestInitials(t *testing.T) {
	assert.Equal(t, "BR", Initials("Bob Ross"))
	assert.Equal(t, "A", Initials("Alice"))
	assert.Equal(t, "", Initials("546 235235"))
	assert.Equal(t, "", Initials(""))
	assert.Equal(t, "MD", Initials("maría del-carmen"))
}

func TestPhone(t *testing.T) {
	assert.Equal(t, "(555) 123-4567", Phone("5551234567"))
	assert.Equal(t, "(555) 123-4567", Phone("555-123-4567"))
	assert.Equal(t, "+1 (555) 123-4567", Phone("15551234567"))
	// Non-US lengths pass through untouched.
	assert.Equal(t, "+44 20 7946 0958", Phone("+44 20 7946 0958"))
	assert.Equal(t, "", Phone(""))
}

func TestDate(t *testing.T) {
	d := time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Mar 9, 2026", Date(d))
	assert.Equal(t, "", Date(time.Time{}))
	assert.Equal(t, "Mar 9, 2026", DatePtr(&d))
	assert.Equal(t, "", DatePtr(nil))
}

func TestContrastText(t *testing.T) {
	assert.Equal(t, "#000000", ContrastText("#ffffff"))
	assert.Equal(t, "#ffffff", ContrastText("#000000"))
	assert.Equal(t, "#ffffff", ContrastText("8e24aa"))
	assert.Equal(t, "#000000", ContrastText("#ff0")) // yellow, 3-digit form
	assert.Equal(t, "#000000", ContrastText("not-a-color"))
}
