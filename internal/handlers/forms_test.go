package handlers

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseServiceLineFormDefaultsQuantity(t *testing.T) {
	form := url.Values{}
	form.Set("service_name", "Hem pants")
	form.Set("unit_price", "15.00")

	f, errs := ParseServiceLineForm(form)
	require.False(t, errs.Any(), "errors: %v", errs)
	assert.Equal(t, 1, f.Quantity)
	assert.Equal(t, "item", f.Unit)
	assert.Equal(t, 15.00, f.UnitPrice)
}

func TestParseServiceLineFormRejectsBadPrice(t *testing.T) {
	form := url.Values{}
	form.Set("service_name", "Hem pants")
	form.Set("unit_price", "fifteen")

	_, errs := ParseServiceLineForm(form)
	assert.Contains(t, errs, "unit_price")

	form.Set("unit_price", "")
	_, errs = ParseServiceLineForm(form)
	assert.Contains(t, errs, "unit_price")

	form.Set("unit_price", "-2")
	_, errs = ParseServiceLineForm(form)
	assert.Contains(t, errs, "unit_price")
}

func TestParseServiceLineFormValidatesUnit(t *testing.T) {
	form := url.Values{}
	form.Set("service_name", "Fitting")
	form.Set("unit_price", "45")
	form.Set("unit", "fortnight")

	_, errs := ParseServiceLineForm(form)
	assert.Contains(t, errs, "unit")

	form.Set("unit", "hour")
	f, errs := ParseServiceLineForm(form)
	assert.False(t, errs.Any())
	assert.Equal(t, "hour", f.Unit)
}

func TestParseClientForm(t *testing.T) {
	form := url.Values{}
	form.Set("full_name", "  Bob Ross ")
	form.Set("email", "bob@example.com")

	f := ParseClientForm(form)
	assert.Equal(t, "Bob Ross", f.FullName)
	assert.False(t, f.Validate().Any())

	f.Email = "not-an-email"
	assert.Contains(t, f.Validate(), "email")

	f.Email = ""
	f.Phone = ""
	assert.Contains(t, f.Validate(), "email")

	f.FullName = ""
	assert.Contains(t, f.Validate(), "full_name")
}

func TestParseGarmentForm(t *testing.T) {
	form := url.Values{}
	form.Set("name", "Wedding dress")
	form.Set("due_date", "2026-09-01")
	form.Set("is_event", "on")
	form.Set("event_date", "2026-09-12")

	f, errs := ParseGarmentForm(form)
	require.False(t, errs.Any(), "errors: %v", errs)
	assert.True(t, f.IsEvent)
	require.NotNil(t, f.DueDate)
	assert.Equal(t, "2026-09-01", f.DueDate.Format("2006-01-02"))

	// Event garments need an event date.
	form.Del("event_date")
	_, errs = ParseGarmentForm(form)
	assert.Contains(t, errs, "event_date")

	form.Set("event_date", "soon")
	_, errs = ParseGarmentForm(form)
	assert.Contains(t, errs, "event_date")
}

func TestParseAppointmentForm(t *testing.T) {
	form := url.Values{}
	form.Set("client_id", "3")
	form.Set("date", "2026-09-03")
	form.Set("start_time", "14:00")
	form.Set("end_time", "15:00")
	form.Set("type", "initial")

	f, errs := ParseAppointmentForm(form)
	require.False(t, errs.Any(), "errors: %v", errs)
	assert.Equal(t, 3, f.ClientID)
	assert.Equal(t, "initial", f.Type)

	form.Set("end_time", "13:00")
	_, errs = ParseAppointmentForm(form)
	assert.Contains(t, errs, "end_time")

	form.Set("end_time", "15:00")
	form.Set("type", "haircut")
	_, errs = ParseAppointmentForm(form)
	assert.Contains(t, errs, "type")

	form.Set("type", "")
	f, errs = ParseAppointmentForm(form)
	assert.False(t, errs.Any())
	assert.Equal(t, "general", f.Type)
}
