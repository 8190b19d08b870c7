package handlers

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cory321/threadfolio/internal/models"
)

// Typed form payloads: every mutating page parses the posted form into
// one of these and validates it before any store call.

// FieldErrors maps field name to a user-facing message.
type FieldErrors map[string]string

func (fe FieldErrors) Any() bool { return len(fe) > 0 }

// Basic email validation regex
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func isValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

type ClientForm struct {
	FullName       string
	Email          string
	Phone          string
	MailingAddress string
	Notes          string
}

func ParseClientForm(form url.Values) ClientForm {
	return ClientForm{
		FullName:       strings.TrimSpace(form.Get("full_name")),
		Email:          strings.TrimSpace(form.Get("email")),
		Phone:          strings.TrimSpace(form.Get("phone")),
		MailingAddress: strings.TrimSpace(form.Get("mailing_address")),
		Notes:          strings.TrimSpace(form.Get("notes")),
	}
}

func (f ClientForm) Validate() FieldErrors {
	errs := make(FieldErrors)
	if f.FullName == "" {
		errs["full_name"] = "Client name is required."
	}
	if f.Email != "" && !isValidEmail(f.Email) {
		errs["email"] = "Please enter a valid email address."
	}
	if f.Email == "" && f.Phone == "" {
		errs["email"] = "An email address or phone number is required."
	}
	return errs
}

type GarmentForm struct {
	ID           string // draft id; empty means new
	Name         string
	Instructions string
	DueDate      *time.Time
	IsEvent      bool
	EventDate    *time.Time
}

func ParseGarmentForm(form url.Values) (GarmentForm, FieldErrors) {
	errs := make(FieldErrors)
	f := GarmentForm{
		ID:           form.Get("garment_id"),
		Name:         strings.TrimSpace(form.Get("name")),
		Instructions: strings.TrimSpace(form.Get("instructions")),
		IsEvent:      form.Get("is_event") == "on" || form.Get("is_event") == "true",
	}

	if f.Name == "" {
		errs["name"] = "Garment name is required."
	}
	if v := form.Get("due_date"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			errs["due_date"] = "Invalid due date."
		} else {
			f.DueDate = &d
		}
	}
	if v := form.Get("event_date"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			errs["event_date"] = "Invalid event date."
		} else {
			f.EventDate = &d
		}
	}
	if f.IsEvent && f.EventDate == nil {
		errs["event_date"] = "An event date is required for event garments."
	}
	return f, errs
}

type ServiceLineForm struct {
	Name        string
	Description string
	Quantity    int
	Unit        string
	UnitPrice   float64
}

// ParseServiceLineForm validates a line item: the unit price must parse
// as a float and the quantity defaults to 1.
func ParseServiceLineForm(form url.Values) (ServiceLineForm, FieldErrors) {
	errs := make(FieldErrors)
	f := ServiceLineForm{
		Name:        strings.TrimSpace(form.Get("service_name")),
		Description: strings.TrimSpace(form.Get("service_description")),
		Unit:        form.Get("unit"),
		Quantity:    1,
	}

	if f.Name == "" {
		errs["service_name"] = "Service name is required."
	}
	if f.Unit == "" {
		f.Unit = "item"
	}
	if !models.ValidServiceUnit(f.Unit) {
		errs["unit"] = "Invalid unit selected."
	}

	if qtyStr := form.Get("quantity"); qtyStr != "" {
		q, err := strconv.Atoi(qtyStr)
		if err != nil || q < 1 {
			errs["quantity"] = "Quantity must be a positive whole number."
		} else {
			f.Quantity = q
		}
	}

	priceStr := form.Get("unit_price")
	if priceStr == "" {
		errs["unit_price"] = "Unit price is required."
	} else {
		price, err := strconv.ParseFloat(priceStr, 64)
		if err != nil {
			errs["unit_price"] = "Invalid price format."
		} else if price < 0 {
			errs["unit_price"] = "Price cannot be negative."
		} else {
			f.UnitPrice = price
		}
	}
	return f, errs
}

type AppointmentForm struct {
	ClientID    int
	Date        time.Time
	StartTime   string
	EndTime     string
	Location    string
	Type        string
	RemindBySMS bool
	Notes       string
}

func ParseAppointmentForm(form url.Values) (AppointmentForm, FieldErrors) {
	errs := make(FieldErrors)
	f := AppointmentForm{
		StartTime:   form.Get("start_time"),
		EndTime:     form.Get("end_time"),
		Location:    strings.TrimSpace(form.Get("location")),
		Type:        form.Get("type"),
		RemindBySMS: form.Get("remind_by_sms") == "on" || form.Get("remind_by_sms") == "true",
		Notes:       strings.TrimSpace(form.Get("notes")),
	}

	clientID, err := strconv.Atoi(form.Get("client_id"))
	if err != nil || clientID < 1 {
		errs["client_id"] = "A client is required."
	} else {
		f.ClientID = clientID
	}

	if v := form.Get("date"); v == "" {
		errs["date"] = "Date is required."
	} else if d, err := time.Parse("2006-01-02", v); err != nil {
		errs["date"] = "Invalid date."
	} else {
		f.Date = d
	}

	start, startErr := time.Parse("15:04", f.StartTime)
	if startErr != nil {
		errs["start_time"] = "Start time is required (HH:MM)."
	}
	end, endErr := time.Parse("15:04", f.EndTime)
	if endErr != nil {
		errs["end_time"] = "End time is required (HH:MM)."
	}
	if startErr == nil && endErr == nil && !end.After(start) {
		errs["end_time"] = "End time must be after start time."
	}

	switch f.Type {
	case models.AppointmentTypeOrderPickup, models.AppointmentTypeGeneral, models.AppointmentTypeInitial:
	case "":
		f.Type = models.AppointmentTypeGeneral
	default:
		errs["type"] = "Invalid appointment type."
	}
	return f, errs
}

type CatalogServiceForm struct {
	Name         string
	Description  string
	DefaultUnit  string
	DefaultPrice float64
}

func ParseCatalogServiceForm(form url.Values) (CatalogServiceForm, FieldErrors) {
	errs := make(FieldErrors)
	f := CatalogServiceForm{
		Name:        strings.TrimSpace(form.Get("name")),
		Description: strings.TrimSpace(form.Get("description")),
		DefaultUnit: form.Get("default_unit"),
	}
	if f.Name == "" {
		errs["name"] = "Service name is required."
	}
	if f.DefaultUnit == "" {
		f.DefaultUnit = "item"
	}
	if !models.ValidServiceUnit(f.DefaultUnit) {
		errs["default_unit"] = "Invalid unit selected."
	}
	priceStr := form.Get("default_price")
	if priceStr == "" {
		errs["default_price"] = "Default price is required."
	} else if price, err := strconv.ParseFloat(priceStr, 64); err != nil || price < 0 {
		errs["default_price"] = "Invalid price format."
	} else {
		f.DefaultPrice = price
	}
	return f, errs
}

type SettingsForm struct {
	BusinessName string
	Phone        string
	SMSEnabled   bool
}

func ParseSettingsForm(form url.Values) (SettingsForm, FieldErrors) {
	errs := make(FieldErrors)
	f := SettingsForm{
		BusinessName: strings.TrimSpace(form.Get("business_name")),
		Phone:        strings.TrimSpace(form.Get("phone")),
		SMSEnabled:   form.Get("sms_enabled") == "on" || form.Get("sms_enabled") == "true",
	}
	if f.BusinessName == "" {
		errs["business_name"] = "Business name is required."
	}
	return f, errs
}
