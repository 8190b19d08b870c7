package models

import (
	"time"
)

// User is a tenant: one independent seamstress/tailor running their
// business through the app. Account settings live directly on the row.
type User struct {
	ID               int    `json:"id"`
	Username         string `json:"username"`
	Password         string `json:"-"` // Store hashed password
	BusinessName     string `json:"business_name"`
	Phone            string `json:"phone"`
	PaymentAccountID string `json:"payment_account_id"` // External account id, empty until onboarded
	SMSEnabled       bool   `json:"sms_enabled"`
}

type Client struct {
	ID             int       `json:"id"`
	UserID         int       `json:"user_id"`
	FullName       string    `json:"full_name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	MailingAddress string    `json:"mailing_address"`
	Notes          string    `json:"notes"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Order struct {
	ID          int       `json:"id"`
	UserID      int       `json:"user_id"`
	ClientID    int       `json:"client_id"`
	ClientName  string    `json:"client_name"` // For display convenience
	OrderNumber int       `json:"order_number"`
	Status      string    `json:"status"` // "new", "in_progress", "ready", "completed", "cancelled"
	Total       float64   `json:"total"`
	CreatedAt   time.Time `json:"created_at"`

	Garments []Garment `json:"garments,omitempty"`
}

type Garment struct {
	ID           int        `json:"id"`
	OrderID      int        `json:"order_id"`
	Name         string     `json:"name"`
	Instructions string     `json:"instructions"`
	DueDate      *time.Time `json:"due_date"`
	IsEvent      bool       `json:"is_event"`
	EventDate    *time.Time `json:"event_date"`
	ImagePath    string     `json:"image_path"`
	StageID      int        `json:"stage_id"`
	StageName    string     `json:"stage_name"`  // For display convenience
	StageColor   string     `json:"stage_color"` // For display convenience
	CreatedAt    time.Time  `json:"created_at"`

	Services []GarmentService `json:"services,omitempty"`
}

// Total sums the garment's line items.
func (g *Garment) Total() float64 {
	var total float64
	for _, s := range g.Services {
		total += s.Total()
	}
	return total
}

// GarmentService is a line item: a snapshot of a catalog service at the
// time it was added to the garment. Its total is always derived.
type GarmentService struct {
	ID          int     `json:"id"`
	GarmentID   int     `json:"garment_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	Unit        string  `json:"unit"`
	UnitPrice   float64 `json:"unit_price"`
	Done        bool    `json:"done"`
}

// Total is quantity x unit price, rounded to cents. Never stored.
func (s *GarmentService) Total() float64 {
	return float64(int64(float64(s.Quantity)*s.UnitPrice*100+0.5)) / 100
}

// ServiceUnits are the valid billing units for a service line.
var ServiceUnits = []string{"item", "minute", "hour", "day", "week", "month"}

func ValidServiceUnit(unit string) bool {
	for _, u := range ServiceUnits {
		if u == unit {
			return true
		}
	}
	return false
}

// Service is a catalog entry the user picks from when adding line items.
type Service struct {
	ID           int     `json:"id"`
	UserID       int     `json:"user_id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	DefaultUnit  string  `json:"default_unit"`
	DefaultPrice float64 `json:"default_price"`
}

// Stage is a user-configurable milestone a garment occupies.
type Stage struct {
	ID       int    `json:"id"`
	UserID   int    `json:"user_id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
	Color    string `json:"color"` // hex, e.g. "#8e24aa"
}

// Appointment types.
const (
	AppointmentTypeOrderPickup = "order_pickup"
	AppointmentTypeGeneral     = "general"
	AppointmentTypeInitial     = "initial"
)

// Appointment statuses.
const (
	AppointmentStatusScheduled = "scheduled"
	AppointmentStatusConfirmed = "confirmed"
	AppointmentStatusCompleted = "completed"
	AppointmentStatusCancelled = "cancelled"
)

type Appointment struct {
	ID           int       `json:"id"`
	UserID       int       `json:"user_id"`
	ClientID     int       `json:"client_id"`
	ClientName   string    `json:"client_name"` // For display convenience
	ClientPhone  string    `json:"client_phone"`
	Date         time.Time `json:"date"`
	StartTime    string    `json:"start_time"` // "15:04"
	EndTime      string    `json:"end_time"`   // "15:04"
	Location     string    `json:"location"`
	Status       string    `json:"status"`
	Type         string    `json:"type"`
	RemindBySMS  bool      `json:"remind_by_sms"`
	ReminderSent bool      `json:"reminder_sent"`
	Notes        string    `json:"notes"`
	CreatedAt    time.Time `json:"created_at"`
}

// StartsAt combines the appointment date with its start time.
func (a *Appointment) StartsAt() time.Time {
	t, err := time.Parse("15:04", a.StartTime)
	if err != nil {
		return a.Date
	}
	return time.Date(a.Date.Year(), a.Date.Month(), a.Date.Day(), t.Hour(), t.Minute(), 0, 0, a.Date.Location())
}

type Todo struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}
