package store

import (
	"context"
	"database/sql"

	"github.com/cory321/threadfolio/internal/models"
)

func (s *Store) CreateAppointment(ctx context.Context, a *models.Appointment) error {
	query := `
		INSERT INTO appointments (user_id, client_id, date, start_time, end_time, location, status, type, remind_by_sms, reminder_sent, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, false, $10, now())
		RETURNING id, created_at
	`
	return s.DB.QueryRowContext(ctx, query,
		a.UserID, a.ClientID, a.Date, a.StartTime, a.EndTime, a.Location, a.Status, a.Type, a.RemindBySMS, a.Notes).
		Scan(&a.ID, &a.CreatedAt)
}

func (s *Store) GetAppointments(ctx context.Context, userID int) ([]models.Appointment, error) {
	query := `
		SELECT a.id, a.user_id, a.client_id, c.full_name, COALESCE(c.phone, ''), a.date, a.start_time, a.end_time,
		       COALESCE(a.location, ''), a.status, a.type, a.remind_by_sms, a.reminder_sent, COALESCE(a.notes, ''), a.created_at
		FROM appointments a
		JOIN clients c ON a.client_id = c.id
		WHERE a.user_id = $1
		ORDER BY a.date ASC, a.start_time ASC
	`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appts []models.Appointment
	for rows.Next() {
		var a models.Appointment
		if err := rows.Scan(&a.ID, &a.UserID, &a.ClientID, &a.ClientName, &a.ClientPhone, &a.Date, &a.StartTime, &a.EndTime,
			&a.Location, &a.Status, &a.Type, &a.RemindBySMS, &a.ReminderSent, &a.Notes, &a.CreatedAt); err != nil {
			return nil, err
		}
		appts = append(appts, a)
	}
	return appts, rows.Err()
}

func (s *Store) GetAppointmentByID(ctx context.Context, userID, id int) (*models.Appointment, error) {
	query := `
		SELECT a.id, a.user_id, a.client_id, c.full_name, COALESCE(c.phone, ''), a.date, a.start_time, a.end_time,
		       COALESCE(a.location, ''), a.status, a.type, a.remind_by_sms, a.reminder_sent, COALESCE(a.notes, ''), a.created_at
		FROM appointments a
		JOIN clients c ON a.client_id = c.id
		WHERE a.id = $1 AND a.user_id = $2
	`
	var a models.Appointment
	err := s.DB.QueryRowContext(ctx, query, id, userID).
		Scan(&a.ID, &a.UserID, &a.ClientID, &a.ClientName, &a.ClientPhone, &a.Date, &a.StartTime, &a.EndTime,
			&a.Location, &a.Status, &a.Type, &a.RemindBySMS, &a.ReminderSent, &a.Notes, &a.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// UpdateAppointmentStatus covers confirm/complete/cancel. Cancellation
// is a status change, never a delete.
func (s *Store) UpdateAppointmentStatus(ctx context.Context, userID, id int, status string) error {
	_, err := s.DB.ExecContext(ctx,
		`UPDATE appointments SET status = $1 WHERE id = $2 AND user_id = $3`, status, id, userID)
	return err
}

func (s *Store) MarkReminderSent(ctx context.Context, id int) error {
	_, err := s.DB.ExecContext(ctx, `UPDATE appointments SET reminder_sent = true WHERE id = $1`, id)
	return err
}
