package store

import (
	"context"
	"database/sql"

	"github.com/cory321/threadfolio/internal/models"
)

func (s *Store) CreateClient(ctx context.Context, c *models.Client) error {
	query := `
		INSERT INTO clients (user_id, full_name, email, phone, mailing_address, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		RETURNING id, created_at, updated_at
	`
	return s.DB.QueryRowContext(ctx, query, c.UserID, c.FullName, c.Email, c.Phone, c.MailingAddress, c.Notes).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (s *Store) GetClients(ctx context.Context, userID int) ([]models.Client, error) {
	query := `
		SELECT id, user_id, full_name, COALESCE(email, ''), COALESCE(phone, ''), COALESCE(mailing_address, ''), COALESCE(notes, ''), created_at, updated_at
		FROM clients
		WHERE user_id = $1
		ORDER BY full_name ASC
	`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []models.Client
	for rows.Next() {
		var c models.Client
		if err := rows.Scan(&c.ID, &c.UserID, &c.FullName, &c.Email, &c.Phone, &c.MailingAddress, &c.Notes, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (s *Store) GetClientByID(ctx context.Context, userID, id int) (*models.Client, error) {
	query := `
		SELECT id, user_id, full_name, COALESCE(email, ''), COALESCE(phone, ''), COALESCE(mailing_address, ''), COALESCE(notes, ''), created_at, updated_at
		FROM clients
		WHERE id = $1 AND user_id = $2
	`
	var c models.Client
	err := s.DB.QueryRowContext(ctx, query, id, userID).
		Scan(&c.ID, &c.UserID, &c.FullName, &c.Email, &c.Phone, &c.MailingAddress, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (s *Store) UpdateClient(ctx context.Context, c *models.Client) error {
	query := `
		UPDATE clients
		SET full_name = $1, email = $2, phone = $3, mailing_address = $4, notes = $5, updated_at = now()
		WHERE id = $6 AND user_id = $7
	`
	_, err := s.DB.ExecContext(ctx, query, c.FullName, c.Email, c.Phone, c.MailingAddress, c.Notes, c.ID, c.UserID)
	return err
}
