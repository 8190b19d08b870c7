package store

import (
	"context"
	"database/sql"

	"github.com/cory321/threadfolio/internal/models"
)

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT id, username, password, COALESCE(business_name, ''), COALESCE(phone, ''), COALESCE(payment_account_id, ''), sms_enabled
	          FROM users WHERE username = $1`
	row := s.DB.QueryRowContext(ctx, query, username)

	var user models.User
	if err := row.Scan(&user.ID, &user.Username, &user.Password, &user.BusinessName, &user.Phone, &user.PaymentAccountID, &user.SMSEnabled); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (s *Store) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT id, username, password, COALESCE(business_name, ''), COALESCE(phone, ''), COALESCE(payment_account_id, ''), sms_enabled
	          FROM users WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	var user models.User
	if err := row.Scan(&user.ID, &user.Username, &user.Password, &user.BusinessName, &user.Phone, &user.PaymentAccountID, &user.SMSEnabled); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// CreateUser is mainly for seeding a tenant from the CLI.
func (s *Store) CreateUser(ctx context.Context, username, hashedPassword, businessName string) (int, error) {
	query := `INSERT INTO users (username, password, business_name, sms_enabled) VALUES ($1, $2, $3, false) RETURNING id`
	var id int
	err := s.DB.QueryRowContext(ctx, query, username, hashedPassword, businessName).Scan(&id)
	return id, err
}

func (s *Store) UpdateUserSettings(ctx context.Context, user *models.User) error {
	query := `UPDATE users SET business_name = $1, phone = $2, sms_enabled = $3 WHERE id = $4`
	_, err := s.DB.ExecContext(ctx, query, user.BusinessName, user.Phone, user.SMSEnabled, user.ID)
	return err
}

// SetPaymentAccountID persists only the external account id returned by
// the payments collaborator.
func (s *Store) SetPaymentAccountID(ctx context.Context, userID int, accountID string) error {
	query := `UPDATE users SET payment_account_id = $1 WHERE id = $2`
	_, err := s.DB.ExecContext(ctx, query, accountID, userID)
	return err
}
