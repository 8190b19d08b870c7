package store

import (
	"context"

	"github.com/cory321/threadfolio/internal/models"
)

// Catalog services: the price list a tenant picks from when adding line
// items to a garment.

func (s *Store) GetServiceCatalog(ctx context.Context, userID int) ([]models.Service, error) {
	query := `
		SELECT id, user_id, name, COALESCE(description, ''), default_unit, default_price
		FROM services
		WHERE user_id = $1
		ORDER BY name ASC
	`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []models.Service
	for rows.Next() {
		var svc models.Service
		if err := rows.Scan(&svc.ID, &svc.UserID, &svc.Name, &svc.Description, &svc.DefaultUnit, &svc.DefaultPrice); err != nil {
			return nil, err
		}
		services = append(services, svc)
	}
	return services, rows.Err()
}

func (s *Store) CreateCatalogService(ctx context.Context, svc *models.Service) error {
	query := `
		INSERT INTO services (user_id, name, description, default_unit, default_price)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	return s.DB.QueryRowContext(ctx, query, svc.UserID, svc.Name, svc.Description, svc.DefaultUnit, svc.DefaultPrice).Scan(&svc.ID)
}

func (s *Store) UpdateCatalogService(ctx context.Context, svc *models.Service) error {
	query := `
		UPDATE services
		SET name = $1, description = $2, default_unit = $3, default_price = $4
		WHERE id = $5 AND user_id = $6
	`
	_, err := s.DB.ExecContext(ctx, query, svc.Name, svc.Description, svc.DefaultUnit, svc.DefaultPrice, svc.ID, svc.UserID)
	return err
}

func (s *Store) DeleteCatalogService(ctx context.Context, userID, id int) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM services WHERE id = $1 AND user_id = $2`, id, userID)
	return err
}
