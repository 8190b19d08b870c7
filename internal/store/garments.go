package store

import (
	"context"
	"database/sql"

	"github.com/cory321/threadfolio/internal/models"
)

// GetGarmentByID loads one garment (with its lines) scoped to the tenant
// through its order.
func (s *Store) GetGarmentByID(ctx context.Context, userID, id int) (*models.Garment, error) {
	query := `
		SELECT g.id, g.order_id, g.name, COALESCE(g.instructions, ''), g.due_date, g.is_event, g.event_date,
		       COALESCE(g.image_path, ''), g.stage_id, st.name, st.color, g.created_at
		FROM garments g
		JOIN orders o ON g.order_id = o.id
		JOIN stages st ON g.stage_id = st.id
		WHERE g.id = $1 AND o.user_id = $2
	`
	var g models.Garment
	err := s.DB.QueryRowContext(ctx, query, id, userID).
		Scan(&g.ID, &g.OrderID, &g.Name, &g.Instructions, &g.DueDate, &g.IsEvent, &g.EventDate,
			&g.ImagePath, &g.StageID, &g.StageName, &g.StageColor, &g.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	services, err := s.GetGarmentServices(ctx, g.ID)
	if err != nil {
		return nil, err
	}
	g.Services = services
	return &g, nil
}

// GetGarments lists a tenant's garments across orders, newest first.
func (s *Store) GetGarments(ctx context.Context, userID, limit, offset int) ([]models.Garment, error) {
	query := `
		SELECT g.id, g.order_id, g.name, COALESCE(g.instructions, ''), g.due_date, g.is_event, g.event_date,
		       COALESCE(g.image_path, ''), g.stage_id, st.name, st.color, g.created_at
		FROM garments g
		JOIN orders o ON g.order_id = o.id
		JOIN stages st ON g.stage_id = st.id
		WHERE o.user_id = $1
		ORDER BY g.created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := s.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var garments []models.Garment
	for rows.Next() {
		var g models.Garment
		if err := rows.Scan(&g.ID, &g.OrderID, &g.Name, &g.Instructions, &g.DueDate, &g.IsEvent, &g.EventDate,
			&g.ImagePath, &g.StageID, &g.StageName, &g.StageColor, &g.CreatedAt); err != nil {
			return nil, err
		}
		garments = append(garments, g)
	}
	return garments, rows.Err()
}

func (s *Store) GetTotalGarmentsCount(ctx context.Context, userID int) (int, error) {
	var count int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM garments g JOIN orders o ON g.order_id = o.id WHERE o.user_id = $1`, userID).Scan(&count)
	return count, err
}

func (s *Store) UpdateGarmentStage(ctx context.Context, userID, garmentID, stageID int) error {
	query := `
		UPDATE garments SET stage_id = $1
		WHERE id = $2 AND order_id IN (SELECT id FROM orders WHERE user_id = $3)
	`
	_, err := s.DB.ExecContext(ctx, query, stageID, garmentID, userID)
	return err
}

func (s *Store) UpdateGarmentImage(ctx context.Context, userID, garmentID int, imagePath string) error {
	query := `
		UPDATE garments SET image_path = $1
		WHERE id = $2 AND order_id IN (SELECT id FROM orders WHERE user_id = $3)
	`
	_, err := s.DB.ExecContext(ctx, query, imagePath, garmentID, userID)
	return err
}

func (s *Store) GetGarmentServices(ctx context.Context, garmentID int) ([]models.GarmentService, error) {
	query := `
		SELECT id, garment_id, name, COALESCE(description, ''), quantity, unit, unit_price, done
		FROM garment_services
		WHERE garment_id = $1
		ORDER BY id ASC
	`
	rows, err := s.DB.QueryContext(ctx, query, garmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []models.GarmentService
	for rows.Next() {
		var svc models.GarmentService
		if err := rows.Scan(&svc.ID, &svc.GarmentID, &svc.Name, &svc.Description, &svc.Quantity, &svc.Unit, &svc.UnitPrice, &svc.Done); err != nil {
			return nil, err
		}
		services = append(services, svc)
	}
	return services, rows.Err()
}

func (s *Store) AddGarmentService(ctx context.Context, svc *models.GarmentService) error {
	query := `
		INSERT INTO garment_services (garment_id, name, description, quantity, unit, unit_price, done)
		VALUES ($1, $2, $3, $4, $5, $6, false)
		RETURNING id
	`
	return s.DB.QueryRowContext(ctx, query, svc.GarmentID, svc.Name, svc.Description, svc.Quantity, svc.Unit, svc.UnitPrice).Scan(&svc.ID)
}

// UpdateServiceDoneStatus flips the single completion flag on one line.
// The line must belong to the given garment, which callers have already
// resolved through the tenant's orders.
func (s *Store) UpdateServiceDoneStatus(ctx context.Context, garmentID, serviceID int, done bool) error {
	_, err := s.DB.ExecContext(ctx,
		`UPDATE garment_services SET done = $1 WHERE id = $2 AND garment_id = $3`,
		done, serviceID, garmentID)
	return err
}

// DeleteGarmentService hard-deletes a line item belonging to the given
// garment. Line items and todos are the only records that support hard
// delete.
func (s *Store) DeleteGarmentService(ctx context.Context, garmentID, serviceID int) error {
	_, err := s.DB.ExecContext(ctx,
		`DELETE FROM garment_services WHERE id = $1 AND garment_id = $2`,
		serviceID, garmentID)
	return err
}

// OrderIDForGarment resolves a garment back to its order, tenant-scoped.
func (s *Store) OrderIDForGarment(ctx context.Context, userID, garmentID int) (int, error) {
	var orderID int
	err := s.DB.QueryRowContext(ctx, `
		SELECT o.id FROM orders o JOIN garments g ON g.order_id = o.id
		WHERE g.id = $1 AND o.user_id = $2
	`, garmentID, userID).Scan(&orderID)
	return orderID, err
}
