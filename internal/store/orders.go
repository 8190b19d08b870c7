package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cory321/threadfolio/internal/models"
)

// CreateOrderWithGarments inserts an order, its garments and their
// service lines in one transaction. The per-user order number is
// allocated inside the transaction; UNIQUE(user_id, order_number) turns
// a concurrent allocation for the same tenant into an ordinary error
// instead of a duplicate. Rollback on any failure leaves no partial
// order behind.
func (s *Store) CreateOrderWithGarments(ctx context.Context, order *models.Order) error {
	if len(order.Garments) == 0 {
		return fmt.Errorf("order needs at least one garment")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var total float64
	for i := range order.Garments {
		total += order.Garments[i].Total()
	}
	order.Total = total

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (user_id, client_id, order_number, status, total, created_at)
		VALUES ($1, $2, (SELECT COALESCE(MAX(order_number), 0) + 1 FROM orders WHERE user_id = $1), $3, $4, now())
		RETURNING id, order_number, created_at
	`, order.UserID, order.ClientID, order.Status, order.Total).Scan(&order.ID, &order.OrderNumber, &order.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range order.Garments {
		g := &order.Garments[i]
		g.OrderID = order.ID
		err = tx.QueryRowContext(ctx, `
			INSERT INTO garments (order_id, name, instructions, due_date, is_event, event_date, image_path, stage_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
			RETURNING id, created_at
		`, g.OrderID, g.Name, g.Instructions, g.DueDate, g.IsEvent, g.EventDate, g.ImagePath, g.StageID).Scan(&g.ID, &g.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert garment %q: %w", g.Name, err)
		}

		for j := range g.Services {
			svc := &g.Services[j]
			svc.GarmentID = g.ID
			err = tx.QueryRowContext(ctx, `
				INSERT INTO garment_services (garment_id, name, description, quantity, unit, unit_price, done)
				VALUES ($1, $2, $3, $4, $5, $6, false)
				RETURNING id
			`, svc.GarmentID, svc.Name, svc.Description, svc.Quantity, svc.Unit, svc.UnitPrice).Scan(&svc.ID)
			if err != nil {
				return fmt.Errorf("insert service %q: %w", svc.Name, err)
			}
		}
	}

	return tx.Commit()
}

func (s *Store) GetOrders(ctx context.Context, userID, limit, offset int) ([]models.Order, error) {
	query := `
		SELECT o.id, o.user_id, o.client_id, c.full_name, o.order_number, o.status, o.total, o.created_at
		FROM orders o
		JOIN clients c ON o.client_id = c.id
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := s.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.ClientID, &o.ClientName, &o.OrderNumber, &o.Status, &o.Total, &o.CreatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (s *Store) GetTotalOrdersCount(ctx context.Context, userID int) (int, error) {
	var count int
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}

// GetOrderByID loads the full order: garments with stage display fields
// and every service line.
func (s *Store) GetOrderByID(ctx context.Context, userID, id int) (*models.Order, error) {
	query := `
		SELECT o.id, o.user_id, o.client_id, c.full_name, o.order_number, o.status, o.total, o.created_at
		FROM orders o
		JOIN clients c ON o.client_id = c.id
		WHERE o.id = $1 AND o.user_id = $2
	`
	var o models.Order
	err := s.DB.QueryRowContext(ctx, query, id, userID).
		Scan(&o.ID, &o.UserID, &o.ClientID, &o.ClientName, &o.OrderNumber, &o.Status, &o.Total, &o.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	garments, err := s.getGarmentsForOrder(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Garments = garments
	return &o, nil
}

func (s *Store) getGarmentsForOrder(ctx context.Context, orderID int) ([]models.Garment, error) {
	query := `
		SELECT g.id, g.order_id, g.name, COALESCE(g.instructions, ''), g.due_date, g.is_event, g.event_date,
		       COALESCE(g.image_path, ''), g.stage_id, st.name, st.color, g.created_at
		FROM garments g
		JOIN stages st ON g.stage_id = st.id
		WHERE g.order_id = $1
		ORDER BY g.id ASC
	`
	rows, err := s.DB.QueryContext(ctx, query, orderID)
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
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range garments {
		services, err := s.GetGarmentServices(ctx, garments[i].ID)
		if err != nil {
			return nil, err
		}
		garments[i].Services = services
	}
	return garments, nil
}

func (s *Store) UpdateOrderStatus(ctx context.Context, userID, id int, status string) error {
	_, err := s.DB.ExecContext(ctx, `UPDATE orders SET status = $1 WHERE id = $2 AND user_id = $3`, status, id, userID)
	return err
}

// RecalculateOrderTotal re-derives the stored total from the current
// service lines. Called after any line-item mutation on the garment page.
func (s *Store) RecalculateOrderTotal(ctx context.Context, orderID int) error {
	query := `
		UPDATE orders SET total = COALESCE((
			SELECT SUM(ROUND((gs.quantity * gs.unit_price)::numeric, 2))
			FROM garment_services gs
			JOIN garments g ON gs.garment_id = g.id
			WHERE g.order_id = orders.id
		), 0)
		WHERE id = $1
	`
	_, err := s.DB.ExecContext(ctx, query, orderID)
	return err
}
