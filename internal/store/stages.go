package store

import (
	"context"

	"github.com/cory321/threadfolio/internal/models"
)

// DefaultStages seed every new tenant. Users rename and recolor them
// from the settings page.
var DefaultStages = []models.Stage{
	{Name: "Not Started", Color: "#9e9e9e"},
	{Name: "In Progress", Color: "#1e88e5"},
	{Name: "Ready for Pickup", Color: "#fdd835"},
	{Name: "Done", Color: "#43a047"},
}

func (s *Store) GetStages(ctx context.Context, userID int) ([]models.Stage, error) {
	query := `SELECT id, user_id, name, position, color FROM stages WHERE user_id = $1 ORDER BY position ASC`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stages []models.Stage
	for rows.Next() {
		var st models.Stage
		if err := rows.Scan(&st.ID, &st.UserID, &st.Name, &st.Position, &st.Color); err != nil {
			return nil, err
		}
		stages = append(stages, st)
	}
	return stages, rows.Err()
}

func (s *Store) CreateStage(ctx context.Context, st *models.Stage) error {
	query := `
		INSERT INTO stages (user_id, name, position, color)
		VALUES ($1, $2, (SELECT COALESCE(MAX(position), 0) + 1 FROM stages WHERE user_id = $1), $3)
		RETURNING id, position
	`
	return s.DB.QueryRowContext(ctx, query, st.UserID, st.Name, st.Color).Scan(&st.ID, &st.Position)
}

func (s *Store) UpdateStage(ctx context.Context, st *models.Stage) error {
	query := `UPDATE stages SET name = $1, color = $2 WHERE id = $3 AND user_id = $4`
	_, err := s.DB.ExecContext(ctx, query, st.Name, st.Color, st.ID, st.UserID)
	return err
}

// ReorderStages rewrites positions to match the given id order.
func (s *Store) ReorderStages(ctx context.Context, userID int, stageIDs []int) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for pos, id := range stageIDs {
		if _, err := tx.ExecContext(ctx, `UPDATE stages SET position = $1 WHERE id = $2 AND user_id = $3`, pos+1, id, userID); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// SeedDefaultStages inserts the default stage set for a new tenant.
func (s *Store) SeedDefaultStages(ctx context.Context, userID int) error {
	for i, st := range DefaultStages {
		_, err := s.DB.ExecContext(ctx,
			`INSERT INTO stages (user_id, name, position, color) VALUES ($1, $2, $3, $4)`,
			userID, st.Name, i+1, st.Color)
		if err != nil {
			return err
		}
	}
	return nil
}

// FirstStageID returns the lowest-position stage for a tenant; new
// garments start there.
func (s *Store) FirstStageID(ctx context.Context, userID int) (int, error) {
	var id int
	err := s.DB.QueryRowContext(ctx,
		`SELECT id FROM stages WHERE user_id = $1 ORDER BY position ASC LIMIT 1`, userID).Scan(&id)
	return id, err
}
