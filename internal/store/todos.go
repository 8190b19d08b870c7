package store

import (
	"context"

	"github.com/cory321/threadfolio/internal/models"
)

func (s *Store) CreateTodo(ctx context.Context, t *models.Todo) error {
	query := `INSERT INTO todos (user_id, title, created_at) VALUES ($1, $2, now()) RETURNING id, created_at`
	return s.DB.QueryRowContext(ctx, query, t.UserID, t.Title).Scan(&t.ID, &t.CreatedAt)
}

func (s *Store) GetTodos(ctx context.Context, userID int) ([]models.Todo, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, user_id, title, created_at FROM todos WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var todos []models.Todo
	for rows.Next() {
		var t models.Todo
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.CreatedAt); err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}
	return todos, rows.Err()
}

func (s *Store) DeleteTodo(ctx context.Context, userID, id int) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM todos WHERE id = $1 AND user_id = $2`, id, userID)
	return err
}
