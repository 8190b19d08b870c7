package store

import (
	"context"
	"database/sql"
)

type DashboardStats struct {
	TotalClients    int
	TotalOrders     int
	OpenOrders      int
	UpcomingAppts   int
	GarmentsByStage []StageGarmentCount
}

type StageGarmentCount struct {
	StageID      int
	Name         string
	Color        string
	GarmentCount int
}

func (s *Store) GetDashboardStats(ctx context.Context, userID int) (*DashboardStats, error) {
	stats := &DashboardStats{}

	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM clients WHERE user_id = $1`, userID).Scan(&stats.TotalClients)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	err = s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID).Scan(&stats.TotalOrders)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	err = s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders WHERE user_id = $1 AND status NOT IN ('completed', 'cancelled')`, userID).
		Scan(&stats.OpenOrders)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	err = s.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM appointments
		WHERE user_id = $1 AND date >= CURRENT_DATE AND status IN ('scheduled', 'confirmed')
	`, userID).Scan(&stats.UpcomingAppts)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT st.id, st.name, st.color, COUNT(g.id) as garment_count
		FROM stages st
		LEFT JOIN garments g ON g.stage_id = st.id
		WHERE st.user_id = $1
		GROUP BY st.id, st.name, st.color, st.position
		ORDER BY st.position ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var sgc StageGarmentCount
		if err := rows.Scan(&sgc.StageID, &sgc.Name, &sgc.Color, &sgc.GarmentCount); err != nil {
			return nil, err
		}
		stats.GarmentsByStage = append(stats.GarmentsByStage, sgc)
	}

	return stats, rows.Err()
}
