package repository

import (
	"context"
	"time"

	"github.com/magabrotheeeer/gym-membership-engine/internal/lib/dates"
	"github.com/magabrotheeeer/gym-membership-engine/internal/models"
)

// InsertAttendance добавляет отметку о посещении. Неизвестный клиент
// отклоняется внешним ключом.
func (s *Storage) InsertAttendance(ctx context.Context, a models.Attendance) error {
	const op = "storage.InsertAttendance"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO attendance (client_id, visited_on) VALUES ($1, $2)`,
		a.ClientID, dates.Day(a.Date))
	if err != nil {
		return wrap(op, err)
	}
	return nil
}

// ListAttendance возвращает посещения с дня from включительно.
func (s *Storage) ListAttendance(ctx context.Context, from time.Time) ([]models.Attendance, error) {
	const op = "storage.ListAttendance"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT client_id, visited_on FROM attendance WHERE visited_on >= $1 ORDER BY visited_on, client_id`,
		dates.Day(from))
	if err != nil {
		return nil, wrap(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.Attendance
	for rows.Next() {
		var a models.Attendance
		if err := rows.Scan(&a.ClientID, &a.Date); err != nil {
			return nil, wrap(op, err)
		}
		a.Date = dates.Day(a.Date)
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return result, nil
}
