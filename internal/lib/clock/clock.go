// Package clock поставляет текущую календарную дату. Движок никогда не читает
// time.Now напрямую: часы внедряются, чтобы арифметика дат была проверяемой.
package clock

import (
	"time"

	"github.com/magabrotheeeer/gym-membership-engine/internal/lib/dates"
)

// Clock возвращает сегодняшнюю дату без времени суток.
type Clock interface {
	Today() time.Time
}

// System: часы по системному времени в часовом поясе зала.
type System struct {
	loc *time.Location
	now func() time.Time
}

// NewSystem создаёт системные часы для пояса loc. nil означает UTC.
func NewSystem(loc *time.Location) *System {
	if loc == nil {
		loc = time.UTC
	}
	return &System{loc: loc, now: time.Now}
}

// Today возвращает текущую дату в поясе зала.
func (s *System) Today() time.Time {
	return dates.Day(s.now().In(s.loc))
}

// Fixed: часы, которые всегда возвращают одну и ту же дату.
type Fixed time.Time

// Today реализует Clock.
func (f Fixed) Today() time.Time {
	return dates.Day(time.Time(f))
}
