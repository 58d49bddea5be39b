// Package dates содержит календарную арифметику движка: нормализацию к дню,
// добавление календарных месяцев и границы месяцев. Все даты приводятся
// к полуночи UTC, чтобы сравнения не зависели от времени суток и часового пояса.
package dates

import (
	"fmt"
	"time"
)

// Layout: формат календарной даты в API и метках графиков.
const Layout = "2006-01-02"

// MonthLayout: формат метки месяца.
const MonthLayout = "2006-01"

// Day отбрасывает время суток, сохраняя календарную дату в её собственном поясе.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddCalendarMonths добавляет n календарных месяцев. Если в целевом месяце
// меньше дней, день прижимается к последнему: 31.01 + 1 месяц = 28.02 (29.02).
func AddCalendarMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	if last := DaysIn(first.Year(), first.Month()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC)
}

// AddDays сдвигает дату на n дней.
func AddDays(t time.Time, n int) time.Time {
	return Day(t).AddDate(0, 0, n)
}

// DaysIn возвращает количество дней в месяце.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// StartOfMonth возвращает первый день месяца даты t.
func StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// EndOfMonth возвращает последний день месяца даты t.
func EndOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, DaysIn(y, m), 0, 0, 0, 0, time.UTC)
}

// Between сообщает, лежит ли день d в отрезке [from, to] включительно.
func Between(d, from, to time.Time) bool {
	d = Day(d)
	return !d.Before(Day(from)) && !d.After(Day(to))
}

// ParseDay разбирает дату в формате 2006-01-02.
func ParseDay(s string) (time.Time, error) {
	const op = "dates.ParseDay"
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

// Format печатает календарную дату в формате 2006-01-02.
func Format(t time.Time) string {
	return Day(t).Format(Layout)
}
