package dashboard

import (
	"sort"
	"time"

	"github.com/magabrotheeeer/gym-membership-engine/internal/lib/dates"
	"github.com/magabrotheeeer/gym-membership-engine/internal/models"
	"github.com/magabrotheeeer/gym-membership-engine/internal/services/membership"
)

// Размеры окон графиков.
const (
	ActiveWindowDays     = 30
	NewClientsMonths     = 6
	AttendanceWindowDays = 15
)

// Имена графиков, используются в списке недоступных данных.
const (
	SeriesActiveClients = "active_clients"
	SeriesNewClients    = "new_clients"
	SeriesAttendance    = "attendance"
	SeriesMembershipMix = "membership_mix"
)

// Point: одна точка графика.
type Point struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// Totals: сводные карточки дашборда.
type Totals struct {
	ActiveToday     int `json:"active_today"`
	NewThisMonth    int `json:"new_this_month"`
	AttendanceToday int `json:"attendance_today"`
	PlanTypes       int `json:"plan_types"`
}

// Metrics: метрики дашборда на дату AsOf.
type Metrics struct {
	AsOf          string   `json:"as_of"`
	ActiveClients []Point  `json:"active_clients"`
	NewClients    []Point  `json:"new_clients"`
	Attendance    []Point  `json:"attendance"`
	MembershipMix []Point  `json:"membership_mix"`
	Totals        Totals   `json:"totals"`
	Unavailable   []string `json:"unavailable,omitempty"`
}

// Input: результаты массовых чтений, из которых строится дашборд.
type Input struct {
	Clients    []models.Client
	Payments   []models.Payment
	Attendance []models.Attendance
}

// Compute строит все четыре графика и итоги. Чистая функция: одинаковые
// входные данные дают одинаковый результат.
func Compute(in Input, asOf time.Time) Metrics {
	day := dates.Day(asOf)
	m := Metrics{
		AsOf:          dates.Format(day),
		ActiveClients: ActiveClientsSeries(in.Payments, day),
		NewClients:    NewClientsSeries(in.Clients, day),
		Attendance:    AttendanceSeries(in.Attendance, day),
		MembershipMix: MembershipMix(in.Payments),
	}
	m.Totals = totalsOf(m)
	return m
}

func totalsOf(m Metrics) Totals {
	last := func(s []Point) int {
		if len(s) == 0 {
			return 0
		}
		return s[len(s)-1].Value
	}
	return Totals{
		ActiveToday:     last(m.ActiveClients),
		NewThisMonth:    last(m.NewClients),
		AttendanceToday: last(m.Attendance),
		PlanTypes:       len(m.MembershipMix),
	}
}

// validPayment отсеивает строки с пустыми датами, DueAt раньше PaidAt
// и числом месяцев меньше 1.
func validPayment(p models.Payment) bool {
	return !p.PaidAt.IsZero() && !p.DueAt.IsZero() &&
		!p.DueAt.Before(p.PaidAt) && p.MonthsPaid >= 1
}

// ActiveClientsSeries считает для каждого дня [asOf-29, asOf] число разных
// клиентов, у которых есть платёж с PaidAt <= день <= DueAt.
// Интервал каждого платежа обрезается по окну.
func ActiveClientsSeries(payments []models.Payment, asOf time.Time) []Point {
	end := dates.Day(asOf)
	start := dates.AddDays(end, -(ActiveWindowDays - 1))

	perDay := make([]map[int64]struct{}, ActiveWindowDays)
	for _, p := range payments {
		if !validPayment(p) {
			continue
		}
		from, to := dates.Day(p.PaidAt), dates.Day(p.DueAt)
		if from.Before(start) {
			from = start
		}
		if to.After(end) {
			to = end
		}
		for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
			i := int(d.Sub(start).Hours() / 24)
			if perDay[i] == nil {
				perDay[i] = make(map[int64]struct{})
			}
			perDay[i][p.ClientID] = struct{}{}
		}
	}

	points := make([]Point, ActiveWindowDays)
	for i := range points {
		points[i] = Point{Label: dates.Format(dates.AddDays(start, i)), Value: len(perDay[i])}
	}
	return points
}

// NewClientsSeries считает клиентов, зарегистрированных в каждом из шести
// календарных месяцев, заканчивающихся месяцем asOf. Границы месяцев точные.
func NewClientsSeries(clients []models.Client, asOf time.Time) []Point {
	current := dates.StartOfMonth(asOf)
	points := make([]Point, NewClientsMonths)
	for i := range points {
		first := dates.AddCalendarMonths(current, i-(NewClientsMonths-1))
		last := dates.EndOfMonth(first)
		count := 0
		for _, c := range clients {
			if c.EnrolledAt.IsZero() {
				continue
			}
			if dates.Between(c.EnrolledAt, first, last) {
				count++
			}
		}
		points[i] = Point{Label: first.Format(dates.MonthLayout), Value: count}
	}
	return points
}

// AttendanceSeries считает разных клиентов с посещением в каждый день
// [asOf-14, asOf]. Всегда ровно 15 точек, пустые дни равны нулю.
func AttendanceSeries(rows []models.Attendance, asOf time.Time) []Point {
	end := dates.Day(asOf)
	start := dates.AddDays(end, -(AttendanceWindowDays - 1))

	perDay := make([]map[int64]struct{}, AttendanceWindowDays)
	for _, a := range rows {
		if a.Date.IsZero() || !dates.Between(a.Date, start, end) {
			continue
		}
		i := int(dates.Day(a.Date).Sub(start).Hours() / 24)
		if perDay[i] == nil {
			perDay[i] = make(map[int64]struct{})
		}
		perDay[i][a.ClientID] = struct{}{}
	}

	points := make([]Point, AttendanceWindowDays)
	for i := range points {
		points[i] = Point{Label: dates.Format(dates.AddDays(start, i)), Value: len(perDay[i])}
	}
	return points
}

// MembershipMix считает платежи по названию тарифа. Порядок: Mensual,
// Trimestral, Semestral, Anual, затем "N meses" по возрастанию N.
func MembershipMix(payments []models.Payment) []Point {
	counts := make(map[int]int)
	for _, p := range payments {
		if !validPayment(p) {
			continue
		}
		counts[p.MonthsPaid]++
	}

	months := make([]int, 0, len(counts))
	for m := range counts {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool {
		return mixRank(months[i]) < mixRank(months[j])
	})

	points := make([]Point, 0, len(months))
	for _, m := range months {
		points = append(points, Point{Label: membership.PlanLabel(m), Value: counts[m]})
	}
	return points
}

// mixRank ставит именованные тарифы перед остальными.
func mixRank(months int) int {
	switch months {
	case 1, 3, 6, 12:
		return months
	}
	return 1000 + months
}
