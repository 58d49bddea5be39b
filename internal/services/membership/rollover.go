package membership

import (
	"fmt"
	"time"

	"github.com/magabrotheeeer/gym-membership-engine/internal/lib/dates"
	"github.com/magabrotheeeer/gym-membership-engine/internal/models"
)

// NextDueDate считает новую дату окончания при оплате months месяцев в день asOf.
//
// Если текущий срок есть и не раньше asOf, месяцы добавляются к нему,
// иначе отсчёт начинается заново от asOf: просроченный абонемент
// не даёт бесплатных дней. Дата оплаты всегда равна asOf.
func NextDueDate(currentDueAt *time.Time, asOf time.Time, months int) (time.Time, error) {
	const op = "membership.NextDueDate"
	if months < 1 {
		return time.Time{}, fmt.Errorf("%s: months must be >= 1, got %d: %w", op, months, models.ErrInvalidInput)
	}
	today := dates.Day(asOf)
	base := today
	if currentDueAt != nil && !currentDueAt.IsZero() {
		if due := dates.Day(*currentDueAt); !due.Before(today) {
			base = due
		}
	}
	return dates.AddCalendarMonths(base, months), nil
}

// PlanLabel возвращает название тарифа по числу оплаченных месяцев.
func PlanLabel(months int) string {
	switch months {
	case 1:
		return "Mensual"
	case 3:
		return "Trimestral"
	case 6:
		return "Semestral"
	case 12:
		return "Anual"
	default:
		return fmt.Sprintf("%d meses", months)
	}
}

// PeriodLabel возвращает справочную метку периода "M/YYYY" по дате окончания.
func PeriodLabel(due time.Time) string {
	return fmt.Sprintf("%d/%d", int(due.Month()), due.Year())
}
