package membership

import (
	"time"

	"github.com/magabrotheeeer/gym-membership-engine/internal/lib/dates"
	"github.com/magabrotheeeer/gym-membership-engine/internal/models"
)

// Compute выводит состояние абонемента из истории платежей клиента на дату asOf.
//
// Берётся платёж с наибольшим DueAt: если DueAt >= asOf, абонемент активен,
// иначе просрочен. Без платежей: StatusNoPayments. Строки без DueAt
// пропускаются. При равных DueAt для отображения выбирается платёж
// с наибольшим PaidAt, затем с наибольшим ID; на статус это не влияет.
// Входной срез не изменяется.
func Compute(payments []models.Payment, asOf time.Time) models.MembershipState {
	var latest *models.Payment
	for i := range payments {
		p := &payments[i]
		if p.DueAt.IsZero() {
			continue
		}
		if latest == nil || newer(p, latest) {
			latest = p
		}
	}
	if latest == nil {
		return models.MembershipState{Status: models.StatusNoPayments}
	}

	due := dates.Day(latest.DueAt)
	status := models.StatusExpired
	if !due.Before(dates.Day(asOf)) {
		status = models.StatusActive
	}
	return models.MembershipState{
		Status: status,
		DueAt:  &due,
		LatestPayment: &models.LatestPayment{
			PaymentID: latest.ID,
			Amount:    latest.Amount,
			Method:    latest.Method,
			PaidAt:    dates.Day(latest.PaidAt),
			Plan:      PlanLabel(latest.MonthsPaid),
		},
	}
}

func newer(a, b *models.Payment) bool {
	ad, bd := dates.Day(a.DueAt), dates.Day(b.DueAt)
	if !ad.Equal(bd) {
		return ad.After(bd)
	}
	ap, bp := dates.Day(a.PaidAt), dates.Day(b.PaidAt)
	if !ap.Equal(bp) {
		return ap.After(bp)
	}
	return a.ID > b.ID
}

// CoversDay сообщает, покрывает ли платёж день d: PaidAt <= d <= DueAt.
// Некорректные строки (пустые даты, DueAt раньше PaidAt) ничего не покрывают.
func CoversDay(p models.Payment, d time.Time) bool {
	if p.PaidAt.IsZero() || p.DueAt.IsZero() || p.DueAt.Before(p.PaidAt) {
		return false
	}
	return dates.Between(d, p.PaidAt, p.DueAt)
}
