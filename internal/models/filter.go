package models

// ClientFilter задаёт параметры поиска клиентов.
// Пустые поля означают отсутствие фильтра.
type ClientFilter struct {
	Term   string           // Подстрока имени, фамилии или DNI (без учёта регистра)
	Status MembershipStatus // Состояние абонемента на дату запроса
}
