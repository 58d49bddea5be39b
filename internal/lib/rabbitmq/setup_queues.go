package rabbitmq

const (
	// ExchangeNotifications: direct-обменник для всех уведомлений о членстве.
	ExchangeNotifications = "notifications"
	// RoutingKeyExpiring: ключ сообщений о членстве, истекающем завтра.
	RoutingKeyExpiring = "membership.expiring"
)

// QueueConfig описывает очередь и ключ, с которым она привязана к обменнику.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues возвращает очереди, которые объявляет нотификатор.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "notifications.membership_expiring", RoutingKey: RoutingKeyExpiring},
	}
}
