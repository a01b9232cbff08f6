package config

import "time"

// QueueConfig describes the RabbitMQ connection used for entry change
// notifications.  An empty URL disables publishing.
type QueueConfig struct {
	URL             string
	Queue           string
	PublishTimeout  time.Duration
	ConsumerEnabled bool
	AuditLogPath    string
}

// LoadQueueConfig reads RABBITMQ_URL (or AMQP_URL) and the JOURNAL_QUEUE_*
// settings.
func LoadQueueConfig() QueueConfig {
	url := getenv("RABBITMQ_URL", getenv("AMQP_URL", ""))
	return QueueConfig{
		URL:             url,
		Queue:           getenv("JOURNAL_QUEUE_NAME", "journal.entry.changed"),
		PublishTimeout:  envDur("JOURNAL_QUEUE_PUBLISH_TIMEOUT", 5*time.Second),
		ConsumerEnabled: envBool("JOURNAL_QUEUE_CONSUMER", false),
		AuditLogPath:    getenv("JOURNAL_AUDIT_LOG", "logs/journal.log"),
	}
}

// Enabled reports whether a broker URL is configured.
func (q QueueConfig) Enabled() bool { return q.URL != "" }
