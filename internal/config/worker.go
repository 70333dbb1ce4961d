package config

// WorkerConfig holds background scheduler configuration.
type WorkerConfig struct {
	ReminderInterval Duration `env:"TODO_REMINDER_INTERVAL" env-default:"60s" env-description:"How often due reminders are promoted"`
	OperationTimeout Duration `env:"TODO_WORKER_OPERATION_TIMEOUT" env-default:"30s"`
}
