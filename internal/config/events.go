package config

// EventsConfig controls the RabbitMQ rental event publisher and the
// in-process consumer that records those events.
type EventsConfig struct {
    Enabled         bool   // EVENTS_ENABLED: publish rental.created after checkouts
    ConsumerEnabled bool   // EVENTS_CONSUMER_ENABLED: run the consumer goroutine
    URL             string // broker URL, see RabbitMQURL
    LogDir          string // EVENTS_LOG_DIR: where the consumer writes rentals.log
}

func LoadEventsConfig() EventsConfig {
    return EventsConfig{
        Enabled:         envBool("EVENTS_ENABLED", true),
        ConsumerEnabled: envBool("EVENTS_CONSUMER_ENABLED", true),
        URL:             RabbitMQURL(),
        LogDir:          getenv("EVENTS_LOG_DIR", "logs"),
    }
}
