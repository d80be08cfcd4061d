package bus

// Option applies a configuration option to a Bus.
type Option func(*config)

type config struct {
	topic          string
	maxSubscribers int
}

// WithTopic names the bus for metrics.
func WithTopic(topic string) Option {
	return func(c *config) {
		if topic != "" {
			c.topic = topic
		}
	}
}

// WithMaxSubscribers caps the number of subscribers. Zero means no cap.
func WithMaxSubscribers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxSubscribers = n
		}
	}
}
