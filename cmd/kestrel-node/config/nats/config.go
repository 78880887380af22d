package natsconfig

import (
	"time"

	"github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config"
)

const (
	// TimeoutDefault is a default NATS connection timeout.
	TimeoutDefault = 5 * time.Second

	// QueueSizeDefault is a default capacity of the notification queue.
	QueueSizeDefault = 1024
)

// NATS contains configuration of object notifications sent to NATS.
type NATS struct {
	Enabled      bool          `mapstructure:"enabled"`
	Endpoint     string        `mapstructure:"endpoint"`
	Timeout      time.Duration `mapstructure:"timeout"`
	DefaultTopic string        `mapstructure:"default_topic"`
	QueueSize    int           `mapstructure:"queue_size"`
	TLS          struct {
		Certificate string `mapstructure:"certificate"`
		Key         string `mapstructure:"key"`
		CA          string `mapstructure:"ca"`
	} `mapstructure:"tls"`
}

// Get decodes "nats" section of c.
//
// Panics if the section can not be decoded.
func Get(c *config.Config) NATS {
	var n NATS
	if err := c.Sub("nats").Unmarshal(&n); err != nil {
		panic(err)
	}

	if n.Timeout <= 0 {
		n.Timeout = TimeoutDefault
	}

	if n.QueueSize <= 0 {
		n.QueueSize = QueueSizeDefault
	}

	return n
}
