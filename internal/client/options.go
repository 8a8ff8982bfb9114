package client

import (
	"time"

	"github.com/KilimcininKorOglu/obasdk/internal/logging"
)

// Default client settings.
const (
	DefaultDialTimeout     = 10 * time.Second
	DefaultResponseTimeout = 30 * time.Second
	// MaxMessageSize is the default limit for a single response (16 MB).
	MaxMessageSize = 16 * 1024 * 1024
)

type options struct {
	dialTimeout     time.Duration
	responseTimeout time.Duration
	maxMessageSize  int
	logger          logging.Logger
}

func defaultOptions() options {
	return options{
		dialTimeout:     DefaultDialTimeout,
		responseTimeout: DefaultResponseTimeout,
		maxMessageSize:  MaxMessageSize,
		logger:          logging.NewNop(),
	}
}

// Option configures a Conn.
type Option func(*options)

// WithDialTimeout bounds connection establishment.
func WithDialTimeout(d time.Duration) Option {
	return func(o *options) {
		o.dialTimeout = d
	}
}

// WithResponseTimeout sets the wait used when a request sets no timeout of
// its own. Zero waits until the context is done.
func WithResponseTimeout(d time.Duration) Option {
	return func(o *options) {
		o.responseTimeout = d
	}
}

// WithMaxMessageSize limits the size of a response message.
func WithMaxMessageSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxMessageSize = n
		}
	}
}

// WithLogger sets the connection logger.
func WithLogger(l logging.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
