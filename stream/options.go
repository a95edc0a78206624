package stream

import "github.com/google/uuid"

// config holds settings shared by Writer and Player.
type config struct {
	prefix string
	text   TextCodec
}

// Option configures a Writer or a Player.
type Option func(*config)

// WithRefPrefix sets the ref prefix a Writer stamps on its buffers.
// Players ignore it: they read the prefix from each buffer.
func WithRefPrefix(prefix string) Option {
	return func(c *config) {
		c.prefix = prefix
	}
}

// WithSessionPrefix gives a Writer a random, globally unique ref prefix,
// so recordings from independent writers can share one Player.
func WithSessionPrefix() Option {
	return func(c *config) {
		c.prefix = uuid.NewString()
	}
}

// WithTextCodec selects how String arguments are encoded (Writer) or
// decoded (Player). Both ends of a stream must agree. The default is UTF8.
func WithTextCodec(codec TextCodec) Option {
	return func(c *config) {
		c.text = codec
	}
}

func newConfig(opts []Option) config {
	c := config{text: UTF8}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
