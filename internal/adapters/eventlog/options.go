package eventlog

import "github.com/tonyntran/fantasy-auction-assistant/pkg/logger"

// Option applies a configuration option to the JSONLStore.
type Option func(*JSONLStore)

// WithFsync forces an fsync after every append. Slower, but an append
// survives an OS crash, not just a process crash.
func WithFsync(enabled bool) Option {
	return func(s *JSONLStore) {
		s.fsync = enabled
	}
}

// WithLogger sets the logger used for scan and replay diagnostics.
func WithLogger(log logger.Logger) Option {
	return func(s *JSONLStore) {
		if log != nil {
			s.log = log
		}
	}
}
