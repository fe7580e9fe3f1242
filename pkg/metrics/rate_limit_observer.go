package metrics

// RateLimitObserver records rate-limiting events on the handshake listener
// and the peer directory's lookup endpoint.
type RateLimitObserver struct {
	collector *Collector
	logger    *Logger
}

// NewRateLimitObserver creates a rate limit observer that records metrics and logs events.
func NewRateLimitObserver(collector *Collector, logger *Logger) *RateLimitObserver {
	if collector == nil {
		collector = Global()
	}
	if logger == nil {
		logger = GetLogger()
	}

	return &RateLimitObserver{
		collector: collector,
		logger:    logger.Named("rate_limit"),
	}
}

// OnHandshakeRateLimit records a handshake attempt rejected by the listener's
// rate limiter.
func (o *RateLimitObserver) OnHandshakeRateLimit(remoteAddr string) {
	o.collector.RecordHandshakeRateLimit()
	if remoteAddr != "" {
		o.logger.Warn("handshake rate limit exceeded", Fields{"remote_addr": remoteAddr})
		return
	}
	o.logger.Warn("handshake rate limit exceeded")
}

// OnLookupRateLimit records a directory lookup rejected by the rate limiter.
func (o *RateLimitObserver) OnLookupRateLimit(remoteAddr string) {
	o.collector.RecordLookupRateLimit()
	if remoteAddr != "" {
		o.logger.Warn("directory lookup rate limit exceeded", Fields{"remote_addr": remoteAddr})
		return
	}
	o.logger.Warn("directory lookup rate limit exceeded")
}
