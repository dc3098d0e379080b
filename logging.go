package lightnet

import (
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// LoggerPlugin logs the request lifecycle through zerolog: one debug line
// before dispatch and one info/error line on completion, with method, URL,
// status and elapsed time. It never influences the pipeline.
type LoggerPlugin struct {
	log zerolog.Logger

	mu      sync.Mutex
	started map[*http.Request]time.Time
}

// NewLoggerPlugin wraps an existing zerolog logger.
func NewLoggerPlugin(log zerolog.Logger) *LoggerPlugin {
	return &LoggerPlugin{
		log:     log,
		started: make(map[*http.Request]time.Time),
	}
}

// NewConsoleLoggerPlugin logs human-readable lines to stdout.
func NewConsoleLoggerPlugin() *LoggerPlugin {
	log := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()
	return NewLoggerPlugin(log)
}

// WillSend implements Plugin.
func (p *LoggerPlugin) WillSend(req *http.Request) {
	if req == nil {
		return
	}
	p.mu.Lock()
	p.started[req] = time.Now()
	p.mu.Unlock()

	p.log.Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Msg("sending request")
}

// DidReceive implements Plugin.
func (p *LoggerPlugin) DidReceive(resp *Response, err error, req *http.Request) {
	var elapsed time.Duration
	if req != nil {
		p.mu.Lock()
		if start, ok := p.started[req]; ok {
			elapsed = time.Since(start)
			delete(p.started, req)
		}
		p.mu.Unlock()
	}

	event := p.log.Info()
	if err != nil {
		event = p.log.Error().Err(err)
	}
	if req != nil {
		event = event.Str("method", req.Method).Str("url", req.URL.String())
	}
	if resp != nil {
		event = event.Int("status", resp.StatusCode)
	}
	if elapsed > 0 {
		event = event.Dur("elapsed", elapsed)
	}

	if err != nil {
		event.Msg("request failed")
		return
	}
	event.Msg("request completed")
}
