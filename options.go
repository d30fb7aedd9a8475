package pdfs

import (
	"github.com/sirupsen/logrus"

	"github.com/dimdasci/pdfs-api/rasterstore"
)

// Option configures a Processor
type Option func(*Processor)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log logrus.FieldLogger) Option {
	return func(p *Processor) {
		if log != nil {
			p.log = log
		}
	}
}

// WithStore sets where rasters go. The default keeps them in memory.
func WithStore(s rasterstore.Store) Option {
	return func(p *Processor) {
		if s != nil {
			p.store = s
		}
	}
}

// WithWorkers overrides the configured number of page workers.
// n <= 0 uses one worker per CPU.
func WithWorkers(n int) Option {
	return func(p *Processor) { p.workers = n }
}
