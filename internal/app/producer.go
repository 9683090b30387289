package app

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/relabs-tech/sensor_node/internal/cache"
	"github.com/relabs-tech/sensor_node/internal/sensors"
)

// Producer periodically pulls a sample from its source and pushes it into
// the cache. A full cache drops the sample on the floor; the drop is logged
// and counted but never fatal.
type Producer struct {
	source   sensors.Source
	cache    *cache.Cache
	interval time.Duration

	produced atomic.Uint64
	dropped  atomic.Uint64
}

func NewProducer(source sensors.Source, c *cache.Cache, interval time.Duration) *Producer {
	return &Producer{source: source, cache: c, interval: interval}
}

// Run generates one sample per interval until ctx is cancelled.
func (p *Producer) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	log.Printf("producer: sampling every %v", p.interval)
	for {
		select {
		case <-ctx.Done():
			log.Printf("producer: stopped (produced=%d dropped=%d)",
				p.produced.Load(), p.dropped.Load())
			return ctx.Err()
		case <-ticker.C:
			p.tick()
		}
	}
}

// tick is one producer activation. Exposed to the package so tests drive
// single activations without timers.
func (p *Producer) tick() {
	s, err := p.source.Next()
	if err != nil {
		log.Printf("producer: sample read error: %v", err)
		return
	}
	if !p.cache.Push(s) {
		p.dropped.Add(1)
		log.Println("producer: sample cache full, dropping sample")
		return
	}
	p.produced.Add(1)
}

// Produced returns the number of samples accepted by the cache.
func (p *Producer) Produced() uint64 { return p.produced.Load() }

// Dropped returns the number of samples rejected by a full cache.
func (p *Producer) Dropped() uint64 { return p.dropped.Load() }
