package app

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/relabs-tech/sensor_node/internal/cache"
	"github.com/relabs-tech/sensor_node/internal/transport"
)

// Consumer periodically pops the oldest cached sample and hands its packed
// bytes to the transport. While the transport is not ready (no peer, or the
// peer has not enabled streaming) the consumer leaves the cache alone:
// popping without a delivery path would silently destroy data.
//
// A failed delivery puts the sample back. The default requeue appends at the
// tail, which re-orders the sample behind anything produced in between; that
// matches the firmware this node replaces. Setting requeueFront restores
// strict FIFO order across delivery retries instead.
type Consumer struct {
	cache        *cache.Cache
	notifier     transport.Notifier
	interval     time.Duration
	requeueFront bool

	delivered      atomic.Uint64
	failures       atomic.Uint64
	droppedRequeue atomic.Uint64
}

func NewConsumer(c *cache.Cache, n transport.Notifier, interval time.Duration, requeueFront bool) *Consumer {
	return &Consumer{cache: c, notifier: n, interval: interval, requeueFront: requeueFront}
}

// Run attempts one delivery per interval until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	log.Printf("consumer: transmitting every %v", c.interval)
	for {
		select {
		case <-ctx.Done():
			log.Printf("consumer: stopped (delivered=%d failures=%d dropped=%d)",
				c.delivered.Load(), c.failures.Load(), c.droppedRequeue.Load())
			return ctx.Err()
		case <-ticker.C:
			c.tick()
		}
	}
}

// tick is one consumer activation; tests call it directly.
func (c *Consumer) tick() {
	if !c.notifier.Ready() {
		return
	}

	s, ok := c.cache.Pop()
	if !ok {
		return
	}

	buf := s.Pack()
	err := c.notifier.Notify(buf[:])
	if err == nil {
		c.delivered.Add(1)
		return
	}
	c.failures.Add(1)
	log.Printf("consumer: delivery failed, requeuing sample: %v", err)

	requeued := false
	if c.requeueFront {
		requeued = c.cache.PushFront(s)
	} else {
		requeued = c.cache.Push(s)
	}
	if !requeued {
		c.droppedRequeue.Add(1)
		log.Println("consumer: cache full on requeue, sample lost")
	}
}

// Delivered returns the number of successfully transmitted samples.
func (c *Consumer) Delivered() uint64 { return c.delivered.Load() }

// Failures returns the number of failed delivery attempts.
func (c *Consumer) Failures() uint64 { return c.failures.Load() }

// DroppedRequeue returns the number of samples lost because the cache was
// full when a failed delivery tried to requeue.
func (c *Consumer) DroppedRequeue() uint64 { return c.droppedRequeue.Load() }
