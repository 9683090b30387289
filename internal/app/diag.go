package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"

	"github.com/relabs-tech/sensor_node/internal/cache"
)

// cacheStatus is the JSON shape of GET /api/cache.
type cacheStatus struct {
	Count    int `json:"count"`
	Capacity int `json:"capacity"`

	Produced         uint64 `json:"produced"`
	DroppedFull      uint64 `json:"dropped_full"`
	Delivered        uint64 `json:"delivered"`
	DeliveryFailures uint64 `json:"delivery_failures"`
	DroppedRequeue   uint64 `json:"dropped_requeue"`
}

// diagServer answers external reads of the cache fill level and the node's
// drop counters. It is the third concurrent accessor of the cache, next to
// the producer and consumer tasks; Len serializes through the cache mutex.
type diagServer struct {
	cache    *cache.Cache
	producer *Producer
	consumer *Consumer
	server   *http.Server
}

func newDiagServer(c *cache.Cache, p *Producer, cons *Consumer, port int) (*diagServer, error) {
	d := &diagServer{cache: c, producer: p, consumer: cons}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/cache", d.handleCache)

	addr := fmt.Sprintf(":%d", port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("diagnostics listen on %s: %w", addr, err)
	}

	d.server = &http.Server{Handler: mux}
	go func() {
		if err := d.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("diagnostics server error: %v", err)
		}
	}()
	log.Printf("diagnostics server listening on %s", addr)

	return d, nil
}

func (d *diagServer) handleCache(w http.ResponseWriter, r *http.Request) {
	status := cacheStatus{
		Count:            d.cache.Len(),
		Capacity:         d.cache.Cap(),
		Produced:         d.producer.Produced(),
		DroppedFull:      d.producer.Dropped(),
		Delivered:        d.consumer.Delivered(),
		DeliveryFailures: d.consumer.Failures(),
		DroppedRequeue:   d.consumer.DroppedRequeue(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		log.Printf("diagnostics: json encode error: %v", err)
	}
}

func (d *diagServer) close() error {
	return d.server.Close()
}
