// Package events provides the typed publish/subscribe channel used to push
// stock and sale updates to connected clients. Views subscribe on attach and
// must call the returned cancel func on teardown — there is no global
// listener registry.
package events

import (
	"sync"
	"time"
)

// Tipo identifies the event kind.
type Tipo string

const (
	TipoVenta Tipo = "venta"
	TipoStock Tipo = "stock"
)

// StockCambio is the post-sale stock level of one product.
type StockCambio struct {
	ProductoID string `json:"producto_id"`
	Nombre     string `json:"nombre"`
	Cantidad   int    `json:"cantidad"`
}

// Evento is the payload delivered to subscribers.
type Evento struct {
	Tipo      Tipo          `json:"tipo"`
	VentaID   string        `json:"venta_id,omitempty"`
	Stocks    []StockCambio `json:"stocks,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// Bus fans events out to subscriber channels. Publish never blocks: a
// subscriber that cannot keep up misses events rather than stalling the
// sale path.
type Bus struct {
	mu   sync.RWMutex
	subs map[int]chan Evento
	next int
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Evento)}
}

// Subscribe registers a new subscriber and returns its channel plus a cancel
// func. Cancel is idempotent and closes the channel.
func (b *Bus) Subscribe(buffer int) (<-chan Evento, func()) {
	if buffer < 1 {
		buffer = 8
	}
	ch := make(chan Evento, buffer)

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers e to every current subscriber without blocking.
func (b *Bus) Publish(e Evento) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribers returns the current subscriber count (health/metrics).
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
