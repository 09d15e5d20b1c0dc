package sse

import "sync"

// Hub — простой hub для SSE по runID.
// Медленный подписчик теряет сообщения, издатель никогда не блокируется.
type Hub struct {
	mu    sync.Mutex
	conns map[string][]chan string
	size  int
}

// NewHub создаёт hub; size — ёмкость буфера канала подписчика
func NewHub(size int) *Hub {
	if size <= 0 {
		size = 16
	}
	return &Hub{conns: map[string][]chan string{}, size: size}
}

// Subscribe подписывает клиента на id, возвращает канал и функцию-unsubscribe
func (h *Hub) Subscribe(id string) (<-chan string, func()) {
	ch := make(chan string, h.size)

	h.mu.Lock()
	h.conns[id] = append(h.conns[id], ch)
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			list := h.conns[id]
			for i, c := range list {
				if c == ch {
					h.conns[id] = append(list[:i:i], list[i+1:]...)
					break
				}
			}
			if len(h.conns[id]) == 0 {
				delete(h.conns, id)
			}
		})
	}

	return ch, cancel
}

// Publish отсылает сообщение всем подписчикам runID
func (h *Hub) Publish(id, msg string) {
	h.mu.Lock()
	list := append([]chan string(nil), h.conns[id]...)
	h.mu.Unlock()

	for _, ch := range list {
		select {
		case ch <- msg:
		default:
			// игнорируем, если канал забит
		}
	}
}

// Subscribers — число активных подписчиков id
func (h *Hub) Subscribers(id string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns[id])
}
