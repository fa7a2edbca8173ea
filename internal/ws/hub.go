package ws

// Subscriber abstracts a streaming client.
type Subscriber interface {
	Send([]byte) error
	Close()
}

// Hub manages stream subscriptions by task name.
// The clients map is owned by the run goroutine; all access goes
// through the channels.
type Hub struct {
	clients   map[string]map[Subscriber]struct{}
	register  chan subscription
	unreg     chan subscription
	broadcast chan message
}

// message couples payload with task identifier.
type message struct {
	task    string
	payload []byte
}

// subscription defines register/unregister requests.
type subscription struct {
	task   string
	client Subscriber
}

// NewHub creates an initialized Hub.
func NewHub() *Hub {
	h := &Hub{
		clients:   make(map[string]map[Subscriber]struct{}),
		register:  make(chan subscription),
		unreg:     make(chan subscription),
		broadcast: make(chan message),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case sub := <-h.register:
			if _, ok := h.clients[sub.task]; !ok {
				h.clients[sub.task] = make(map[Subscriber]struct{})
			}
			h.clients[sub.task][sub.client] = struct{}{}
		case sub := <-h.unreg:
			if clients, ok := h.clients[sub.task]; ok {
				delete(clients, sub.client)
				if len(clients) == 0 {
					delete(h.clients, sub.task)
				}
			}
		case msg := <-h.broadcast:
			if clients, ok := h.clients[msg.task]; ok {
				for c := range clients {
					if err := c.Send(msg.payload); err != nil {
						c.Close()
						delete(clients, c)
					}
				}
				if len(clients) == 0 {
					delete(h.clients, msg.task)
				}
			}
		}
	}
}

// Register adds a client to a task stream.
func (h *Hub) Register(task string, client Subscriber) {
	h.register <- subscription{task: task, client: client}
}

// Unregister removes a client.
func (h *Hub) Unregister(task string, client Subscriber) {
	h.unreg <- subscription{task: task, client: client}
}

// Broadcast sends payload to all task subscribers.
func (h *Hub) Broadcast(task string, payload []byte) {
	h.broadcast <- message{task: task, payload: payload}
}
