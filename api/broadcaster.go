package api

import "sync"

// EventType identifies the kind of event a subscriber receives.
type EventType string

const (
	// EventJobStatus fires whenever a job's Status field changes.
	EventJobStatus EventType = "job_status"
)

// BroadcastEvent is a single event delivered to subscribers.
type BroadcastEvent struct {
	Type  EventType `json:"type"`
	JobID string    `json:"jobId"`
	Data  map[string]interface{} `json:"data"`
}

// Subscription is a client's filtered view of the event stream.
type Subscription struct {
	JobID   string // empty = all jobs
	Channel chan BroadcastEvent
}

// Broadcaster fans job-status-change events out to every WebSocket
// client currently subscribed, using a single goroutine to serialize
// register/unregister/broadcast operations against the subscription map.
type Broadcaster struct {
	mu            sync.RWMutex
	subscriptions map[*Subscription]bool
	broadcast     chan BroadcastEvent
	register      chan *Subscription
	unregister    chan *Subscription
	done          chan struct{}
}

// NewBroadcaster creates and starts a Broadcaster.
func NewBroadcaster() *Broadcaster {
	b := &Broadcaster{
		subscriptions: make(map[*Subscription]bool),
		broadcast:     make(chan BroadcastEvent, 256),
		register:      make(chan *Subscription),
		unregister:    make(chan *Subscription),
		done:          make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *Broadcaster) run() {
	for {
		select {
		case sub := <-b.register:
			b.mu.Lock()
			b.subscriptions[sub] = true
			b.mu.Unlock()

		case sub := <-b.unregister:
			b.mu.Lock()
			if b.subscriptions[sub] {
				delete(b.subscriptions, sub)
				close(sub.Channel)
			}
			b.mu.Unlock()

		case event := <-b.broadcast:
			b.mu.RLock()
			for sub := range b.subscriptions {
				if sub.JobID != "" && sub.JobID != event.JobID {
					continue
				}
				select {
				case sub.Channel <- event:
				default:
				}
			}
			b.mu.RUnlock()

		case <-b.done:
			b.mu.Lock()
			for sub := range b.subscriptions {
				close(sub.Channel)
			}
			b.subscriptions = make(map[*Subscription]bool)
			b.mu.Unlock()
			return
		}
	}
}

// Subscribe registers a new subscription, optionally filtered to jobID.
func (b *Broadcaster) Subscribe(jobID string) *Subscription {
	sub := &Subscription{JobID: jobID, Channel: make(chan BroadcastEvent, 64)}
	b.register <- sub
	return sub
}

// Unsubscribe removes sub and closes its channel.
func (b *Broadcaster) Unsubscribe(sub *Subscription) {
	b.unregister <- sub
}

// BroadcastJobStatus announces a job's new status to matching subscribers.
func (b *Broadcaster) BroadcastJobStatus(jobID string, status Status) {
	select {
	case b.broadcast <- BroadcastEvent{
		Type:  EventJobStatus,
		JobID: jobID,
		Data:  map[string]interface{}{"status": string(status)},
	}:
	default:
	}
}

// Close shuts the broadcaster down and closes every open subscription.
func (b *Broadcaster) Close() {
	close(b.done)
}

// SubscriptionCount reports the number of active subscriptions.
func (b *Broadcaster) SubscriptionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscriptions)
}
