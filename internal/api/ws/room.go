package ws

import (
	"encoding/json"
	"sync"

	"github.com/go-stomp/stomp/v3/frame"
	"go.uber.org/zap"

	"github.com/eonjenawa/eonjenawa-cli/internal/models"
	"github.com/eonjenawa/eonjenawa-cli/internal/pkg/id"
	"github.com/eonjenawa/eonjenawa-cli/internal/stomp"
)

// Room fans out the messages of one destination to its subscriptions.
type Room struct {
	destination string
	log         *zap.Logger

	subs map[*Client]map[string]struct{} // client -> subscription ids

	subscribeChan   chan subscription
	unsubscribeChan chan subscription
	broadcastChan   chan models.ChatMessage
	countChan       chan chan int
	done            chan struct{}
	stopOnce        sync.Once

	// onEmpty is called from the event loop when the last subscription leaves,
	// just before the room stops.
	onEmpty func(*Room)
}

// subscription is a room-local event. An empty id on unsubscribe removes every
// subscription of the client.
type subscription struct {
	client *Client
	id     string
}

func newRoom(destination string, log *zap.Logger, onEmpty func(*Room)) *Room {
	r := &Room{
		destination:     destination,
		log:             log.With(zap.String("destination", destination)),
		subs:            make(map[*Client]map[string]struct{}),
		subscribeChan:   make(chan subscription),
		unsubscribeChan: make(chan subscription),
		broadcastChan:   make(chan models.ChatMessage, 256),
		countChan:       make(chan chan int),
		done:            make(chan struct{}),
		onEmpty:         onEmpty,
	}
	go r.run()
	return r
}

// run is the room event loop; it serializes all room state changes and fans out
// broadcasts.
func (r *Room) run() {
	for {
		select {
		case s := <-r.subscribeChan:
			ids := r.subs[s.client]
			if ids == nil {
				ids = make(map[string]struct{})
				r.subs[s.client] = ids
			}
			ids[s.id] = struct{}{}
		case s := <-r.unsubscribeChan:
			if s.id == "" {
				delete(r.subs, s.client)
			} else if ids, ok := r.subs[s.client]; ok {
				delete(ids, s.id)
				if len(ids) == 0 {
					delete(r.subs, s.client)
				}
			}
			if len(r.subs) == 0 {
				if r.onEmpty != nil {
					r.onEmpty(r)
				}
				r.stop()
				r.log.Debug("empty room stopped")
				return
			}
		case msg := <-r.broadcastChan:
			r.broadcastToClients(msg)
		case reply := <-r.countChan:
			n := 0
			for _, ids := range r.subs {
				n += len(ids)
			}
			reply <- n
		case <-r.done:
			return
		}
	}
}

// subscribe reports false when the room has already stopped.
func (r *Room) subscribe(c *Client, subID string) bool {
	select {
	case r.subscribeChan <- subscription{client: c, id: subID}:
		return true
	case <-r.done:
		return false
	}
}

func (r *Room) unsubscribe(c *Client, subID string) {
	select {
	case r.unsubscribeChan <- subscription{client: c, id: subID}:
	case <-r.done:
	}
}

func (r *Room) publish(msg models.ChatMessage) {
	select {
	case r.broadcastChan <- msg:
	case <-r.done:
	}
}

// subscriberCount returns the number of live subscriptions, or 0 once stopped.
func (r *Room) subscriberCount() int {
	reply := make(chan int, 1)
	select {
	case r.countChan <- reply:
		return <-reply
	case <-r.done:
		return 0
	}
}

func (r *Room) stop() {
	r.stopOnce.Do(func() { close(r.done) })
}

// broadcastToClients sends one MESSAGE frame per subscription, dropping frames for
// slow consumers.
func (r *Room) broadcastToClients(msg models.ChatMessage) {
	body, err := json.Marshal(msg)
	if err != nil {
		r.log.Error("chat message marshal error", zap.Error(err))
		return
	}
	for c, ids := range r.subs {
		for subID := range ids {
			f := frame.New(frame.MESSAGE,
				frame.Subscription, subID,
				frame.MessageId, id.New(),
				frame.Destination, r.destination,
				frame.ContentType, "application/json",
			)
			f.Body = body
			data, err := stomp.Encode(f)
			if err != nil {
				r.log.Error("stomp encode error", zap.Error(err))
				return
			}
			if !c.trySend(data) {
				r.log.Debug("slow subscriber, frame dropped", zap.String("session", c.session))
			}
		}
	}
}
