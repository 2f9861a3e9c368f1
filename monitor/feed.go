/* ndnlp - NDN Link Protocol library for Go
 *
 * Copyright (C) 2020-2022 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/named-data/ndnlp/core"
	"github.com/named-data/ndnlp/utils/comparison"
)

// Feed broadcasts NACK events to WebSocket subscribers as JSON messages.
type Feed struct {
	server      http.Server
	upgrader    websocket.Upgrader
	events      <-chan *NackEvent
	mu          sync.Mutex
	subscribers map[*websocket.Conn]chan []byte
	queueSize   int
	HasQuit     chan bool
}

// MakeFeed constructs a Feed serving the specified event channel, listening on
// the address configured under monitor.feed.bind and monitor.feed.port.
func MakeFeed(events <-chan *NackEvent) *Feed {
	host := core.GetConfigStringDefault("monitor.feed.bind", "127.0.0.1")
	port := core.GetConfigUint16Default("monitor.feed.port", 9696)
	f := &Feed{
		server: http.Server{Addr: net.JoinHostPort(host, strconv.FormatUint(uint64(port), 10))},
		upgrader: websocket.Upgrader{
			WriteBufferPool: &sync.Pool{},
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		events:      events,
		subscribers: make(map[*websocket.Conn]chan []byte),
		queueSize:   comparison.Clamp(core.GetConfigIntDefault("monitor.feed.queue_size", 64), 1, 4096),
		HasQuit:     make(chan bool, 1),
	}
	return f
}

func (f *Feed) String() string {
	return "NackFeed, ws://" + f.server.Addr
}

// Run starts the WebSocket server and broadcasts events until the event channel
// is closed.
func (f *Feed) Run() {
	f.server.Handler = http.HandlerFunc(f.handler)

	go func() {
		err := f.server.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			core.LogError(f, "Unable to start feed: ", err)
		}
	}()

	for event := range f.events {
		encoded, err := json.Marshal(event)
		if err != nil {
			core.LogWarn(f, "Unable to encode event: ", err)
			continue
		}
		f.broadcast(encoded)
	}

	f.server.Shutdown(context.TODO())
	f.HasQuit <- true
}

// broadcast queues a message to every subscriber. Subscribers that cannot keep
// up are dropped.
func (f *Feed) broadcast(message []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for conn, queue := range f.subscribers {
		select {
		case queue <- message:
		default:
			core.LogInfo(f, "Dropping slow subscriber ", conn.RemoteAddr())
			delete(f.subscribers, conn)
			close(queue)
		}
	}
}

func (f *Feed) unsubscribe(conn *websocket.Conn) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if queue, ok := f.subscribers[conn]; ok {
		delete(f.subscribers, conn)
		close(queue)
	}
}

func (f *Feed) handler(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	core.LogInfo(f, "Accepting new subscriber ", conn.RemoteAddr())

	queue := make(chan []byte, f.queueSize)
	f.mu.Lock()
	f.subscribers[conn] = queue
	f.mu.Unlock()

	go func() {
		for message := range queue {
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				f.unsubscribe(conn)
				break
			}
		}
		conn.Close()
	}()

	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				f.unsubscribe(conn)
				break
			}
		}
	}()
}
