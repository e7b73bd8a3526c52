// net_bridge.go - WebSocket network bridge

/*
net_bridge.go - Network Bridge

Relays the guest's Ethernet frames over a WebSocket connection to a relay
server. Bus traffic on net0-send becomes binary frames out; binary frames in
are published on net0-receive. Text frames carry the JSON control side
channel (register handshake, ping/pong keepalive).

The bridge is best-effort in the same spirit as the display layer: frames
sent while disconnected are dropped, and the connection is re-established
with capped exponential backoff plus jitter. The guest's network stack
already tolerates a lossy wire, so nothing here retries or buffers.

Inbound frames are delivered on the bridge's read goroutine; the emulator
core synchronizes its own bus ingress.
*/

package main

import (
	"context"
	"fmt"
	"math/rand"
	"net"
	"os"
	"sync"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const (
	reconnectBase = 500 * time.Millisecond
	reconnectCap  = 30 * time.Second
)

type NetBridge struct {
	bus *MessageBus
	url string
	id  string

	mu     sync.Mutex
	conn   net.Conn
	cancel context.CancelFunc
	done   chan struct{}
}

func NewNetBridge(bus *MessageBus, url, machineID string) *NetBridge {
	nb := &NetBridge{
		bus: bus,
		url: url,
		id:  machineID,
	}
	bus.Register("net0-send", func(args []any) {
		nb.sendFrame(argBytes(args, 0))
	})
	return nb
}

// Start begins the dial/read loop. Safe to call once.
func (nb *NetBridge) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	nb.cancel = cancel
	nb.done = make(chan struct{})
	go nb.run(ctx)
}

// Stop tears the connection down and ends the loop.
func (nb *NetBridge) Stop() {
	if nb.cancel == nil {
		return
	}
	nb.cancel()
	nb.mu.Lock()
	if nb.conn != nil {
		nb.conn.Close()
	}
	nb.mu.Unlock()
	<-nb.done
}

func (nb *NetBridge) run(ctx context.Context) {
	defer close(nb.done)

	for attempt := 0; ; attempt++ {
		if ctx.Err() != nil {
			return
		}

		conn, _, _, err := ws.Dial(ctx, nb.url)
		if err != nil {
			delay := reconnectDelay(attempt)
			fmt.Fprintf(os.Stderr, "net_bridge: dial %s: %v (retry in %v)\n", nb.url, err, delay)
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
			continue
		}
		attempt = -1 // next failure starts the schedule over

		nb.mu.Lock()
		nb.conn = conn
		nb.mu.Unlock()

		if err := nb.register(conn); err == nil {
			nb.readLoop(ctx, conn)
		}

		nb.mu.Lock()
		nb.conn = nil
		nb.mu.Unlock()
		conn.Close()
	}
}

// register sends the JSON handshake identifying this machine to the relay.
func (nb *NetBridge) register(conn net.Conn) error {
	msg, _ := sjson.Set("", "type", "register")
	msg, _ = sjson.Set(msg, "id", nb.id)
	return wsutil.WriteClientText(conn, []byte(msg))
}

func (nb *NetBridge) readLoop(ctx context.Context, conn net.Conn) {
	for ctx.Err() == nil {
		data, op, err := wsutil.ReadServerData(conn)
		if err != nil {
			return
		}
		switch op {
		case ws.OpBinary:
			nb.bus.Send("net0-receive", data)
		case ws.OpText:
			nb.handleControl(conn, data)
		}
	}
}

func (nb *NetBridge) handleControl(conn net.Conn, data []byte) {
	switch gjson.GetBytes(data, "type").String() {
	case "ping":
		reply, _ := sjson.Set("", "type", "pong")
		reply, _ = sjson.Set(reply, "id", nb.id)
		_ = wsutil.WriteClientText(conn, []byte(reply))
	case "error":
		fmt.Fprintf(os.Stderr, "net_bridge: relay error: %s\n",
			gjson.GetBytes(data, "message").String())
	}
}

// sendFrame forwards one guest Ethernet frame, dropping it when offline.
func (nb *NetBridge) sendFrame(frame []byte) {
	if len(frame) == 0 {
		return
	}
	nb.mu.Lock()
	conn := nb.conn
	nb.mu.Unlock()
	if conn == nil {
		return
	}
	if err := wsutil.WriteClientBinary(conn, frame); err != nil {
		conn.Close()
	}
}

// reconnectDelay returns the backoff for the nth consecutive failure:
// exponential from 500ms, capped at 30s, with up to 25% jitter.
func reconnectDelay(attempt int) time.Duration {
	d := reconnectBase
	for i := 0; i < attempt && d < reconnectCap; i++ {
		d *= 2
	}
	if d > reconnectCap {
		d = reconnectCap
	}
	return d + time.Duration(rand.Int63n(int64(d)/4+1))
}
