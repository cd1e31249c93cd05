package wsbridge

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/golang/snappy"
	"github.com/gorilla/websocket"

	"matchsim/engine/internal/schedule"
)

// upgrader is shared across connections. Its origin check accepts every
// origin, and no caller checks origins before ServeSpectator is reached
// (cmd/matchd's /spectate handler checks only the HMAC token), matching the
// teacher's own upgrader configuration for its telemetry socket.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// wireEnvelope is the JSON-serializable form of an Envelope sent over the
// wire, snappy-compressed before the binary WebSocket frame is written —
// mirroring the teacher's bandwidth-tiered streaming choice for the same
// concern.
type wireEnvelope struct {
	Sequence    uint64          `json:"sequence"`
	Kind        Kind            `json:"kind"`
	Tick        schedule.Tick   `json:"tick"`
	PayloadKind string          `json:"payload_kind"`
	Payload     json.RawMessage `json:"payload"`
}

func encodeEnvelope(env *Envelope) ([]byte, error) {
	payload, err := json.Marshal(env.Payload)
	if err != nil {
		return nil, err
	}
	wire := wireEnvelope{
		Sequence:    env.Sequence,
		Kind:        env.Kind,
		Tick:        env.Tick,
		PayloadKind: schedule.Kind(env.Payload),
		Payload:     payload,
	}
	data, err := json.Marshal(wire)
	if err != nil {
		return nil, err
	}
	return snappy.Encode(nil, data), nil
}

// ServeSpectator upgrades an HTTP request to a WebSocket connection and
// pumps the subscription's events to it until the connection closes or
// the request context is cancelled. Incoming text frames are treated as
// acknowledgement sequence numbers.
func ServeSpectator(stream *Stream, subscriberID string, w http.ResponseWriter, r *http.Request) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	sub, err := stream.Subscribe(subscriberID, 64)
	if err != nil {
		return err
	}
	defer sub.Close()

	done := make(chan struct{})
	go pumpAcks(conn, sub, done)

	const writeWait = 5 * time.Second
	for {
		select {
		case <-done:
			return nil
		case env, ok := <-sub.Events():
			if !ok {
				return nil
			}
			frame, err := encodeEnvelope(env)
			if err != nil {
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				return err
			}
		}
	}
}

func pumpAcks(conn *websocket.Conn, sub *Subscription, done chan struct{}) {
	defer close(done)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var ack struct {
			Ack uint64 `json:"ack"`
		}
		if json.Unmarshal(data, &ack) != nil {
			continue
		}
		_ = sub.Ack(ack.Ack)
	}
}
