package feed

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/gorilla/websocket"

	"tradeframe-go/internal/market"
	"tradeframe-go/internal/metrics"
)

type streamAuth struct {
	Action string `json:"action"`
	Key    string `json:"key"`
	Secret string `json:"secret"`
}

type streamSubscribe struct {
	Action string   `json:"action"`
	Bars   []string `json:"bars"`
}

type streamMessage struct {
	Type      string  `json:"T"`
	Symbol    string  `json:"S"`
	Open      float64 `json:"o"`
	High      float64 `json:"h"`
	Low       float64 `json:"l"`
	Close     float64 `json:"c"`
	Volume    float64 `json:"v"`
	Timestamp string  `json:"t"`
	Msg       string  `json:"msg"`
}

// runStream consumes the Alpaca websocket bar channel, reconnecting with a
// capped backoff on disconnects.
func (f *Feed) runStream(ctx context.Context, out chan<- market.Bar) error {
	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := f.consumeStream(ctx, out); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			f.log.Warn().Err(err).Msg("bar stream disconnected, retrying")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff = time.Duration(math.Min(float64(maxBackoff), float64(backoff)*1.8))
			continue
		}
		return nil
	}
}

func (f *Feed) consumeStream(ctx context.Context, out chan<- market.Bar) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, f.streamURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.WriteJSON(streamAuth{Action: "auth", Key: f.apiKey, Secret: f.apiSecret}); err != nil {
		return err
	}
	if err := conn.WriteJSON(streamSubscribe{Action: "subscribe", Bars: []string{f.symbol}}); err != nil {
		return err
	}

	f.log.Info().Str("provider", ProviderAlpacaStream).Str("symbol", f.symbol).Msg("connected bar stream")

	conn.SetReadLimit(1 << 20)
	conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		return nil
	})

	pingCtx, pingCancel := context.WithCancel(ctx)
	defer pingCancel()
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-pingCtx.Done():
				return
			}
		}
	}()

	go func() {
		<-pingCtx.Done()
		conn.Close()
	}()

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		conn.SetReadDeadline(time.Now().Add(30 * time.Second))

		// The stream wraps every payload in a JSON array of messages.
		var msgs []streamMessage
		if err := json.Unmarshal(payload, &msgs); err != nil {
			f.log.Warn().Err(err).Msg("undecodable stream payload")
			continue
		}
		for _, msg := range msgs {
			switch msg.Type {
			case "b":
				ts, err := time.Parse(time.RFC3339, msg.Timestamp)
				if err != nil {
					f.log.Warn().Err(err).Str("ts", msg.Timestamp).Msg("bad bar timestamp")
					continue
				}
				bar := market.Bar{
					Timestamp: ts,
					Open:      msg.Open,
					High:      msg.High,
					Low:       msg.Low,
					Close:     msg.Close,
					Volume:    msg.Volume,
				}
				select {
				case out <- bar:
					metrics.BarsTotal.WithLabelValues(f.symbol).Inc()
				case <-ctx.Done():
					return ctx.Err()
				}
			case "error":
				f.log.Error().Str("msg", msg.Msg).Msg("stream error message")
			case "success", "subscription":
				// handshake acknowledgements
			}
		}
	}
}
