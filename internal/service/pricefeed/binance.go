package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	drepo "TradePilot/internal/domain/repository"
	"TradePilot/pkg/logger"

	"github.com/gorilla/websocket"
)

// Binance implements PriceFeed over the Binance combined miniTicker
// stream. Last prices are kept in memory per symbol; consumers read them
// through LastPrice and never block on the socket.
type Binance struct {
	websocketURL   string
	symbols        []string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	log            *logger.Logger

	mu        sync.RWMutex
	prices    map[string]float64
	conn      *websocket.Conn
	connected bool
}

// NewBinance creates a Binance price feed for the given symbols.
func NewBinance(websocketURL string, symbols []string, reconnectDelay, pingInterval time.Duration, log *logger.Logger) drepo.PriceFeed {
	if reconnectDelay <= 0 {
		reconnectDelay = 5 * time.Second
	}
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	return &Binance{
		websocketURL:   websocketURL,
		symbols:        symbols,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		log:            log,
		prices:         make(map[string]float64),
	}
}

// Connect establishes the combined-stream WebSocket connection.
func (b *Binance) Connect(ctx context.Context) error {
	streams := make([]string, 0, len(b.symbols))
	for _, s := range b.symbols {
		streams = append(streams, strings.ToLower(s)+"@miniTicker")
	}
	u := fmt.Sprintf("%s/stream?streams=%s", b.websocketURL, strings.Join(streams, "/"))

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("binance connect: %w", err)
	}

	b.mu.Lock()
	b.conn = conn
	b.connected = true
	b.mu.Unlock()

	b.log.Info("price feed connected", logger.Strings("symbols", b.symbols))
	return nil
}

// Subscribe is a no-op for combined streams: subscriptions are encoded in
// the connect URL.
func (b *Binance) Subscribe(ctx context.Context) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.conn == nil || !b.connected {
		return fmt.Errorf("price feed not connected")
	}
	return nil
}

type miniTicker struct {
	Symbol string `json:"s"`
	Close  string `json:"c"`
}

type streamFrame struct {
	Stream string     `json:"stream"`
	Data   miniTicker `json:"data"`
}

// Run reads ticker frames until ctx is cancelled, reconnecting on read
// errors after the configured delay.
func (b *Binance) Run(ctx context.Context) error {
	go b.pingLoop(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		conn := b.current()
		if conn == nil {
			if err := b.reconnect(ctx); err != nil {
				b.log.Warn("price feed reconnect failed", logger.Error(err))
			}
			continue
		}

		_, raw, err := conn.ReadMessage()
		if err != nil {
			b.log.Warn("price feed read failed", logger.Error(err))
			b.mu.Lock()
			b.connected = false
			b.conn = nil
			b.mu.Unlock()
			_ = conn.Close()
			continue
		}

		var frame streamFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			// ignore non-ticker frames
			continue
		}
		if frame.Data.Symbol == "" {
			continue
		}
		price, err := strconv.ParseFloat(frame.Data.Close, 64)
		if err != nil || price <= 0 {
			continue
		}

		b.mu.Lock()
		b.prices[strings.ToUpper(frame.Data.Symbol)] = price
		b.mu.Unlock()
	}
}

// LastPrice returns the most recent close price seen for a symbol.
func (b *Binance) LastPrice(symbol string) (float64, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	p, ok := b.prices[strings.ToUpper(symbol)]
	return p, ok
}

// Close closes the WebSocket connection.
func (b *Binance) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.connected = false
	if b.conn != nil {
		err := b.conn.Close()
		b.conn = nil
		return err
	}
	return nil
}

// IsConnected indicates status.
func (b *Binance) IsConnected() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.connected
}

func (b *Binance) current() *websocket.Conn {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.conn
}

func (b *Binance) reconnect(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(b.reconnectDelay):
	}
	return b.Connect(ctx)
}

func (b *Binance) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(b.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if conn := b.current(); conn != nil {
				_ = conn.WriteMessage(websocket.PingMessage, nil)
			}
		}
	}
}
