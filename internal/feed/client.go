package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tradedesk/tradedesk/internal/models"
)

// Client maintains one WebSocket connection to the price feed and
// republishes inbound ticks on a Bus. The connection is re-dialed with
// exponential backoff after any failure; Stop tears it down for good.
type Client struct {
	url string
	bus *Bus

	mu     sync.RWMutex
	conn   *websocket.Conn
	cancel context.CancelFunc
	wg     sync.WaitGroup

	ReadTimeout  time.Duration
	PingInterval time.Duration
}

// NewClient creates a feed client for the given endpoint.
func NewClient(url string, bus *Bus) *Client {
	return &Client{
		url:          url,
		bus:          bus,
		ReadTimeout:  60 * time.Second,
		PingInterval: 30 * time.Second,
	}
}

// Subscribe registers a tick subscriber on the client's bus.
func (c *Client) Subscribe(buffer int) (<-chan models.PriceTick, func()) {
	return c.bus.Subscribe(buffer)
}

// Start launches the connect/read loop. It returns immediately.
func (c *Client) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)
	c.wg.Add(1)
	go c.runLoop(ctx)
}

// Stop closes the connection and waits for the loop to exit.
func (c *Client) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	c.close()
	c.wg.Wait()
}

// Run drives the client under a lifecycle group: it starts the loop
// and blocks until ctx is cancelled.
func (c *Client) Run(ctx context.Context) error {
	c.Start(ctx)
	<-ctx.Done()
	c.close()
	c.wg.Wait()
	return ctx.Err()
}

func (c *Client) runLoop(ctx context.Context) {
	defer c.wg.Done()
	retry := 0

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := c.connect(ctx); err != nil {
			slog.Warn("feed connection failed", "url", c.url, "err", err, "retry", retry)
			delay := backoffDelay(retry)
			retry++

			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
				continue
			}
		}

		retry = 0
		c.process(ctx)
		slog.Info("feed disconnected", "url", c.url)
	}
}

func (c *Client) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	if c.PingInterval > 0 {
		go c.pingLoop(ctx)
	}

	slog.Info("feed connected", "url", c.url)
	return nil
}

func (c *Client) process(ctx context.Context) {
	for {
		c.mu.RLock()
		conn := c.conn
		c.mu.RUnlock()
		if conn == nil {
			return
		}

		conn.SetReadDeadline(time.Now().Add(c.ReadTimeout))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				slog.Warn("feed read error", "url", c.url, "err", err)
			}
			c.close()
			return
		}

		c.handleMessage(msg)
	}
}

// handleMessage decodes one inbound {"pair","price"} update and fans
// it out. Malformed messages are logged and skipped.
func (c *Client) handleMessage(msg []byte) {
	var tick models.PriceTick
	if err := json.Unmarshal(msg, &tick); err != nil {
		slog.Warn("feed message unreadable", "err", err)
		return
	}
	if tick.Pair == "" {
		slog.Warn("feed message missing pair")
		return
	}
	c.bus.Publish(tick)
}

func (c *Client) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(c.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.RLock()
			conn := c.conn
			c.mu.RUnlock()
			if conn == nil {
				return
			}
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				slog.Warn("feed ping error", "url", c.url, "err", err)
				c.close()
				return
			}
		}
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}
