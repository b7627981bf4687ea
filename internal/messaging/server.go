package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

// NatsServer runs an embedded NATS server along with an internal client
// connection used to publish and subscribe.
type NatsServer struct {
	ns *server.Server

	mu    sync.RWMutex
	conn  *nats.Conn
	ready chan struct{}

	startupTimeout time.Duration
	host           string
	port           int
}

func NewNatsServer(opts ...NatsServerOpt) (*NatsServer, error) {
	s := &NatsServer{
		ready:          make(chan struct{}),
		startupTimeout: 10 * time.Second,
		host:           "127.0.0.1",
		port:           server.DEFAULT_PORT,
	}

	for _, opt := range opts {
		opt(s)
	}

	ns, err := server.NewServer(&server.Options{
		Host:   s.host,
		Port:   s.port,
		NoSigs: true, // Let the application handle signals
		NoLog:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}
	s.ns = ns

	return s, nil
}

func (n *NatsServer) Start(ctx context.Context) error {
	n.ns.Start()

	if !n.ns.ReadyForConnections(n.startupTimeout) {
		n.ns.Shutdown()
		return fmt.Errorf("nats server not ready for connections")
	}

	conn, err := nats.Connect(n.ns.ClientURL(), nats.Name("arena"))
	if err != nil {
		n.ns.Shutdown()
		return fmt.Errorf("creating nats client connection: %w", err)
	}

	n.mu.Lock()
	n.conn = conn
	n.mu.Unlock()
	close(n.ready)

	slog.InfoContext(ctx, "nats server listening", "addr", n.ns.Addr())

	<-ctx.Done()

	n.mu.Lock()
	n.conn = nil
	n.mu.Unlock()

	// Flush whatever was published during shutdown before closing.
	if err := conn.Drain(); err != nil {
		conn.Close()
	}
	n.ns.Shutdown()
	n.ns.WaitForShutdown()

	return nil
}

// Ready is closed once the server accepts connections.
func (n *NatsServer) Ready() <-chan struct{} {
	return n.ready
}

// ClientURL returns the URL clients should connect to.
func (n *NatsServer) ClientURL() string {
	return n.ns.ClientURL()
}

// Subscribe creates a subscription on the given subject.
// The handler is called for each message received.
// Returns an unsubscribe function to remove the subscription.
func (n *NatsServer) Subscribe(subject string, handler func(data []byte)) (func(), error) {
	conn, err := n.client()
	if err != nil {
		return nil, err
	}
	sub, err := conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribing to %q: %w", subject, err)
	}
	return func() { sub.Unsubscribe() }, nil
}

// Publish sends a message to the given subject
func (n *NatsServer) Publish(subject string, data []byte) error {
	conn, err := n.client()
	if err != nil {
		return err
	}
	return conn.Publish(subject, data)
}

func (n *NatsServer) client() (*nats.Conn, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.conn == nil {
		return nil, fmt.Errorf("nats server not started")
	}
	return n.conn, nil
}
