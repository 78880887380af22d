package nats

import (
	"context"
	"errors"
	"fmt"
	"sync"

	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Writer is a NATS object notification writer.
// It handles NATS JetStream connections and allows
// sending string representation of the address to
// the NATS server.
//
// For correct operation must be created via New function.
type Writer struct {
	js nats.JetStreamContext
	nc *nats.Conn

	m              sync.RWMutex
	createdStreams map[string]struct{}
	opts
}

type opts struct {
	log   *zap.Logger
	nOpts []nats.Option
}

// Option is a Writer's constructor option.
type Option func(*opts)

var errConnIsClosed = errors.New("connection to the server is closed")

// Notify sends object address's string representation to the provided topic.
// Encoded address is also a message ID, so JetStream deduplicates repeated
// notifications about the same object.
//
// Returns error only if:
// 1. underlying connection was closed and has not been established again;
// 2. NATS server could not respond that it has saved the message.
func (n *Writer) Notify(topic string, address oid.Address) error {
	if n.nc == nil || !n.nc.IsConnected() {
		return errConnIsClosed
	}

	if err := n.ensureStream(topic); err != nil {
		return err
	}

	s := address.EncodeToString()

	_, err := n.js.Publish(topic, []byte(s), nats.MsgId(s))
	if err != nil {
		return fmt.Errorf("could not publish to %s: %w", topic, err)
	}

	return nil
}

func (n *Writer) ensureStream(topic string) error {
	n.m.RLock()
	_, created := n.createdStreams[topic]
	n.m.RUnlock()

	if created {
		return nil
	}

	n.m.Lock()
	defer n.m.Unlock()

	if _, created = n.createdStreams[topic]; created {
		return nil
	}

	_, err := n.js.AddStream(&nats.StreamConfig{
		Name: topic,
	})
	if err != nil {
		return fmt.Errorf("could not add stream: %w", err)
	}

	n.createdStreams[topic] = struct{}{}

	return nil
}

// New creates new Writer.
func New(oo ...Option) *Writer {
	w := &Writer{
		createdStreams: make(map[string]struct{}),
		opts: opts{
			log:   zap.L(),
			nOpts: make([]nats.Option, 0, len(oo)+3),
		},
	}

	for _, o := range oo {
		o(&w.opts)
	}

	w.opts.nOpts = append(w.opts.nOpts,
		nats.NoCallbacksAfterClientClose(), // do not call callbacks when it was planned writer stop
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			w.log.Error("nats: connection was lost", zap.Error(err))
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			w.log.Warn("nats: reconnected to the server")
		}),
	)

	return w
}

// Connect tries to connect to a specified NATS endpoint.
//
// Connection is closed when passed context is done.
func (n *Writer) Connect(ctx context.Context, endpoint string) error {
	nc, err := nats.Connect(endpoint, n.opts.nOpts...)
	if err != nil {
		return fmt.Errorf("could not connect to server: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return fmt.Errorf("could not init JetStream context: %w", err)
	}

	n.nc, n.js = nc, js

	go func() {
		<-ctx.Done()
		n.opts.log.Info("nats: closing connection as the context is done")

		nc.Close()
	}()

	return nil
}
