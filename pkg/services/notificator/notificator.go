package notificator

import (
	"context"

	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	"go.uber.org/zap"
)

// TopicAttribute is the object attribute that overrides the default
// notification topic.
const TopicAttribute = "__KESTREL__NOTIFY_TOPIC"

// NotificationWriter notifies all the subscribers
// about new object notifications.
type NotificationWriter interface {
	// Notify must send string representation of the object
	// address into the specified topic.
	Notify(topic string, address oid.Address) error
}

type notification struct {
	topic string
	addr  oid.Address
}

// Prm groups Notificator constructor's parameters.
type Prm struct {
	writer       NotificationWriter
	defaultTopic string
	queueSize    int
	logger       *zap.Logger
}

// SetWriter sets notification writer. Must not be nil.
func (prm *Prm) SetWriter(v NotificationWriter) *Prm {
	prm.writer = v
	return prm
}

// SetDefaultTopic sets the topic of objects without TopicAttribute. Objects
// are not announced if both are empty.
func (prm *Prm) SetDefaultTopic(v string) *Prm {
	prm.defaultTopic = v
	return prm
}

// SetQueueSize sets the number of notifications waiting to be written.
func (prm *Prm) SetQueueSize(v int) *Prm {
	prm.queueSize = v
	return prm
}

// SetLogger sets a logger.
func (prm *Prm) SetLogger(v *zap.Logger) *Prm {
	prm.logger = v
	return prm
}

// Notificator is a notification producer that handles
// objects stored by the node and passes their addresses
// to the notification writer in background.
//
// For correct operation, Notificator must be created
// using the constructor (New) and passed parameters
// must pass all the required checks.
type Notificator struct {
	w            NotificationWriter
	defaultTopic string
	queue        chan notification
	l            *zap.Logger
}

// New creates, initializes and returns the Notificator instance.
//
// Panics if any field of the passed Prm structure is not set/set
// to nil.
func New(prm *Prm) *Notificator {
	switch {
	case prm.writer == nil:
		panic("Notificator constructor: NotificationWriter is nil")
	case prm.logger == nil:
		panic("Notificator constructor: Logger is nil")
	}

	size := prm.queueSize
	if size <= 0 {
		size = 1024
	}

	return &Notificator{
		w:            prm.writer,
		defaultTopic: prm.defaultTopic,
		queue:        make(chan notification, size),
		l:            prm.logger,
	}
}

// Notify queues the notification about the stored object. Never blocks:
// notification is dropped if the queue is full.
func (n *Notificator) Notify(obj *object.Object) {
	topic := obj.Attribute(TopicAttribute)
	if topic == "" {
		topic = n.defaultTopic
	}

	if topic == "" {
		return
	}

	select {
	case n.queue <- notification{topic: topic, addr: obj.Address()}:
	default:
		n.l.Warn("notification queue is full, skip",
			zap.Stringer("address", obj.Address()),
		)
	}
}

// Run writes queued notifications until ctx is done.
func (n *Notificator) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case nt := <-n.queue:
			if err := n.w.Notify(nt.topic, nt.addr); err != nil {
				n.l.Warn("could not write object notification",
					zap.Stringer("address", nt.addr),
					zap.String("topic", nt.topic),
					zap.Error(err),
				)
			}
		}
	}
}
