package queue

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeName = "ex.leads"
	DLXName      = "ex.leads.dlx"

	NotificationQueue = "q.lead.notifications"
	NotificationDLQ   = "q.lead.notifications.dlq"

	CRMQueue = "q.lead.crm"
	CRMDLQ   = "q.lead.crm.dlq"

	LeadCapturedKey = "k.lead.captured"
	RedeliveryKey   = "k.notification.redeliver"
	CRMFailedKey    = "k.lead.crm.failed"
)

type RabbitMQ struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewRabbitMQ(url string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := setupTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &RabbitMQ{Conn: conn, Ch: ch}, nil
}

func (r *RabbitMQ) Close() error {
	if err := r.Ch.Close(); err != nil {
		r.Conn.Close()
		return err
	}
	return r.Conn.Close()
}

// channel is the subset of *amqp.Channel used to declare the topology.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
}

// binding routes key on exchange into a durable queue. Failures dead-letter
// to deadQueue through DLXName under deadKey.
type binding struct {
	queue     string
	key       string
	deadQueue string
	deadKey   string
}

var bindings = []binding{
	{queue: NotificationQueue, key: RedeliveryKey, deadQueue: NotificationDLQ, deadKey: RedeliveryKey},
	{queue: CRMQueue, key: LeadCapturedKey, deadQueue: CRMDLQ, deadKey: CRMFailedKey},
}

func setupTopology(ch channel) error {
	if err := ch.ExchangeDeclare(DLXName, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare %s: %w", DLXName, err)
	}

	if err := ch.ExchangeDeclare(ExchangeName, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare %s: %w", ExchangeName, err)
	}

	for _, b := range bindings {
		if err := declare(ch, b); err != nil {
			return err
		}
	}

	return nil
}

func declare(ch channel, b binding) error {
	if _, err := ch.QueueDeclare(b.deadQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare %s: %w", b.deadQueue, err)
	}

	if err := ch.QueueBind(b.deadQueue, b.deadKey, DLXName, false, nil); err != nil {
		return fmt.Errorf("bind %s: %w", b.deadQueue, err)
	}

	// Rejected messages go to the DLQ instead of looping.
	args := amqp.Table{
		"x-dead-letter-exchange":    DLXName,
		"x-dead-letter-routing-key": b.deadKey,
	}

	if _, err := ch.QueueDeclare(b.queue, true, false, false, false, args); err != nil {
		return fmt.Errorf("declare %s: %w", b.queue, err)
	}

	if err := ch.QueueBind(b.queue, b.key, ExchangeName, false, nil); err != nil {
		return fmt.Errorf("bind %s: %w", b.queue, err)
	}

	return nil
}
