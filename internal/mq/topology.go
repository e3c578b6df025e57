package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// Exchanges — имена обменников.
const (
	ExchangeJobs Exchange = "cyclesched.jobs"
	ExchangeDLQ  Exchange = "cyclesched.dlq"
)

// Queues — имена очередей.
const (
	QueueJobsSubmit    Queue = "jobs.submit"
	QueueJobsPoll      Queue = "jobs.poll"
	QueueJobsKill      Queue = "jobs.kill"
	QueueJobsCallbacks Queue = "jobs.callbacks"
	QueueDLQJobs       Queue = "dlq.jobs"
)

// Routing keys.
const (
	RoutingKeySubmit    RoutingKey = "submit"
	RoutingKeyPoll      RoutingKey = "poll"
	RoutingKeyKill      RoutingKey = "kill"
	RoutingKeyCallbacks RoutingKey = "callbacks"
	RoutingKeyDLQJobs   RoutingKey = "jobs"
)

func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		// 1. Создаём exchanges
		if err := declareExchanges(ch); err != nil {
			return err
		}

		// 2. Создаём queues
		if err := declareQueues(ch); err != nil {
			return err
		}

		// 3. Привязываем queues к exchanges
		if err := bindQueues(ch); err != nil {
			return err
		}

		return nil
	})
}

// declareExchanges создаёт обменники.
func declareExchanges(ch *amqp.Channel) error {
	exchanges := []struct {
		name Exchange
		kind string
	}{
		{ExchangeJobs, "direct"},
		{ExchangeDLQ, "direct"},
	}

	for _, ex := range exchanges {
		err := ch.ExchangeDeclare(
			string(ex.name), // name
			ex.kind,         // type
			true,            // durable
			false,           // auto-deleted
			false,           // internal
			false,           // no-wait
			nil,             // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ex.name, err)
		}
	}

	return nil
}

// declareQueues создаёт очереди.
func declareQueues(ch *amqp.Channel) error {
	// Аргументы для очередей с DLQ
	dlqArgs := amqp.Table{
		"x-dead-letter-exchange":    string(ExchangeDLQ),
		"x-dead-letter-routing-key": string(RoutingKeyDLQJobs),
	}

	queues := []struct {
		name Queue
		args amqp.Table
	}{
		// jobs.submit — с DLQ (отправка может уходить в DLQ после retry)
		{QueueJobsSubmit, dlqArgs},

		// jobs.poll — без DLQ (опрос идемпотентен, просто повторится)
		{QueueJobsPoll, nil},

		// jobs.kill — без DLQ (однократная команда)
		{QueueJobsKill, nil},

		// jobs.callbacks — без DLQ (коллбэки из process pool)
		{QueueJobsCallbacks, nil},

		// dlq.jobs — сама DLQ очередь
		{QueueDLQJobs, nil},
	}

	for _, q := range queues {
		_, err := ch.QueueDeclare(
			string(q.name), // name
			true,           // durable
			false,          // delete when unused
			false,          // exclusive
			false,          // no-wait
			q.args,         // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", q.name, err)
		}
	}

	return nil
}

// bindQueues привязывает очереди к обменникам.
func bindQueues(ch *amqp.Channel) error {
	bindings := []struct {
		queue      Queue
		routingKey RoutingKey
		exchange   Exchange
	}{
		{QueueJobsSubmit, RoutingKeySubmit, ExchangeJobs},
		{QueueJobsPoll, RoutingKeyPoll, ExchangeJobs},
		{QueueJobsKill, RoutingKeyKill, ExchangeJobs},
		{QueueJobsCallbacks, RoutingKeyCallbacks, ExchangeJobs},
		{QueueDLQJobs, RoutingKeyDLQJobs, ExchangeDLQ},
	}

	for _, b := range bindings {
		err := ch.QueueBind(
			string(b.queue),      // queue name
			string(b.routingKey), // routing key
			string(b.exchange),   // exchange
			false,                // no-wait
			nil,                  // arguments
		)
		if err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", b.queue, b.exchange, err)
		}
	}

	return nil
}

// TopologyInfo возвращает описание топологии для логирования.
func TopologyInfo() string {
	return `
  cyclesched RabbitMQ Topology:

    cyclesched.jobs (direct)
    |-- jobs.submit [routing: submit]
    |       Consumer: external process pool
    |       DLQ: dlq.jobs
    |-- jobs.poll [routing: poll]
    |       Consumer: external process pool
    |-- jobs.kill [routing: kill]
    |       Consumer: external process pool
    '-- jobs.callbacks [routing: callbacks]
            Consumer: scheduler pool (process-pool results)

    cyclesched.dlq (direct)
    '-- dlq.jobs [routing: jobs]
            Manual processing
  `
}
