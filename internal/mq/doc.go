// Package mq предоставляет интеграцию с RabbitMQ.
//
// Включает:
//   - connection.go — управление подключением с auto-reconnect
//   - publisher.go  — публикация сообщений в exchange, включая типы
//     payload (JobSubmitPayload, JobPollPayload, JobKillPayload,
//     ProxyCallbackPayload)
//   - consumer.go   — потребление сообщений из очередей
//   - topology.go   — декларация exchanges и queues
package mq
