// Package api содержит HTTP API сервер.
//
// Структура:
//   - handler.go        — Handler с DI (pool, projector, publisher, logger)
//   - routes.go         — регистрация маршрутов
//   - middleware.go     — middleware (logging, recovery)
//   - response.go       — унифицированные JSON-ответы и обработка ошибок
//   - dto.go            — Data Transfer Objects (request/response)
//   - summary_handler.go — обработчики для /summary и /proxies (список)
//   - proxy_handler.go  — обработчики для /proxies/{id} и команд над ним
//
// API предоставляет REST endpoints для наблюдения за состоянием проси
// и управления ими (trigger/kill/hold/release).
package api
