// Package cli реализует инструмент командной строки планировщика.
//
// # Обзор
//
// CLI — клиентская утилита для взаимодействия с API планировщика.
// Работает через HTTP, не импортирует внутренние пакеты системы.
// CLI используется для наблюдения за состоянием прогона и проси,
// а также для подачи команд над отдельными проси.
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент для API планировщика. Инкапсулирует все HTTP-запросы,
// парсинг ответов (dataResponse, listResponse, errorResponse)
// и обработку ошибок.
//
//	client := cli.NewClient("http://localhost:8080")
//	proxies, err := client.ListProxies()
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON (json.MarshalIndent) — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
// Это позволяет использовать pipe: cyclesched proxy list --json | jq .
//
// ## Commands
//
// Cobra-команды организованы по ресурсам:
//   - summary: снимок состояния прогона целиком
//   - proxy: list, show, trigger, kill, hold, release
//
// Каждая группа создаётся через фабричную функцию (NewProxyCmd и т.д.),
// принимающую clientFn и outputFn — замыкания для ленивого создания
// Client и Output после парсинга PersistentFlags.
package cli
