package api

import (
	"log/slog"

	"github.com/shaiso/cyclesched/internal/mq"
	"github.com/shaiso/cyclesched/internal/pool"
	"github.com/shaiso/cyclesched/internal/summary"
)

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	pool      pool.Pool
	projector *summary.Projector
	publisher *mq.Publisher
	logger    *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	Pool      pool.Pool
	Projector *summary.Projector
	Publisher *mq.Publisher
	Logger    *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		pool:      cfg.Pool,
		projector: cfg.Projector,
		publisher: cfg.Publisher,
		logger:    cfg.Logger,
	}
}
