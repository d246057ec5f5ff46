package appcontext

import (
	"time"

	"go.uber.org/zap"

	"github.com/kerem-kaynak/kolektor/internal/services"
	"github.com/kerem-kaynak/kolektor/internal/wizard"
)

type Context struct {
	Logger *zap.Logger

	Engine   *services.EngineClient
	Sessions *wizard.Manager

	Port            string
	MaxUploadBytes  int64
	SchemaPeekBytes int
	WatchInterval   time.Duration
}
