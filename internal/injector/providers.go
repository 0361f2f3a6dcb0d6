package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/skyrun/internal/core/config"
	"github.com/zeusync/skyrun/internal/core/models"
	"github.com/zeusync/skyrun/internal/core/observability/log"
	"github.com/zeusync/skyrun/internal/core/session"
)

var ProviderSet = wire.NewSet(ProvideLogger, ProvideSession)

// ProvideLogger builds the process logger from the logging section.
func ProvideLogger(cfg *config.Config) (log.Log, func(), error) {
	l, err := log.New(log.Options{
		Level:    log.ParseLevel(cfg.Logging.Level),
		Encoding: cfg.Logging.Encoding,
	})
	if err != nil {
		return nil, nil, err
	}
	return l, func() { _ = l.Sync() }, nil
}

// ProvideSession builds a session; the cleanup stops it.
func ProvideSession(cfg *config.Config, observer models.Observer, content session.Content, logger log.Log) (*session.Session, func(), error) {
	s, err := session.New(cfg, observer, content, logger)
	if err != nil {
		return nil, nil, err
	}
	return s, s.Stop, nil
}
