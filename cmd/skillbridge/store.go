package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/AnhDQHE181109/SEP490-SkillBridge-BE/api"
	"github.com/AnhDQHE181109/SEP490-SkillBridge-BE/config"
	"github.com/AnhDQHE181109/SEP490-SkillBridge-BE/contract"
	"github.com/AnhDQHE181109/SEP490-SkillBridge-BE/store/memory"
	"github.com/AnhDQHE181109/SEP490-SkillBridge-BE/store/postgres"
	"github.com/AnhDQHE181109/SEP490-SkillBridge-BE/store/sqlite"
)

// backend is a store the commands can open, query and close.
type backend interface {
	api.Store
	Close() error
}

// memoryBackend lives for the process only.
type memoryBackend struct {
	*memory.Memory
}

func (memoryBackend) Close() error { return nil }

type migrator interface {
	Migrate(ctx context.Context) error
}

// initStore opens the configured store. Postgres schemas are applied here;
// SQLite migrates on open.
func initStore(ctx context.Context, sc config.StoreConfig) (backend, error) {
	switch sc.Driver {
	case config.DriverSQLite:
		st, err := sqlite.New(sc.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return st, nil
	case config.DriverPostgres:
		st, err := postgres.New(ctx, sc.DatabaseURL, &postgres.PoolConfig{
			MaxConns: sc.MaxConns,
			MinConns: sc.MinConns,
		})
		if err != nil {
			return nil, err
		}
		return st, nil
	case config.DriverMemory:
		return memoryBackend{memory.NewMemory()}, nil
	default:
		return nil, eris.Errorf("unsupported store driver: %s", sc.Driver)
	}
}

// openStore opens the configured store and brings its schema up to date.
func openStore(ctx context.Context) (backend, error) {
	st, err := initStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if m, ok := st.(migrator); ok {
		if err := m.Migrate(ctx); err != nil {
			_ = st.Close()
			return nil, err
		}
	}
	zap.L().Debug("store opened", zap.String("driver", cfg.Store.Driver))
	return st, nil
}

func newEngine(st contract.Reader) *contract.Engine {
	return contract.NewEngine(st,
		contract.WithLogger(zap.L().Named("engine")),
		contract.WithHorizonYears(cfg.Engine.OpenEndedHorizonYears),
		contract.WithTimelineConcurrency(cfg.Engine.TimelineConcurrency),
	)
}
