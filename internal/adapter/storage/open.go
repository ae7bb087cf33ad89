package storage

import (
	"context"

	"go.uber.org/zap"

	"github.com/rl1809/jewelry-store/internal/port"
)

type Options struct {
	MongoURI      string
	MongoDatabase string
	MySQLDSN      string
	DataDir       string
}

// Open selects the backing store once. A configured database that cannot be
// reached is replaced by the JSON-file store under DataDir; Open itself never
// fails. ctx bounds the connection attempt.
func Open(ctx context.Context, opts Options, logger *zap.Logger) port.EntityStore {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch {
	case opts.MongoURI != "":
		adapter, err := ConnectMongo(ctx, opts.MongoURI, opts.MongoDatabase)
		if err != nil {
			logger.Warn("mongodb unavailable, using JSON file store",
				zap.String("data_dir", opts.DataDir), zap.Error(err))
			break
		}
		if err := adapter.EnsureIndexes(ctx); err != nil {
			logger.Warn("failed to create mongodb indexes", zap.Error(err))
		}
		logger.Info("connected to mongodb", zap.String("database", opts.MongoDatabase))
		return adapter

	case opts.MySQLDSN != "":
		adapter, err := ConnectMySQL(ctx, opts.MySQLDSN)
		if err != nil {
			logger.Warn("mysql unavailable, using JSON file store",
				zap.String("data_dir", opts.DataDir), zap.Error(err))
			break
		}
		if err := adapter.EnsureSchema(ctx); err != nil {
			adapter.Close(ctx)
			logger.Warn("mysql schema setup failed, using JSON file store", zap.Error(err))
			break
		}
		logger.Info("connected to mysql")
		return adapter

	default:
		logger.Info("no database configured, using JSON file store", zap.String("data_dir", opts.DataDir))
	}

	return NewFileAdapter(opts.DataDir)
}
