// Package logger provides a singleton Zap logger with context-based scoping.
//
// Initialization (once, in main):
//
//	logger.Init(logger.Config{Env: cfg.Log.Env, Level: cfg.Log.Level})
//	defer logger.Sync()
//
// In controllers/services, prefer the request-scoped logger:
//
//	log := logger.From(ctx)
//	log.Info("code claimed", logger.QRID(id), logger.UserID(userID))
//
// Without a context the singleton is the fallback:
//
//	logger.L().Info("server started")
//
// "dev" logs colored console output, "prod" logs JSON.
package logger
