package logger

import (
	"time"

	"go.uber.org/zap"
)

// ───── HTTP fields ─────

func RequestID(v string) zap.Field { return zap.String("request_id", v) }
func Method(v string) zap.Field    { return zap.String("method", v) }
func Path(v string) zap.Field      { return zap.String("path", v) }
func Status(v int) zap.Field       { return zap.Int("status", v) }
func Bytes(v int) zap.Field        { return zap.Int("bytes", v) }
func ClientIP(v string) zap.Field  { return zap.String("client_ip", v) }

func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }
func DurationMs(v int64) zap.Field       { return zap.Int64("duration_ms", v) }

// ───── Domain fields ─────

// QRID is the raw QR identifier. Never log the opaque token itself.
func QRID(v string) zap.Field { return zap.String("qr_id", v) }

func UserID(v string) zap.Field    { return zap.String("user_id", v) }
func TokenDate(v string) zap.Field { return zap.String("token_date", v) }
func Action(v string) zap.Field    { return zap.String("action", v) }

// ───── System fields ─────

// Op names the current operation, e.g. "ScanService.Scan".
func Op(v string) zap.Field { return zap.String("op", v) }

// Layer names the layer: controller, service, store.
func Layer(v string) zap.Field { return zap.String("layer", v) }

func Component(v string) zap.Field { return zap.String("component", v) }
func Err(err error) zap.Field      { return zap.Error(err) }

// ───── Generic fields ─────

func Count(v int) zap.Field            { return zap.Int("count", v) }
func Key(v string) zap.Field           { return zap.String("key", v) }
func String(key, v string) zap.Field   { return zap.String(key, v) }
func Int(key string, v int) zap.Field  { return zap.Int(key, v) }
func Bool(key string, v bool) zap.Field { return zap.Bool(key, v) }
func Any(key string, v any) zap.Field  { return zap.Any(key, v) }
