package logger

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/event"
	"go.uber.org/zap"
)

// NewMongoMonitor returns a command monitor that logs MongoDB commands the
// same way GormLogger logs SQL: failures at error, slow commands at warn and
// everything else at debug.
func NewMongoMonitor(zapLogger *zap.Logger, slowQuerySeconds float64) *event.CommandMonitor {
	slowThreshold := time.Duration(slowQuerySeconds * float64(time.Second))

	return &event.CommandMonitor{
		Succeeded: func(ctx context.Context, evt *event.CommandSucceededEvent) {
			fields := []zap.Field{
				zap.String("command", evt.CommandName),
				zap.Int64("mongo_request_id", evt.RequestID),
				zap.Duration("elapsed", evt.Duration),
			}
			logger := WithContext(ctx, zapLogger)
			if slowThreshold != 0 && evt.Duration > slowThreshold {
				logger.Warn("mongo slow command", append(fields, zap.Duration("threshold", slowThreshold))...)
				return
			}
			logger.Debug("mongo command", fields...)
		},
		Failed: func(ctx context.Context, evt *event.CommandFailedEvent) {
			WithContext(ctx, zapLogger).Error("mongo command error",
				zap.String("command", evt.CommandName),
				zap.Int64("mongo_request_id", evt.RequestID),
				zap.Duration("elapsed", evt.Duration),
				zap.String("failure", evt.Failure),
			)
		},
	}
}
