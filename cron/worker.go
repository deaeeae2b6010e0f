package cron

import (
	"context"
	"time"

	"timeswap/config"
	"timeswap/services/notification"
	"timeswap/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// QueueRedisOpt is the asynq connection shared by the publisher and worker.
func QueueRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// NewEventMux routes every booking task type to the notifier.
func NewEventMux(notifier notification.Notifier, logger *zap.Logger) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	handler := handleEventTask(notifier, logger)
	for _, t := range tasks.EventTypes {
		mux.HandleFunc(t, handler)
	}
	return mux
}

// InitEventWorker runs the asynq worker in background and returns the server
// so the caller can shut it down.
func InitEventWorker(notifier notification.Notifier, logger *zap.Logger) *asynq.Server {
	srv := asynq.NewServer(
		QueueRedisOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)
	mux := NewEventMux(notifier, logger)

	go func() {
		logger.Info("[EventWorker] starting async worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Run(mux)
			if err == nil {
				return
			}
			logger.Error("[EventWorker] worker failed to start",
				zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
			if attempts == maxAttempts {
				logger.Error("[EventWorker] giving up; booking events will queue until restart")
				return
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
	return srv
}

func handleEventTask(notifier notification.Notifier, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		event, err := tasks.ParseEvent(task)
		if err != nil {
			logger.Error("[EventHandler] invalid payload", zap.String("type", task.Type()), zap.Error(err))
			// Retrying cannot fix a bad payload.
			return asynq.SkipRetry
		}

		logger.Debug("[EventHandler] handling booking event",
			zap.String("type", string(event.Type)), zap.String("bookingId", event.BookingID))

		if err := notification.Dispatch(ctx, notifier, event); err != nil {
			logger.Warn("[EventHandler] notification failed", zap.String("bookingId", event.BookingID), zap.Error(err))
			return err
		}
		return nil
	}
}
