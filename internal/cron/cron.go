// Package cron runs the mock backend's housekeeping jobs.
package cron

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

const (
	// RoomHistoryKeep is how many messages each chat room retains.
	RoomHistoryKeep = 500
	// NotificationMaxAge is how long an untouched notification survives.
	NotificationMaxAge = 30 * 24 * time.Hour
)

type HistoryPruner interface {
	PruneHistory(ctx context.Context, keep int) (int64, error)
}

type NotificationCleaner interface {
	RemoveOld(ctx context.Context, maxAge time.Duration) (int64, error)
}

type Jobs struct {
	chat          HistoryPruner
	notifications NotificationCleaner
	log           *zap.Logger
}

func NewJobs(chat HistoryPruner, notifications NotificationCleaner, log *zap.Logger) *Jobs {
	return &Jobs{chat: chat, notifications: notifications, log: log}
}

// StartCronJobs schedules the daily cleanup and returns the running scheduler.
func (j *Jobs) StartCronJobs() (*gocron.Scheduler, error) {
	s := gocron.NewScheduler(time.Local)
	if _, err := s.Every(1).Day().Do(j.MainCleanup); err != nil {
		return nil, err
	}
	s.StartAsync()
	return s, nil
}

func (j *Jobs) MainCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	j.cleanupNotifications(ctx)
	j.cleanupChatHistory(ctx)
}

func (j *Jobs) cleanupNotifications(ctx context.Context) {
	deleted, err := j.notifications.RemoveOld(ctx, NotificationMaxAge)
	if err != nil {
		j.log.Error("failed to remove old notifications", zap.Error(err))
		return
	}
	j.log.Info("removed old notifications", zap.Int64("count", deleted))
}

func (j *Jobs) cleanupChatHistory(ctx context.Context) {
	deleted, err := j.chat.PruneHistory(ctx, RoomHistoryKeep)
	if err != nil {
		j.log.Error("failed to prune chat history", zap.Error(err))
		return
	}
	j.log.Info("pruned chat history", zap.Int64("count", deleted))
}
