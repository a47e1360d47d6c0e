package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"qrdine-backend/internal/model"
)

// Sender defines the interface for sending a web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is the real implementation of Sender using the webpush
// library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool fans out ready-order notifications. Jobs are table ids; each
// job notifies every dashboard subscribed to that table.
type WorkerPool struct {
	size    int
	jobs    chan uint
	db      *gorm.DB
	webpush *webpush.Options
	sender  Sender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan uint, size),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("notification worker %d started", id)
	for {
		select {
		case tableID := <-wp.jobs:
			wp.notifyTable(ctx, tableID)
		case <-ctx.Done():
			log.Printf("notification worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues a ready notification for a table.
func (wp *WorkerPool) Dispatch(tableID uint) {
	wp.jobs <- tableID
}

// notifyTable fetches the table's subscriptions and pushes to each.
func (wp *WorkerPool) notifyTable(ctx context.Context, tableID uint) {
	var subscriptions []model.PushSubscription
	err := wp.db.WithContext(ctx).
		Joins("JOIN subscription_table_mapping stm ON stm.push_subscription_endpoint = push_subscriptions.endpoint").
		Where("stm.table_id = ?", tableID).
		Find(&subscriptions).Error
	if err != nil {
		log.Printf("error fetching subscriptions for table %d: %v", tableID, err)
		return
	}

	if len(subscriptions) == 0 {
		return
	}

	var table model.Table
	tableLabel := fmt.Sprintf("%d", tableID)
	if err := wp.db.WithContext(ctx).
		Select("label").
		First(&table, tableID).Error; err != nil {
		log.Printf("error fetching table %d: %v", tableID, err)
	} else if table.Label != "" {
		tableLabel = table.Label
	}

	message := fmt.Sprintf("Table %s: first dish is ready", tableLabel)
	for _, sub := range subscriptions {
		wp.send(ctx, sub, []byte(message))
	}
}

func (wp *WorkerPool) send(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// 410 means the browser dropped the subscription.
	if resp.StatusCode == http.StatusGone {
		log.Printf("subscription %s expired, deleting", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			log.Printf("failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
