package notification

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"qrdine-backend/internal/model"
)

// mockSender is a mock implementation of the Sender interface.
type mockSender struct {
	SendFunc func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return m.SendFunc(payload, sub, options)
}

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestWorkerPool_Dispatch(t *testing.T) {
	db, _ := newTestDB(t)
	wp := NewWorkerPool(1, db, &webpush.Options{})

	wp.Dispatch(123)

	select {
	case job := <-wp.jobs:
		assert.Equal(t, uint(123), job)
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for job to be dispatched")
	}
}

func TestWorkerPool_WorkerLogic(t *testing.T) {
	gormDB, mock := newTestDB(t)
	wp := NewWorkerPool(1, gormDB, &webpush.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)

	t.Run("sends notification for one subscription", func(t *testing.T) {
		var wg sync.WaitGroup
		wg.Add(1)

		tableID := uint(7)
		subscription := model.PushSubscription{
			Endpoint: "https://example.com/push",
			TenantID: 1,
			P256DH:   "test_p256dh",
			Auth:     "test_auth",
		}

		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				assert.Equal(t, "https://example.com/push", sub.Endpoint)
				assert.Equal(t, "Table T1: first dish is ready", string(payload))
				wg.Done()
				return &http.Response{
					StatusCode: http.StatusCreated,
					Body:       io.NopCloser(bytes.NewBufferString("")),
				}, nil
			},
		}

		mock.ExpectQuery(`SELECT .* FROM "push_subscriptions".*JOIN .*subscription_table_mapping.*WHERE .*stm\.table_id = \$1`).
			WithArgs(tableID).
			WillReturnRows(sqlmock.NewRows([]string{"endpoint", "tenant_id", "p256dh", "auth", "created_at"}).
				AddRow(subscription.Endpoint, subscription.TenantID, subscription.P256DH, subscription.Auth, time.Now()))

		mock.ExpectQuery(`SELECT "label" FROM "tables" WHERE "tables"."id" = \$1 ORDER BY "tables"."id" LIMIT \$[0-9]+`).
			WithArgs(tableID, 1).
			WillReturnRows(sqlmock.NewRows([]string{"label"}).AddRow("T1"))

		wp.Dispatch(tableID)
		wg.Wait()
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("deletes expired subscription", func(t *testing.T) {
		tableID := uint(8)
		subscription := model.PushSubscription{
			Endpoint: "https://example.com/expired",
			TenantID: 1,
			P256DH:   "test_p256dh_expired",
			Auth:     "test_auth_expired",
		}

		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				return &http.Response{
					StatusCode: http.StatusGone,
					Body:       io.NopCloser(bytes.NewBufferString("")),
				}, nil
			},
		}

		mock.ExpectQuery(`SELECT .* FROM "push_subscriptions".*JOIN .*subscription_table_mapping.*WHERE .*stm\.table_id = \$1`).
			WithArgs(tableID).
			WillReturnRows(sqlmock.NewRows([]string{"endpoint", "tenant_id", "p256dh", "auth", "created_at"}).
				AddRow(subscription.Endpoint, subscription.TenantID, subscription.P256DH, subscription.Auth, time.Now()))

		mock.ExpectQuery(`SELECT "label" FROM "tables" WHERE "tables"."id" = \$1 ORDER BY "tables"."id" LIMIT \$[0-9]+`).
			WithArgs(tableID, 1).
			WillReturnRows(sqlmock.NewRows([]string{"label"}).AddRow("T2"))

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "push_subscriptions" WHERE "push_subscriptions"."endpoint" = \$1`).
			WithArgs(subscription.Endpoint).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		wp.Dispatch(tableID)

		// A short sleep to allow the worker to process the job.
		time.Sleep(100 * time.Millisecond)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("falls back to table id when label lookup fails", func(t *testing.T) {
		var wg sync.WaitGroup
		wg.Add(1)

		tableID := uint(9)
		subscription := model.PushSubscription{
			Endpoint: "https://example.com/fallback",
			TenantID: 1,
			P256DH:   "test_p256dh_fallback",
			Auth:     "test_auth_fallback",
		}

		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				assert.Equal(t, "https://example.com/fallback", sub.Endpoint)
				assert.Equal(t, "Table 9: first dish is ready", string(payload))
				wg.Done()
				return &http.Response{
					StatusCode: http.StatusCreated,
					Body:       io.NopCloser(bytes.NewBufferString("")),
				}, nil
			},
		}

		mock.ExpectQuery(`SELECT .* FROM "push_subscriptions".*JOIN .*subscription_table_mapping.*WHERE .*stm\.table_id = \$1`).
			WithArgs(tableID).
			WillReturnRows(sqlmock.NewRows([]string{"endpoint", "tenant_id", "p256dh", "auth", "created_at"}).
				AddRow(subscription.Endpoint, subscription.TenantID, subscription.P256DH, subscription.Auth, time.Now()))

		mock.ExpectQuery(`SELECT "label" FROM "tables" WHERE "tables"."id" = \$1 ORDER BY "tables"."id" LIMIT \$[0-9]+`).
			WithArgs(tableID, 1).
			WillReturnError(fmt.Errorf("table not found"))

		wp.Dispatch(tableID)
		wg.Wait()
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
