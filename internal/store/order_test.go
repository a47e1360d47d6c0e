package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrdine-backend/internal/model"
)

func TestPlaceOrderComputesTotalAndEstimate(t *testing.T) {
	s, gdb := newTestStore(t)
	tenant := seedTenant(t, gdb, "bistro")
	dish := seedMenuItem(t, gdb, tenant.ID, "Nasi Goreng", 5.00, true)
	ctx := context.Background()

	before := time.Now().UTC()
	res, err := s.PlaceOrder(ctx, tenant.ID, PlaceOrderInput{
		TableLabel: "T1",
		Lines: []OrderLine{
			{MenuItemID: dish.ID, Quantity: 2},
		},
		PrepMinutes: 20,
	})
	require.NoError(t, err)

	assert.InDelta(t, 10.00, res.Order.TotalAmount, 0.001)
	assert.Equal(t, model.OrderPlaced, res.Order.Status)
	assert.Equal(t, model.PaymentUnpaid, res.Order.PaymentStatus)
	assert.Empty(t, res.FailedItems)
	assert.Len(t, res.Order.Items, 1)
	assert.InDelta(t, 5.00, res.Order.Items[0].UnitPrice, 0.001)

	est := res.Order.PlacedAt.Add(20 * time.Minute)
	assert.WithinDuration(t, est, res.Order.EstimatedReadyAt, time.Second)
	assert.True(t, !res.Order.PlacedAt.Before(before))

	// Placing an order binds the table to a live session.
	assert.Equal(t, model.SessionActive, res.Session.Status)
	assert.Equal(t, res.Table.ID, res.Session.TableID)
}

func TestPlaceOrderSuppliedTotalWins(t *testing.T) {
	s, gdb := newTestStore(t)
	tenant := seedTenant(t, gdb, "bistro")
	ctx := context.Background()

	res, err := s.PlaceOrder(ctx, tenant.ID, PlaceOrderInput{
		TableLabel: "T1",
		Lines: []OrderLine{
			{MenuItemID: 1, Quantity: 1, UnitPrice: 4.00},
		},
		Total: 99.50,
	})
	require.NoError(t, err)
	assert.InDelta(t, 99.50, res.Order.TotalAmount, 0.001)
}

func TestPlaceOrderPaymentIntent(t *testing.T) {
	testCases := []struct {
		name string
		in   PlaceOrderInput
		want model.PaymentStatus
	}{
		{"explicit flag", PlaceOrderInput{Paid: true}, model.PaymentPaid},
		{"online method hint", PlaceOrderInput{PaymentMethod: "ONLINE"}, model.PaymentPaid},
		{"paid method hint", PlaceOrderInput{PaymentMethod: "paid"}, model.PaymentPaid},
		{"explicit paid status", PlaceOrderInput{PaymentStatus: "paid"}, model.PaymentPaid},
		{"nested payment object", PlaceOrderInput{Payment: &PaymentAmount{Amount: 12}}, model.PaymentPaid},
		{"cash stays unpaid", PlaceOrderInput{PaymentMethod: "cash"}, model.PaymentUnpaid},
		{"default unpaid", PlaceOrderInput{}, model.PaymentUnpaid},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, gdb := newTestStore(t)
			tenant := seedTenant(t, gdb, "bistro")

			in := tc.in
			in.TableLabel = "T1"
			in.Lines = []OrderLine{{MenuItemID: 1, Quantity: 1, UnitPrice: 3.00}}

			res, err := s.PlaceOrder(context.Background(), tenant.ID, in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, res.Order.PaymentStatus)

			if tc.want == model.PaymentPaid {
				// The session aggregate mirrors the intent.
				var sess model.DiningSession
				require.NoError(t, gdb.First(&sess, res.Session.ID).Error)
				assert.Equal(t, model.PaymentPaid, sess.PaymentStatus)
			}
		})
	}
}

func TestPlaceOrderPartialItemFailures(t *testing.T) {
	s, gdb := newTestStore(t)
	tenant := seedTenant(t, gdb, "bistro")
	dish := seedMenuItem(t, gdb, tenant.ID, "Satay", 7.50, true)
	offMenu := seedMenuItem(t, gdb, tenant.ID, "Seasonal Special", 12.00, false)
	ctx := context.Background()

	res, err := s.PlaceOrder(ctx, tenant.ID, PlaceOrderInput{
		TableLabel: "T1",
		Lines: []OrderLine{
			{MenuItemID: dish.ID, Quantity: 1},
			{MenuItemID: offMenu.ID, Quantity: 1}, // unavailable
			{MenuItemID: 424242, Quantity: 1},     // unknown
			{MenuItemID: dish.ID, Quantity: 0},    // bad quantity
		},
	})
	require.NoError(t, err)

	assert.Len(t, res.Order.Items, 1)
	assert.Len(t, res.FailedItems, 3)
	assert.InDelta(t, 7.50, res.Order.TotalAmount, 0.001)

	reasons := make(map[uint]string, len(res.FailedItems))
	for _, f := range res.FailedItems {
		reasons[f.MenuItemID] = f.Reason
	}
	assert.Contains(t, reasons[offMenu.ID], "unavailable")
	assert.Contains(t, reasons[424242], "not found")
	assert.Contains(t, reasons[dish.ID], "quantity")
}

func TestPlaceOrderWithProvidedSession(t *testing.T) {
	s, gdb := newTestStore(t)
	tenant := seedTenant(t, gdb, "bistro")
	ctx := context.Background()

	table, err := s.ResolveTable(ctx, tenant.ID, TableSelector{Label: "T1"})
	require.NoError(t, err)
	session, _, err := s.EnsureActiveSession(ctx, tenant.ID, table.ID)
	require.NoError(t, err)

	res, err := s.PlaceOrder(ctx, tenant.ID, PlaceOrderInput{
		TableLabel: "T1",
		SessionID:  &session.ID,
		Lines:      []OrderLine{{MenuItemID: 1, Quantity: 1, UnitPrice: 2.00}},
	})
	require.NoError(t, err)
	assert.Equal(t, session.ID, res.Order.SessionID)

	// A closed session id is rejected, not silently rebound.
	_, err = s.CloseSession(ctx, tenant.ID, session.ID, "")
	require.NoError(t, err)
	_, err = s.PlaceOrder(ctx, tenant.ID, PlaceOrderInput{
		TableLabel: "T1",
		SessionID:  &session.ID,
		Lines:      []OrderLine{{MenuItemID: 1, Quantity: 1, UnitPrice: 2.00}},
	})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateOrderStatusStampsReadyOnce(t *testing.T) {
	s, gdb := newTestStore(t)
	tenant := seedTenant(t, gdb, "bistro")
	ctx := context.Background()

	placed, err := s.PlaceOrder(ctx, tenant.ID, PlaceOrderInput{
		TableLabel: "T1",
		Lines:      []OrderLine{{MenuItemID: 1, Quantity: 1, UnitPrice: 2.00}},
	})
	require.NoError(t, err)

	res, err := s.UpdateOrderStatus(ctx, tenant.ID, placed.Order.ID, model.OrderReady)
	require.NoError(t, err)
	assert.True(t, res.BecameReady)
	require.NotNil(t, res.Order.ActualReadyAt)
	firstStamp := *res.Order.ActualReadyAt
	assert.Equal(t, placed.Table.ID, res.TableID)

	// Further ready-ish transitions keep the original stamp.
	res, err = s.UpdateOrderStatus(ctx, tenant.ID, placed.Order.ID, model.OrderCompleted)
	require.NoError(t, err)
	assert.False(t, res.BecameReady)
	require.NotNil(t, res.Order.ActualReadyAt)
	assert.Equal(t, firstStamp.Unix(), res.Order.ActualReadyAt.Unix())

	// Enum membership is the only transition constraint.
	_, err = s.UpdateOrderStatus(ctx, tenant.ID, placed.Order.ID, model.OrderStatus("BURNT"))
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = s.UpdateOrderStatus(ctx, tenant.ID, 9999, model.OrderReady)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateItemStatus(t *testing.T) {
	s, gdb := newTestStore(t)
	tenant := seedTenant(t, gdb, "bistro")
	foreign := seedTenant(t, gdb, "foreign")
	ctx := context.Background()

	placed, err := s.PlaceOrder(ctx, tenant.ID, PlaceOrderInput{
		TableLabel: "T1",
		Lines:      []OrderLine{{MenuItemID: 1, Quantity: 1, UnitPrice: 2.00}},
	})
	require.NoError(t, err)
	itemID := placed.Order.Items[0].ID

	item, err := s.UpdateItemStatus(ctx, tenant.ID, itemID, model.ItemInProgress)
	require.NoError(t, err)
	assert.Equal(t, model.ItemInProgress, item.Status)

	_, err = s.UpdateItemStatus(ctx, tenant.ID, itemID, model.ItemStatus("EATEN"))
	assert.ErrorIs(t, err, ErrInvalidArgument)

	// Cross-tenant ids fail closed.
	_, err = s.UpdateItemStatus(ctx, foreign.ID, itemID, model.ItemCompleted)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdatePaymentStatusDoesNotCascade(t *testing.T) {
	s, gdb := newTestStore(t)
	tenant := seedTenant(t, gdb, "bistro")
	ctx := context.Background()

	placed, err := s.PlaceOrder(ctx, tenant.ID, PlaceOrderInput{
		TableLabel: "T1",
		Lines:      []OrderLine{{MenuItemID: 1, Quantity: 1, UnitPrice: 2.00}},
	})
	require.NoError(t, err)

	order, err := s.UpdatePaymentStatus(ctx, tenant.ID, placed.Order.ID, model.PaymentPaid)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPaid, order.PaymentStatus)

	// The session aggregate is not rewritten; order rows are the truth.
	var sess model.DiningSession
	require.NoError(t, gdb.First(&sess, placed.Session.ID).Error)
	assert.Equal(t, model.PaymentUnpaid, sess.PaymentStatus)

	_, err = s.UpdatePaymentStatus(ctx, tenant.ID, placed.Order.ID, model.PaymentStatus("gratis"))
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = s.UpdatePaymentStatus(ctx, tenant.ID, 9999, model.PaymentPaid)
	assert.ErrorIs(t, err, ErrNotFound)
}
