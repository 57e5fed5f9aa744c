package models

import (
	"testing"
	"time"

	"tix/src/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openOrderTestDB(t *testing.T) *gorm.DB {
	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, gdb.AutoMigrate(&Account{}, &User{}, &Event{}, &TicketType{}, &Order{}, &TicketOrder{}, &Ticket{}))
	return gdb
}

func TestNewOrderKeys(t *testing.T) {
	uid := uint(1)
	order := NewOrder(&uid, 1)

	assert.Len(t, order.OrderKey, 32)
	assert.Len(t, order.PaymentKey, 32)
	assert.NotEqual(t, order.OrderKey, order.PaymentKey)
	assert.Equal(t, types.ORDER_STARTED, order.Status)
	assert.False(t, order.SessionStart.IsZero())
}

func TestLockEmptyOrder(t *testing.T) {
	gdb := openOrderTestDB(t)
	uid := uint(1)
	order := NewOrder(&uid, 1)
	require.NoError(t, gdb.Create(order).Error)

	assert.ErrorIs(t, order.Lock(gdb), ErrEmptyOrder)
	assert.False(t, order.Locked)
}

func TestLockWithoutUser(t *testing.T) {
	gdb := openOrderTestDB(t)
	order := NewOrder(nil, 1)
	require.NoError(t, gdb.Create(order).Error)
	tt := NewTicketType("Standard", 2500, "eur", 10, 1)
	require.NoError(t, gdb.Create(tt).Error)
	require.NoError(t, gdb.Create(&TicketOrder{OrderID: order.ID, TicketTypeID: tt.ID, Amount: 1}).Error)

	assert.ErrorIs(t, order.Lock(gdb), ErrOrderUserRequired)
}

func TestCheckoutBindsUserAndLocks(t *testing.T) {
	gdb := openOrderTestDB(t)
	user := User{Name: "Anna", Email: "anna@example.com"}
	require.NoError(t, gdb.Create(&user).Error)
	order := NewOrder(nil, 1)
	require.NoError(t, gdb.Create(order).Error)
	tt := NewTicketType("Standard", 2500, "eur", 10, 1)
	require.NoError(t, gdb.Create(tt).Error)
	require.NoError(t, gdb.Create(&TicketOrder{OrderID: order.ID, TicketTypeID: tt.ID, Amount: 2}).Error)

	require.NoError(t, order.Checkout(gdb, &user))

	assert.True(t, order.Locked)
	require.NotNil(t, order.UserID)
	assert.Equal(t, user.ID, *order.UserID)
}

func TestTouchSlidesSessionStart(t *testing.T) {
	uid := uint(1)
	order := NewOrder(&uid, 1)
	before := order.SessionStart

	time.Sleep(5 * time.Millisecond)
	order.Touch()

	assert.True(t, order.SessionStart.After(before))
}

func TestPurchaseRequiresLock(t *testing.T) {
	uid := uint(1)
	order := NewOrder(&uid, 1)

	assert.ErrorIs(t, order.Purchase(), ErrOrderNotLocked)

	order.Locked = true
	require.NoError(t, order.Purchase())
	assert.Equal(t, types.ORDER_PURCHASED, order.Status)
	assert.NotNil(t, order.PurchasedOn)
}

func TestPurchaseAfterTimeout(t *testing.T) {
	uid := uint(1)
	order := NewOrder(&uid, 1)
	order.Locked = true
	order.Timeout()
	require.Equal(t, types.ORDER_TIMEOUT, order.Status)

	require.NoError(t, order.Purchase())
	assert.Equal(t, types.ORDER_PURCHASED, order.Status)
}

func TestOrderTotalIncludesHandlingFees(t *testing.T) {
	gdb := openOrderTestDB(t)
	event := Event{Name: "Friday Live", AccountID: 1, HandlingFee: 100}
	require.NoError(t, gdb.Create(&event).Error)

	inherited := NewTicketType("Standard", 2500, "eur", 10, event.ID)
	require.NoError(t, gdb.Create(inherited).Error)
	fee := int64(50)
	custom := NewTicketType("Premium", 5000, "eur", 10, event.ID)
	custom.HandlingFee = &fee
	require.NoError(t, gdb.Create(custom).Error)
	free := NewTicketType("Free Entry", 0, "eur", 10, event.ID)
	require.NoError(t, gdb.Create(free).Error)

	uid := uint(1)
	order := NewOrder(&uid, 1)
	require.NoError(t, gdb.Create(order).Error)
	require.NoError(t, gdb.Create(&TicketOrder{OrderID: order.ID, TicketTypeID: inherited.ID, Amount: 2}).Error)
	require.NoError(t, gdb.Create(&TicketOrder{OrderID: order.ID, TicketTypeID: custom.ID, Amount: 1}).Error)
	require.NoError(t, gdb.Create(&TicketOrder{OrderID: order.ID, TicketTypeID: free.ID, Amount: 3}).Error)

	total, err := order.Total(gdb)
	require.NoError(t, err)
	// 2x(2500+100) + 1x(5000+50) + 3x0
	assert.EqualValues(t, 10250, total)

	count, err := order.TicketCount(gdb)
	require.NoError(t, err)
	assert.Equal(t, 6, count)
}

func TestOrderTicketTypes(t *testing.T) {
	gdb := openOrderTestDB(t)
	uid := uint(1)
	order := NewOrder(&uid, 1)
	require.NoError(t, gdb.Create(order).Error)
	first := NewTicketType("Standard", 2500, "eur", 10, 1)
	require.NoError(t, gdb.Create(first).Error)
	second := NewTicketType("Premium", 5000, "eur", 5, 1)
	require.NoError(t, gdb.Create(second).Error)
	require.NoError(t, gdb.Create(&TicketOrder{OrderID: order.ID, TicketTypeID: first.ID, Amount: 1}).Error)
	require.NoError(t, gdb.Create(&TicketOrder{OrderID: order.ID, TicketTypeID: second.ID, Amount: 2}).Error)

	tickettypes, err := order.TicketTypes(gdb)
	require.NoError(t, err)
	assert.Len(t, tickettypes, 2)
}
