package orders

import (
	"testing"
	"time"

	"tix/src/db"
	"tix/src/models"
	"tix/src/types"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type ProcessingTestSuite struct {
	suite.Suite
	DB *gorm.DB

	account  models.Account
	user     models.User
	event    models.Event
	standard models.TicketType
}

func (s *ProcessingTestSuite) SetupTest() {
	s.DB = db.NewTestDB()

	s.account = models.Account{Name: "Velvet Club", Email: "box@velvet.example"}
	s.Require().NoError(s.DB.Create(&s.account).Error)
	s.user = models.User{Name: "Anna", Email: "anna@example.com"}
	s.Require().NoError(s.DB.Create(&s.user).Error)
	s.event = models.Event{Name: "Friday Live", AccountID: s.account.ID}
	s.Require().NoError(s.DB.Create(&s.event).Error)

	tt := models.NewTicketType("Standard", 2500, "eur", 10, s.event.ID)
	tt.IsActive = true
	s.Require().NoError(s.DB.Create(tt).Error)
	s.standard = *tt
}

func (s *ProcessingTestSuite) startOrder() *models.Order {
	order, err := StartOrder(&s.user.ID, s.account.ID)
	s.Require().NoError(err)
	return order
}

func (s *ProcessingTestSuite) TestStartOrderCreatesSession() {
	order := s.startOrder()

	s.Equal(types.ORDER_STARTED, order.Status)
	s.False(order.Locked)
	s.Len(order.OrderKey, 32)
	s.Len(order.PaymentKey, 32)
	s.NotEqual(order.OrderKey, order.PaymentKey)
}

func (s *ProcessingTestSuite) TestStartOrderReusesOpenSession() {
	first := s.startOrder()
	second := s.startOrder()

	s.Equal(first.ID, second.ID)
}

func (s *ProcessingTestSuite) TestStartOrderIgnoresLockedSession() {
	first := s.startOrder()
	_, err := AddTickets(first.ID, s.standard.ID, 1)
	s.Require().NoError(err)
	_, err = CheckoutOrder(first.ID, &s.user, "manual")
	s.Require().NoError(err)

	second := s.startOrder()
	s.NotEqual(first.ID, second.ID)
}

func (s *ProcessingTestSuite) TestAddTicketsRejectsNegativeAmount() {
	order := s.startOrder()

	_, err := AddTickets(order.ID, s.standard.ID, -1)
	s.ErrorIs(err, models.ErrInvalidAmount)
}

func (s *ProcessingTestSuite) TestAddTicketsUnknownOrder() {
	_, err := AddTickets(9999, s.standard.ID, 1)
	s.ErrorIs(err, models.ErrOrderNotFound)
}

func (s *ProcessingTestSuite) TestAddTicketsUnknownTicketType() {
	order := s.startOrder()

	_, err := AddTickets(order.ID, 9999, 1)
	s.ErrorIs(err, models.ErrTicketTypeNotFound)
}

func (s *ProcessingTestSuite) TestAddTicketsLockedOrder() {
	order := s.startOrder()
	_, err := AddTickets(order.ID, s.standard.ID, 1)
	s.Require().NoError(err)
	_, err = CheckoutOrder(order.ID, &s.user, "manual")
	s.Require().NoError(err)

	_, err = AddTickets(order.ID, s.standard.ID, 2)
	s.ErrorIs(err, models.ErrOrderLocked)
}

func (s *ProcessingTestSuite) TestAddTicketsInactiveTicketType() {
	inactive := models.NewTicketType("Early Bird", 1500, "eur", 5, s.event.ID)
	s.Require().NoError(s.DB.Create(inactive).Error)
	order := s.startOrder()

	_, err := AddTickets(order.ID, inactive.ID, 1)
	s.ErrorIs(err, models.ErrInactiveTicketType)
}

func (s *ProcessingTestSuite) TestAddTicketsOrphanedTicketType() {
	orphan := models.NewTicketType("Orphan", 1000, "eur", 5, 9999)
	orphan.IsActive = true
	s.Require().NoError(s.DB.Create(orphan).Error)
	order := s.startOrder()

	_, err := AddTickets(order.ID, orphan.ID, 1)
	s.ErrorIs(err, models.ErrEventNotFound)
}

func (s *ProcessingTestSuite) TestAddTicketsAccountMismatch() {
	other := models.Account{Name: "Rival Venue"}
	s.Require().NoError(s.DB.Create(&other).Error)
	otherEvent := models.Event{Name: "Saturday Live", AccountID: other.ID}
	s.Require().NoError(s.DB.Create(&otherEvent).Error)
	foreign := models.NewTicketType("Foreign", 2000, "eur", 5, otherEvent.ID)
	foreign.IsActive = true
	s.Require().NoError(s.DB.Create(foreign).Error)
	order := s.startOrder()

	_, err := AddTickets(order.ID, foreign.ID, 1)
	s.ErrorIs(err, models.ErrAccountMismatch)
}

func (s *ProcessingTestSuite) TestAddTicketsSubscriptionLimit() {
	zero := 0
	s.Require().NoError(s.DB.Model(&s.account).Update("transactions_per_month", &zero).Error)
	order := s.startOrder()

	_, err := AddTickets(order.ID, s.standard.ID, 1)
	s.ErrorIs(err, models.ErrSubscriptionLimit)
}

func (s *ProcessingTestSuite) TestAddTicketsFreeTypeIgnoresSubscriptionLimit() {
	zero := 0
	s.Require().NoError(s.DB.Model(&s.account).Update("transactions_per_month", &zero).Error)
	free := models.NewTicketType("Free Entry", 0, "eur", 20, s.event.ID)
	free.IsActive = true
	s.Require().NoError(s.DB.Create(free).Error)
	order := s.startOrder()

	_, err := AddTickets(order.ID, free.ID, 2)
	s.NoError(err)
}

func (s *ProcessingTestSuite) TestAddTicketsSetsAbsoluteAmount() {
	order := s.startOrder()

	_, err := AddTickets(order.ID, s.standard.ID, 3)
	s.Require().NoError(err)
	s.Equal(3, s.lineAmount(order.ID))

	_, err = AddTickets(order.ID, s.standard.ID, 5)
	s.Require().NoError(err)
	s.Equal(5, s.lineAmount(order.ID))

	_, err = AddTickets(order.ID, s.standard.ID, 2)
	s.Require().NoError(err)
	s.Equal(2, s.lineAmount(order.ID))
}

func (s *ProcessingTestSuite) TestAddTicketsSameAmountIsIdempotent() {
	order := s.startOrder()
	_, err := AddTickets(order.ID, s.standard.ID, 4)
	s.Require().NoError(err)
	_, err = AddTickets(order.ID, s.standard.ID, 4)
	s.Require().NoError(err)

	var lines int64
	s.Require().NoError(s.DB.Model(&models.TicketOrder{}).Where(&models.TicketOrder{OrderID: order.ID}).Count(&lines).Error)
	s.EqualValues(1, lines)
	s.Equal(4, s.lineAmount(order.ID))
}

func (s *ProcessingTestSuite) TestAddTicketsZeroRemovesLine() {
	order := s.startOrder()
	_, err := AddTickets(order.ID, s.standard.ID, 3)
	s.Require().NoError(err)

	_, err = AddTickets(order.ID, s.standard.ID, 0)
	s.Require().NoError(err)

	var count int64
	s.Require().NoError(s.DB.Model(&models.TicketOrder{}).Where(&models.TicketOrder{OrderID: order.ID}).Count(&count).Error)
	s.Zero(count)

	// the line can come back after removal
	_, err = AddTickets(order.ID, s.standard.ID, 4)
	s.Require().NoError(err)
	s.Equal(4, s.lineAmount(order.ID))
}

func (s *ProcessingTestSuite) TestAddTicketsZeroWithoutLine() {
	order := s.startOrder()

	_, err := AddTickets(order.ID, s.standard.ID, 0)
	s.ErrorIs(err, models.ErrAmountNotAvailable)
}

func (s *ProcessingTestSuite) TestAddTicketsChecksAvailability() {
	order := s.startOrder()

	_, err := AddTickets(order.ID, s.standard.ID, 11)
	s.ErrorIs(err, models.ErrAmountNotAvailable)

	_, err = AddTickets(order.ID, s.standard.ID, 10)
	s.NoError(err)
}

func (s *ProcessingTestSuite) TestAddTicketsAvailabilityAcrossOrders() {
	other := models.User{Name: "Ben", Email: "ben@example.com"}
	s.Require().NoError(s.DB.Create(&other).Error)

	first := s.startOrder()
	_, err := AddTickets(first.ID, s.standard.ID, 8)
	s.Require().NoError(err)

	second, err := StartOrder(&other.ID, s.account.ID)
	s.Require().NoError(err)

	_, err = AddTickets(second.ID, s.standard.ID, 3)
	s.ErrorIs(err, models.ErrAmountNotAvailable)

	_, err = AddTickets(second.ID, s.standard.ID, 2)
	s.NoError(err)
}

func (s *ProcessingTestSuite) TestAddTicketsGiftedSkipsAvailability() {
	order := s.startOrder()
	order.Meta.Gifted = true
	s.Require().NoError(s.DB.Model(order).Update("meta", order.Meta).Error)

	_, err := AddTickets(order.ID, s.standard.ID, 15)
	s.NoError(err)
}

func (s *ProcessingTestSuite) TestAddTicketsIncreaseChecksDeltaOnly() {
	order := s.startOrder()
	_, err := AddTickets(order.ID, s.standard.ID, 6)
	s.Require().NoError(err)

	// 6 held by this order, 4 remaining elsewhere; going to 10 needs 4 more
	_, err = AddTickets(order.ID, s.standard.ID, 10)
	s.NoError(err)

	_, err = AddTickets(order.ID, s.standard.ID, 11)
	s.ErrorIs(err, models.ErrAmountNotAvailable)
}

func (s *ProcessingTestSuite) TestAddTicketsSlidesSessionWindow() {
	order := s.startOrder()
	before := order.SessionStart

	time.Sleep(10 * time.Millisecond)
	updated, err := AddTickets(order.ID, s.standard.ID, 1)
	s.Require().NoError(err)

	s.True(updated.SessionStart.After(before))
}

func (s *ProcessingTestSuite) TestCheckoutRequiresTickets() {
	order := s.startOrder()

	_, err := CheckoutOrder(order.ID, &s.user, "manual")
	s.ErrorIs(err, models.ErrEmptyOrder)
}

func (s *ProcessingTestSuite) TestCheckoutLocksOrder() {
	order := s.startOrder()
	_, err := AddTickets(order.ID, s.standard.ID, 2)
	s.Require().NoError(err)

	_, err = CheckoutOrder(order.ID, &s.user, "manual")
	s.Require().NoError(err)

	reloaded, err := LookupOrderByID(s.DB, order.ID)
	s.Require().NoError(err)
	s.True(reloaded.Locked)
	s.Equal("manual", reloaded.PaymentProvider)
}

func (s *ProcessingTestSuite) TestCheckoutBindsUser() {
	order, err := StartOrder(nil, s.account.ID)
	s.Require().NoError(err)
	_, err = AddTickets(order.ID, s.standard.ID, 1)
	s.Require().NoError(err)

	_, err = CheckoutOrder(order.ID, &s.user, "manual")
	s.Require().NoError(err)

	reloaded, err := LookupOrderByID(s.DB, order.ID)
	s.Require().NoError(err)
	s.Require().NotNil(reloaded.UserID)
	s.Equal(s.user.ID, *reloaded.UserID)
}

func (s *ProcessingTestSuite) TestCheckoutWithoutUser() {
	order, err := StartOrder(nil, s.account.ID)
	s.Require().NoError(err)
	_, err = AddTickets(order.ID, s.standard.ID, 1)
	s.Require().NoError(err)

	_, err = CheckoutOrder(order.ID, nil, "manual")
	s.ErrorIs(err, models.ErrOrderUserRequired)
}

func (s *ProcessingTestSuite) TestCheckoutUnknownProvider() {
	order := s.startOrder()
	_, err := AddTickets(order.ID, s.standard.ID, 1)
	s.Require().NoError(err)

	_, err = CheckoutOrder(order.ID, &s.user, "paypal")
	s.Error(err)
}

func (s *ProcessingTestSuite) TestCheckoutFreeOrderFinalizesImmediately() {
	free := models.NewTicketType("Free Entry", 0, "eur", 20, s.event.ID)
	free.IsActive = true
	s.Require().NoError(s.DB.Create(free).Error)
	order := s.startOrder()
	_, err := AddTickets(order.ID, free.ID, 2)
	s.Require().NoError(err)

	url, err := CheckoutOrder(order.ID, &s.user, "manual")
	s.Require().NoError(err)
	s.Empty(url)

	reloaded, err := LookupOrderByID(s.DB, order.ID)
	s.Require().NoError(err)
	s.Equal(types.ORDER_PURCHASED, reloaded.Status)
}

func (s *ProcessingTestSuite) TestCancelOrderKeepsLines() {
	order := s.startOrder()
	_, err := AddTickets(order.ID, s.standard.ID, 3)
	s.Require().NoError(err)

	s.Require().NoError(CancelOrder(order.ID))

	reloaded, err := LookupOrderByID(s.DB, order.ID)
	s.Require().NoError(err)
	s.Equal(types.ORDER_CANCELLED, reloaded.Status)
	s.Equal(3, s.lineAmount(order.ID))
}

func (s *ProcessingTestSuite) TestCancelReleasesCapacity() {
	order := s.startOrder()
	_, err := AddTickets(order.ID, s.standard.ID, 10)
	s.Require().NoError(err)
	s.Require().NoError(CancelOrder(order.ID))

	other := models.User{Name: "Ben", Email: "ben@example.com"}
	s.Require().NoError(s.DB.Create(&other).Error)
	second, err := StartOrder(&other.ID, s.account.ID)
	s.Require().NoError(err)

	_, err = AddTickets(second.ID, s.standard.ID, 10)
	s.NoError(err)
}

func (s *ProcessingTestSuite) TestDeleteOrderRemovesEverything() {
	order := s.startOrder()
	_, err := AddTickets(order.ID, s.standard.ID, 2)
	s.Require().NoError(err)

	s.Require().NoError(DeleteOrder(order.ID))

	_, err = LookupOrderByID(s.DB.Unscoped(), order.ID)
	s.ErrorIs(err, models.ErrOrderNotFound)
	var lines int64
	s.Require().NoError(s.DB.Unscoped().Model(&models.TicketOrder{}).Where("order_id = ?", order.ID).Count(&lines).Error)
	s.Zero(lines)
}

func (s *ProcessingTestSuite) lineAmount(orderID uint) int {
	var line models.TicketOrder
	err := s.DB.
		Where(&models.TicketOrder{OrderID: orderID, TicketTypeID: s.standard.ID}).
		First(&line).
		Error
	s.Require().NoError(err)
	return line.Amount
}

func TestProcessingTestSuite(t *testing.T) {
	suite.Run(t, new(ProcessingTestSuite))
}
