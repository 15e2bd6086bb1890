package service

import (
	"context"
	"time"

	"labbook/internal/scheduling/repository"
	"labbook/internal/scheduling/validator"
	"labbook/pkg/config"
	mongotx "labbook/pkg/db/mongo"
	"labbook/pkg/kafka"
	"labbook/pkg/logger"
	"labbook/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

// Well-formed ObjectIDs used across service tests.
const (
	testLabID     = "507f1f77bcf86cd799439011"
	testSiteID    = "507f1f77bcf86cd799439012"
	testRequestID = "507f1f77bcf86cd799439013"
	testItemID    = "507f1f77bcf86cd799439014"
)

type mockLabRepository struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Lab, error)
}

func (m *mockLabRepository) FindByID(ctx context.Context, id string) (*model.Lab, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, nil
}

type mockSiteRepository struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Site, error)
}

func (m *mockSiteRepository) FindByID(ctx context.Context, id string) (*model.Site, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, nil
}

type scheduledItem struct {
	itemID     string
	start      time.Time
	end        time.Time
	hourlyRate float64
	status     model.BookingStatus
}

type mockBookingRepository struct {
	findConflictsFunc        func(ctx context.Context, labID, siteID string, start, end time.Time, excludeRequestID string) ([]*model.Booking, error)
	findInRangeFunc          func(ctx context.Context, filter repository.CalendarFilter) ([]*model.Booking, error)
	findItemsByRequestIDFunc func(ctx context.Context, requestID string) ([]*model.Booking, error)
	findRequestByIDFunc      func(ctx context.Context, id string) (*model.BookingRequest, error)

	scheduledItems  []scheduledItem
	requestStatuses []model.BookingStatus
}

func (m *mockBookingRepository) FindConflicts(ctx context.Context, labID, siteID string, start, end time.Time, excludeRequestID string) ([]*model.Booking, error) {
	if m.findConflictsFunc != nil {
		return m.findConflictsFunc(ctx, labID, siteID, start, end, excludeRequestID)
	}
	return nil, nil
}

func (m *mockBookingRepository) FindInRange(ctx context.Context, filter repository.CalendarFilter) ([]*model.Booking, error) {
	if m.findInRangeFunc != nil {
		return m.findInRangeFunc(ctx, filter)
	}
	return nil, nil
}

func (m *mockBookingRepository) FindItemsByRequestID(ctx context.Context, requestID string) ([]*model.Booking, error) {
	if m.findItemsByRequestIDFunc != nil {
		return m.findItemsByRequestIDFunc(ctx, requestID)
	}
	return nil, nil
}

func (m *mockBookingRepository) FindRequestByID(ctx context.Context, id string) (*model.BookingRequest, error) {
	if m.findRequestByIDFunc != nil {
		return m.findRequestByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockBookingRepository) ScheduleItem(ctx context.Context, itemID string, start, end time.Time, hourlyRate float64, status model.BookingStatus) error {
	m.scheduledItems = append(m.scheduledItems, scheduledItem{
		itemID:     itemID,
		start:      start,
		end:        end,
		hourlyRate: hourlyRate,
		status:     status,
	})
	return nil
}

func (m *mockBookingRepository) UpdateRequestStatus(ctx context.Context, requestID string, status model.BookingStatus) error {
	m.requestStatuses = append(m.requestStatuses, status)
	return nil
}

func (m *mockBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

type mockSlotLockRepository struct {
	createFunc func(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error)

	created []string
	deleted []string
}

func (m *mockSlotLockRepository) Create(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, lock)
	}
	m.created = append(m.created, lock.ID)
	return lock, nil
}

func (m *mockSlotLockRepository) Delete(ctx context.Context, lockID string) error {
	m.deleted = append(m.deleted, lockID)
	return nil
}

type mockExtensionRepository struct {
	created []*model.ExtensionRequest
}

func (m *mockExtensionRepository) Create(ctx context.Context, ext *model.ExtensionRequest) (*model.ExtensionRequest, error) {
	m.created = append(m.created, ext)
	return ext, nil
}

type mockPublisher struct {
	messages []kafka.Message
	err      error
}

func (m *mockPublisher) Publish(ctx context.Context, msg kafka.Message) error {
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msg)
	return nil
}

func testConfig() *config.Config {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "scheduling-test",
	})
	return &config.Config{
		Log:                    log,
		MaxAlternatives:        5,
		SlotLockTTL:            10 * time.Second,
		CalendarDefaultHorizon: 30 * 24 * time.Hour,
		DefaultStartOfDay:      "09:00",
		DefaultEndOfDay:        "18:00",
	}
}

type testDeps struct {
	labs       *mockLabRepository
	sites      *mockSiteRepository
	bookings   *mockBookingRepository
	locks      *mockSlotLockRepository
	extensions *mockExtensionRepository
	events     *mockPublisher
	cfg        *config.Config
}

// newTestService wires the service over mocks with a lab and site that pass
// every lookup, leaving conflict behavior to the per-test booking mock.
func newTestService(lab *model.Lab, site *model.Site) (SchedulingService, *testDeps) {
	cfg := testConfig()
	deps := &testDeps{
		labs: &mockLabRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Lab, error) {
				return lab, nil
			},
		},
		sites: &mockSiteRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Site, error) {
				return site, nil
			},
		},
		bookings:   &mockBookingRepository{},
		locks:      &mockSlotLockRepository{},
		extensions: &mockExtensionRepository{},
		events:     &mockPublisher{},
		cfg:        cfg,
	}

	svc := NewSchedulingService(
		deps.labs,
		deps.sites,
		deps.bookings,
		deps.locks,
		deps.extensions,
		validator.NewSchedulingValidator(cfg.Log),
		nil,
		deps.events,
		cfg,
	)
	return svc, deps
}

func testLab() *model.Lab {
	return &model.Lab{
		ID:                 testLabID,
		SiteID:             testSiteID,
		Name:               "Thermal Vacuum Chamber",
		HourlyRate:         420,
		SlotGranularityMin: 60,
		CapacityUnits:      1,
		IsActive:           true,
	}
}

func testSite() *model.Site {
	return &model.Site{
		ID:          testSiteID,
		Name:        "Bengaluru Test Facility",
		TimeZone:    "Asia/Kolkata",
		OpeningTime: "08:00",
		ClosingTime: "18:00",
		IsActive:    true,
	}
}

// localTime builds an instant at the given local wall clock in the site's zone.
func localTime(t testingT, tz string, year int, month time.Month, day, hour, minute int) time.Time {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		t.Fatalf("failed to load location %s: %v", tz, err)
	}
	return time.Date(year, month, day, hour, minute, 0, 0, loc)
}

type testingT interface {
	Fatalf(format string, args ...any)
}
