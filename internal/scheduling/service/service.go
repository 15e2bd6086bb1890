package service

import (
	"context"
	"time"

	"labbook/internal/scheduling/cache"
	"labbook/internal/scheduling/repository"
	"labbook/internal/scheduling/validator"
	"labbook/pkg/config"
	"labbook/pkg/kafka"
	"labbook/pkg/model"
)

// AvailabilityResult is the full answer to one availability question.
// IsAvailable=false with conflicts is a normal negative result, never an
// error; hard rejections (unknown lab, interval outside operating hours)
// surface as errors instead and carry no alternatives.
type AvailabilityResult struct {
	LabID        string           `json:"lab_id"`
	SiteID       string           `json:"site_id"`
	Interval     model.Interval   `json:"interval"`
	IsAvailable  bool             `json:"is_available"`
	Conflicts    []*model.Booking `json:"conflicts,omitempty"`
	Alternatives []model.Interval `json:"alternatives,omitempty"`

	// Reason is set when an extension evaluation rejected this item on a
	// validation path (for example the extended window runs past closing);
	// in that case no conflict search or alternative search ever ran.
	Reason string `json:"reason,omitempty"`
}

// ExtensionResult carries one AvailabilityResult per lab line item of the
// aggregate. Whether partial approval is acceptable is the approval flow's
// policy; AllAvailable is computed as a convenience, nothing here decides.
type ExtensionResult struct {
	RequestID       string                `json:"request_id"`
	AdditionalHours int                   `json:"additional_hours"`
	Items           []*AvailabilityResult `json:"items"`
	AllAvailable    bool                  `json:"all_available"`
}

// CalendarQuery bounds a plain read of committed bookings. Zero From defaults
// to now, zero To defaults to From plus the configured horizon.
type CalendarQuery struct {
	LabID  string
	SiteID string
	From   time.Time
	To     time.Time
}

type SchedulingService interface {
	CheckAvailability(ctx context.Context, q *model.AvailabilityQuery) (*AvailabilityResult, error)
	CheckExtension(ctx context.Context, q *model.ExtensionQuery) (*ExtensionResult, error)
	CalendarView(ctx context.Context, q CalendarQuery) ([]*model.Booking, error)
	ApproveBooking(ctx context.Context, requestID string) ([]*model.Booking, error)
}

// EventPublisher is the slice of the Kafka producer the service needs;
// nil disables event publishing.
type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type schedulingService struct {
	labs       repository.LabRepository
	sites      repository.SiteRepository
	bookings   repository.BookingRepository
	locks      repository.SlotLockRepository
	extensions repository.ExtensionRepository
	validator  *validator.SchedulingValidator
	calendar   *cache.CalendarCache
	events     EventPublisher
	cfg        *config.Config
}

func NewSchedulingService(
	labs repository.LabRepository,
	sites repository.SiteRepository,
	bookings repository.BookingRepository,
	locks repository.SlotLockRepository,
	extensions repository.ExtensionRepository,
	validator *validator.SchedulingValidator,
	calendar *cache.CalendarCache,
	events EventPublisher,
	cfg *config.Config,
) SchedulingService {
	return &schedulingService{
		labs:       labs,
		sites:      sites,
		bookings:   bookings,
		locks:      locks,
		extensions: extensions,
		validator:  validator,
		calendar:   calendar,
		events:     events,
		cfg:        cfg,
	}
}

func (s *schedulingService) publish(ctx context.Context, eventType, key string, payload any) {
	if s.events == nil {
		return
	}

	msg := kafka.NewMessage().
		WithKey(key).
		WithValue(payload).
		WithEventType(eventType).
		WithSource("scheduling").
		Build()

	if err := s.events.Publish(ctx, msg); err != nil {
		s.cfg.Log.Warn("Failed to publish scheduling event",
			"event_type", eventType,
			"key", key,
			"error", err,
		)
	}
}
