package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	schederrors "labbook/internal/scheduling/errors"
	"labbook/pkg/config"
	mongotx "labbook/pkg/db/mongo"
	"labbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	BookingCollectionName = "Bookings"
	RequestCollectionName = "BookingRequests"
)

// CalendarFilter bounds a read of committed bookings. LabID and SiteID are
// optional narrowing filters; From/To are always set by the service.
type CalendarFilter struct {
	LabID  string
	SiteID string
	From   time.Time
	To     time.Time
}

type BookingRepository interface {
	// FindConflicts returns committed bookings on (lab, site) whose scheduled
	// interval intersects [start, end). excludeRequestID, when non-empty,
	// removes a request's own line items from the result.
	FindConflicts(ctx context.Context, labID, siteID string, start, end time.Time, excludeRequestID string) ([]*model.Booking, error)
	FindInRange(ctx context.Context, filter CalendarFilter) ([]*model.Booking, error)
	FindItemsByRequestID(ctx context.Context, requestID string) ([]*model.Booking, error)
	FindRequestByID(ctx context.Context, id string) (*model.BookingRequest, error)
	ScheduleItem(ctx context.Context, itemID string, start, end time.Time, hourlyRate float64, status model.BookingStatus) error
	UpdateRequestStatus(ctx context.Context, requestID string, status model.BookingStatus) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoBookingRepository struct {
	cfg       *config.Config
	bookings  *mongo.Collection
	requests  *mongo.Collection
	txManager mongotx.TransactionManager
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:       cfg,
		bookings:  db.Collection(BookingCollectionName),
		requests:  db.Collection(RequestCollectionName),
		txManager: mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// conflictFilter builds the Bookings query for committed line items on
// (lab, site) overlapping [start, end). Overlap is half-open on both sides:
// stored.start < candidateEnd AND stored.end > candidateStart, so a booking
// ending exactly at start does not collide. A non-empty excludeRequestID
// drops that request's own items, which is how an extension check avoids
// colliding with itself.
func conflictFilter(labID, siteID string, start, end time.Time, excludeRequestID string) bson.M {
	filter := bson.M{
		"lab_id":          labID,
		"site_id":         siteID,
		"status":          bson.M{"$in": model.CommittedStatuses},
		"scheduled_start": bson.M{"$lt": end},
		"scheduled_end":   bson.M{"$gt": start},
	}
	if excludeRequestID != "" {
		filter["request_id"] = bson.M{"$ne": excludeRequestID}
	}
	return filter
}

// rangeFilter builds the calendar read query. Same half-open window semantics
// as conflictFilter, with lab and site as optional narrowing clauses.
func rangeFilter(filter CalendarFilter) bson.M {
	query := bson.M{
		"status":          bson.M{"$in": model.CommittedStatuses},
		"scheduled_start": bson.M{"$lt": filter.To},
		"scheduled_end":   bson.M{"$gt": filter.From},
	}
	if filter.LabID != "" {
		query["lab_id"] = filter.LabID
	}
	if filter.SiteID != "" {
		query["site_id"] = filter.SiteID
	}
	return query
}

func (r *mongoBookingRepository) FindConflicts(
	ctx context.Context,
	labID, siteID string,
	start, end time.Time,
	excludeRequestID string,
) ([]*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "scheduled_start", Value: 1}})

	cursor, err := r.bookings.Find(ctx, conflictFilter(labID, siteID, start, end, excludeRequestID), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find conflicting bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode conflicting bookings: %w", err)
	}

	return bookings, nil
}

// FindInRange reads committed bookings whose scheduled interval intersects the
// half-open window [From, To). A booking ending exactly at From is out of the
// window, matching how slot overlap is decided everywhere else; back-to-back
// entries never double-report on adjacent calendar pages.
func (r *mongoBookingRepository) FindInRange(ctx context.Context, filter CalendarFilter) ([]*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "scheduled_start", Value: 1}})

	cursor, err := r.bookings.Find(ctx, rangeFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings in range: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings in range: %w", err)
	}

	return bookings, nil
}

func (r *mongoBookingRepository) FindItemsByRequestID(ctx context.Context, requestID string) ([]*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "lab_id", Value: 1}})

	cursor, err := r.bookings.Find(ctx, bson.M{"request_id": requestID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find booking items: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode booking items: %w", err)
	}

	return bookings, nil
}

func (r *mongoBookingRepository) FindRequestByID(ctx context.Context, id string) (*model.BookingRequest, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", schederrors.ErrInvalidID, id)
	}

	var request model.BookingRequest
	err = r.requests.FindOne(ctx, bson.M{"_id": objectID}).Decode(&request)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, schederrors.ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to find booking request: %w", err)
	}

	return &request, nil
}

func (r *mongoBookingRepository) ScheduleItem(
	ctx context.Context,
	itemID string,
	start, end time.Time,
	hourlyRate float64,
	status model.BookingStatus,
) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(itemID)
	if err != nil {
		return fmt.Errorf("%w: %s", schederrors.ErrInvalidID, itemID)
	}

	update := bson.M{
		"$set": bson.M{
			"scheduled_start": start,
			"scheduled_end":   end,
			"hourly_rate":     hourlyRate,
			"status":          status,
			"updated_at":      time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.bookings.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to schedule booking item: %w", err)
	}
	if result.MatchedCount == 0 {
		return schederrors.ErrRequestNotFound
	}

	return nil
}

func (r *mongoBookingRepository) UpdateRequestStatus(ctx context.Context, requestID string, status model.BookingStatus) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(requestID)
	if err != nil {
		return fmt.Errorf("%w: %s", schederrors.ErrInvalidID, requestID)
	}

	update := bson.M{
		"$set": bson.M{
			"status":     status,
			"updated_at": time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.requests.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update request status: %w", err)
	}
	if result.MatchedCount == 0 {
		return schederrors.ErrRequestNotFound
	}

	return nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
