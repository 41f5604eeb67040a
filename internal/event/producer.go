package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/accounts/internal/domain"
	pkgkafka "github.com/utafrali/accounts/pkg/kafka"
	"github.com/utafrali/accounts/pkg/logger"
)

// Aggregate type constants.
const (
	AggregateTypeAddress = "address"
	AggregateTypeUser    = "user"
)

// Kafka topics for account domain events.
var (
	TopicAddressCreated        = pkgkafka.Topic(AggregateTypeAddress, "created")
	TopicAddressUpdated        = pkgkafka.Topic(AggregateTypeAddress, "updated")
	TopicAddressDeleted        = pkgkafka.Topic(AggregateTypeAddress, "deleted")
	TopicAddressBulkDeleted    = pkgkafka.Topic(AggregateTypeAddress, "bulk_deleted")
	TopicAddressDefaultChanged = pkgkafka.Topic(AggregateTypeAddress, "default_changed")
	TopicUserUpdated           = pkgkafka.Topic(AggregateTypeUser, "updated")
	TopicUserDeleted           = pkgkafka.Topic(AggregateTypeUser, "deleted")
)

// SourceAccountsService identifies events originating from this service.
const SourceAccountsService = "accounts-service"

// Publisher writes an event envelope to a topic. *pkgkafka.Producer
// satisfies it.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// AddressData is the payload for address.created and address.updated.
type AddressData struct {
	ID         int64  `json:"id"`
	UserID     int64  `json:"user_id"`
	City       string `json:"city"`
	Region     string `json:"region"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	IsDefault  bool   `json:"is_default"`
	ChangedBy  int64  `json:"changed_by,omitempty"`
}

// AddressDeletedData is the payload for address.deleted.
type AddressDeletedData struct {
	ID        int64 `json:"id"`
	UserID    int64 `json:"user_id"`
	DeletedBy int64 `json:"deleted_by"`
	ByAdmin   bool  `json:"by_admin"`
}

// AddressBulkDeletedData is the payload for address.bulk_deleted.
type AddressBulkDeletedData struct {
	UserID       int64   `json:"user_id"`
	RequestedIDs []int64 `json:"requested_ids"`
	DeletedCount int64   `json:"deleted_count"`
}

// AddressDefaultChangedData is the payload for address.default_changed.
type AddressDefaultChangedData struct {
	ID     int64 `json:"id"`
	UserID int64 `json:"user_id"`
}

// UserUpdatedData is the payload for user.updated.
type UserUpdatedData struct {
	ID               int64  `json:"id"`
	Email            string `json:"email"`
	FirstName        string `json:"first_name"`
	PaternalLastName string `json:"paternal_last_name"`
	MaternalLastName string `json:"maternal_last_name"`
	PasswordChanged  bool   `json:"password_changed"`
}

// UserDeletedData is the payload for user.deleted.
type UserDeletedData struct {
	ID        int64 `json:"id"`
	DeletedBy int64 `json:"deleted_by"`
	ByAdmin   bool  `json:"by_admin"`
}

// Producer publishes account domain events.
type Producer struct {
	publisher Publisher
	logger    *slog.Logger
}

// NewProducer creates a new event producer for the accounts service.
func NewProducer(publisher Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		publisher: publisher,
		logger:    logger,
	}
}

// PublishAddressCreated publishes an address.created event.
func (p *Producer) PublishAddressCreated(ctx context.Context, a *domain.ShippingAddress) error {
	return p.publish(ctx, TopicAddressCreated, AggregateTypeAddress, a.ID, addressData(a, 0))
}

// PublishAddressUpdated publishes an address.updated event.
func (p *Producer) PublishAddressUpdated(ctx context.Context, a *domain.ShippingAddress, caller domain.CallerContext) error {
	return p.publish(ctx, TopicAddressUpdated, AggregateTypeAddress, a.ID, addressData(a, caller.ID))
}

// PublishAddressDeleted publishes an address.deleted event.
func (p *Producer) PublishAddressDeleted(ctx context.Context, id, userID int64, caller domain.CallerContext) error {
	return p.publish(ctx, TopicAddressDeleted, AggregateTypeAddress, id, AddressDeletedData{
		ID:        id,
		UserID:    userID,
		DeletedBy: caller.ID,
		ByAdmin:   caller.IsAdmin,
	})
}

// PublishAddressBulkDeleted publishes an address.bulk_deleted event keyed by
// the owner.
func (p *Producer) PublishAddressBulkDeleted(ctx context.Context, userID int64, ids []int64, deleted int64) error {
	return p.publish(ctx, TopicAddressBulkDeleted, AggregateTypeUser, userID, AddressBulkDeletedData{
		UserID:       userID,
		RequestedIDs: ids,
		DeletedCount: deleted,
	})
}

// PublishAddressDefaultChanged publishes an address.default_changed event.
func (p *Producer) PublishAddressDefaultChanged(ctx context.Context, id, userID int64) error {
	return p.publish(ctx, TopicAddressDefaultChanged, AggregateTypeAddress, id, AddressDefaultChangedData{
		ID:     id,
		UserID: userID,
	})
}

// PublishUserUpdated publishes a user.updated event.
func (p *Producer) PublishUserUpdated(ctx context.Context, u *domain.User, passwordChanged bool) error {
	return p.publish(ctx, TopicUserUpdated, AggregateTypeUser, u.ID, UserUpdatedData{
		ID:               u.ID,
		Email:            u.Email,
		FirstName:        u.FirstName,
		PaternalLastName: u.PaternalLastName,
		MaternalLastName: u.MaternalLastName,
		PasswordChanged:  passwordChanged,
	})
}

// PublishUserDeleted publishes a user.deleted event.
func (p *Producer) PublishUserDeleted(ctx context.Context, id int64, caller domain.CallerContext) error {
	return p.publish(ctx, TopicUserDeleted, AggregateTypeUser, id, UserDeletedData{
		ID:        id,
		DeletedBy: caller.ID,
		ByAdmin:   caller.IsAdmin,
	})
}

func (p *Producer) publish(ctx context.Context, topic, aggregateType string, aggregateID int64, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateType, aggregateID, SourceAccountsService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if corrID := logger.CorrelationIDFromContext(ctx); corrID != "" {
		event.WithCorrelationID(corrID)
	}

	if err := p.publisher.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.Int64("aggregate_id", aggregateID),
	)

	return nil
}

func addressData(a *domain.ShippingAddress, changedBy int64) AddressData {
	return AddressData{
		ID:         a.ID,
		UserID:     a.UserID,
		City:       a.City,
		Region:     a.Region,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		IsDefault:  a.IsDefault,
		ChangedBy:  changedBy,
	}
}
