package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"multipark/backoffice/internal/constants"
	"multipark/backoffice/internal/models/entities"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const defaultPageSize = 100

var errDecode = errors.New("decode failed")

// ---- Abstractions for Testability ----

// LegacyCollection is the subset of *mongo.Collection the provider uses.
type LegacyCollection interface {
	FindDocuments(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]entities.ExternalReservation, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

// CollectionProvider hands out collections of the legacy database.
type CollectionProvider interface {
	Collection(name string) LegacyCollection
	Ping(ctx context.Context) error
}

// MongoCollection adapts *mongo.Collection to LegacyCollection.
type MongoCollection struct {
	*mongo.Collection
}

// FindDocuments runs a find and decodes every document of the cursor.
func (c *MongoCollection) FindDocuments(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]entities.ExternalReservation, error) {
	cur, err := c.Collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to perform Find: %w", err)
	}
	defer cur.Close(ctx)

	var docs []entities.ExternalReservation
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%w: %w", errDecode, err)
	}
	return docs, nil
}

// MongoClientProvider adapts *mongo.Client to CollectionProvider.
type MongoClientProvider struct {
	client   *mongo.Client
	database string
}

// NewMongoClientProvider creates a provider bound to one database.
func NewMongoClientProvider(client *mongo.Client, database string) *MongoClientProvider {
	return &MongoClientProvider{client: client, database: database}
}

// Collection returns a LegacyCollection for the given collection name.
func (p *MongoClientProvider) Collection(name string) LegacyCollection {
	return &MongoCollection{p.client.Database(p.database).Collection(name)}
}

// Ping checks the primary is reachable.
func (p *MongoClientProvider) Ping(ctx context.Context) error {
	return p.client.Ping(ctx, readpref.Primary())
}

// ConnectToMongoDB creates a client for uri. The driver connects in the background,
// so only an invalid URI fails here; an unreachable server surfaces through Ping and queries.
func ConnectToMongoDB(ctx context.Context, uri string) (*mongo.Client, error) {
	clientOptions := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	return client, nil
}

// MongoLegacyProvider implements LegacyStore over one collection per (city, brand)
type MongoLegacyProvider struct {
	provider CollectionProvider
	prefix   string
}

// NewMongoLegacyProvider creates a new legacy store provider
func NewMongoLegacyProvider(provider CollectionProvider, collectionPrefix string) *MongoLegacyProvider {
	return &MongoLegacyProvider{provider: provider, prefix: collectionPrefix}
}

// GetProviderType returns the provider type identifier
func (p *MongoLegacyProvider) GetProviderType() string {
	return "mongodb"
}

// CollectionName returns the collection holding a partition, e.g. reservations_lisbon_airpark
func (p *MongoLegacyProvider) CollectionName(partition entities.Partition) string {
	return fmt.Sprintf("%s_%s_%s", p.prefix, strings.ToLower(partition.City), strings.ToLower(partition.Brand))
}

// FetchChanged returns documents ordered by lastUpdate. One extra document is requested to tell whether another page exists.
func (p *MongoLegacyProvider) FetchChanged(ctx context.Context, partition entities.Partition, filters *SyncFilters) (*RecordSet, error) {
	if err := validatePartition(partition); err != nil {
		return nil, err
	}
	if filters == nil {
		filters = &SyncFilters{}
	}
	limit := filters.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}

	filter := bson.M{}
	if filters.ModifiedSince != nil {
		filter["lastUpdate"] = bson.M{"$gte": filters.ModifiedSince.UTC()}
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "lastUpdate", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(filters.Offset)).
		SetLimit(int64(limit + 1))

	docs, err := p.provider.Collection(p.CollectionName(partition)).FindDocuments(ctx, filter, opts)
	if err != nil {
		return nil, classifyError(err, constants.ErrCodeNetworkError)
	}

	hasMore := len(docs) > limit
	if hasMore {
		docs = docs[:limit]
	}
	for i := range docs {
		docs[i].City = partition.City
		docs[i].Brand = partition.Brand
	}

	return &RecordSet{
		Records:      docs,
		Offset:       filters.Offset + len(docs),
		HasMore:      hasMore,
		TotalFetched: len(docs),
	}, nil
}

// UpdateReservation sets the write-back fields on the document keyed by idClient
func (p *MongoLegacyProvider) UpdateReservation(ctx context.Context, partition entities.Partition, externalID string, update entities.LegacyUpdate) error {
	if err := validatePartition(partition); err != nil {
		return err
	}
	if strings.TrimSpace(externalID) == "" {
		return &ProviderError{
			Code:    constants.ErrCodeMissingExternalID,
			Message: constants.GetErrorMessage(constants.ErrCodeMissingExternalID),
		}
	}

	result, err := p.provider.Collection(p.CollectionName(partition)).UpdateOne(
		ctx,
		bson.M{"idClient": externalID},
		bson.M{"$set": update},
	)
	if err != nil {
		return classifyError(err, constants.ErrCodeWriteFailed)
	}
	if result == nil || result.MatchedCount == 0 {
		return &ProviderError{
			Code:    constants.ErrCodeDocumentNotFound,
			Message: constants.GetErrorMessage(constants.ErrCodeDocumentNotFound),
			Details: fmt.Sprintf("idClient=%s collection=%s", externalID, p.CollectionName(partition)),
		}
	}
	return nil
}

// Ping checks connectivity
func (p *MongoLegacyProvider) Ping(ctx context.Context) error {
	if err := p.provider.Ping(ctx); err != nil {
		return classifyError(err, constants.ErrCodeNetworkError)
	}
	return nil
}

func validatePartition(partition entities.Partition) error {
	if strings.TrimSpace(partition.City) == "" || strings.TrimSpace(partition.Brand) == "" {
		return &ProviderError{
			Code:    constants.ErrCodeInvalidPartition,
			Message: constants.GetErrorMessage(constants.ErrCodeInvalidPartition),
			Details: partition.String(),
		}
	}
	return nil
}

// classifyError maps a driver error onto a ProviderError code, using fallback when nothing more specific applies.
func classifyError(err error, fallback string) *ProviderError {
	code := fallback
	var cmdErr mongo.CommandError
	switch {
	case errors.Is(err, context.DeadlineExceeded), mongo.IsTimeout(err):
		code = constants.ErrCodeTimeout
	case errors.Is(err, errDecode):
		code = constants.ErrCodeDecodeFailed
	case errors.As(err, &cmdErr) && (cmdErr.Code == 18 || cmdErr.Code == 13):
		code = constants.ErrCodeAuthenticationFailed
	case mongo.IsNetworkError(err):
		code = constants.ErrCodeNetworkError
	}
	return &ProviderError{
		Code:    code,
		Message: constants.GetErrorMessage(code),
		Err:     err,
	}
}
