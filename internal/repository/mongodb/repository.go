package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/stocktake/internal/domain/models"
)

const (
	reportsCollection = "daily_reports"
	usersCollection   = "users"
)

// Repository defines the hosted document operations the service relies on.
type Repository interface {
	SaveDailyReport(ctx context.Context, report models.DailyReport) error
	LookupRole(ctx context.Context, userID string) (models.Role, error)
}

// userDocument is the users/{uid} record. Only the role is read.
type userDocument struct {
	ID   string `bson:"_id"`
	Role string `bson:"role"`
}

// MongoDBRepository implements the Repository interface for MongoDB.
type MongoDBRepository struct {
	client *mongo.Client
	dbName string
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client: client,
		dbName: dbName,
	}, nil
}

// SaveDailyReport archives a daily stock digest.
func (r *MongoDBRepository) SaveDailyReport(ctx context.Context, report models.DailyReport) error {
	collection := r.client.Database(r.dbName).Collection(reportsCollection)
	_, err := collection.InsertOne(ctx, report)
	if err != nil {
		return fmt.Errorf("failed to insert daily report: %w", err)
	}
	return nil
}

// LookupRole reads the role stored for userID. A user without a document is a guest.
func (r *MongoDBRepository) LookupRole(ctx context.Context, userID string) (models.Role, error) {
	collection := r.client.Database(r.dbName).Collection(usersCollection)

	var doc userDocument
	err := collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.RoleGuest, nil
	}
	if err != nil {
		return "", fmt.Errorf("find user %s: %w", userID, err)
	}
	return models.ParseRole(doc.Role), nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
