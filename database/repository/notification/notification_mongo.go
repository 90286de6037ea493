package notificationRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"gobarber/models"
)

const collectionName = "notifications"

// MongoNotificationRepo stores notifications in MongoDB.
type MongoNotificationRepo struct {
	coll *mongo.Collection
}

// NewMongoNotificationRepo binds the repository to db and makes sure its indexes exist.
func NewMongoNotificationRepo(ctx context.Context, db *mongo.Database) (*MongoNotificationRepo, error) {
	repo := &MongoNotificationRepo{coll: db.Collection(collectionName)}
	if err := repo.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

func newContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, 5*time.Second)
}

// Insert stores n unread and fills in its id and timestamps.
func (r *MongoNotificationRepo) Insert(ctx context.Context, n *models.Notification) error {
	ctx, cancel := newContext(ctx)
	defer cancel()

	now := time.Now().UTC()
	n.Read = false
	n.CreatedAt = now
	n.UpdatedAt = now
	n.Date = n.Date.UTC()

	res, err := r.coll.InsertOne(ctx, n)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		n.ID = id
	}
	return nil
}

// ListByRecipient returns the newest notifications addressed to userID.
func (r *MongoNotificationRepo) ListByRecipient(ctx context.Context, userID int64, limit int64) ([]models.Notification, error) {
	ctx, cancel := newContext(ctx)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)
	cursor, err := r.coll.Find(ctx, bson.M{"user": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications for user %d: %w", userID, err)
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead flags one of userID's notifications as read. It returns (nil, nil)
// when no such notification belongs to userID.
func (r *MongoNotificationRepo) MarkRead(ctx context.Context, id string, userID int64) (*models.Notification, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// A malformed id cannot match anything, same as another user's id.
		return nil, nil
	}
	ctx, cancel := newContext(ctx)
	defer cancel()

	filter := bson.M{"_id": oid, "user": userID}
	update := bson.M{"$set": bson.M{"read": true, "updated_at": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var n models.Notification
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&n); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to mark notification %s read: %w", id, err)
	}
	return &n, nil
}
