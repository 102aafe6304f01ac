package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BulkCreateNotifications persists a batch of notification records in one
// write. The notifier stages one record per attendee and commits them all
// here after delivery attempts finish.
func (queries *Queries) BulkCreateNotifications(ctx context.Context, notifications []Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	docs := make([]any, 0, len(notifications))
	now := time.Now()
	for i := range notifications {
		notifications[i].ID = primitive.NewObjectID()
		notifications[i].CreatedAt = now
		docs = append(docs, notifications[i])
	}

	_, err := queries.DB.Collection("notifications").InsertMany(ctx, docs)
	return err
}

// ListNotifications returns the user's notifications newest-first.
func (queries *Queries) ListNotifications(ctx context.Context, userID primitive.ObjectID) ([]Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := queries.DB.Collection("notifications").Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	notifications := []Notification{}
	if err := cur.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkNotificationRead flips isRead on the recipient's own notification.
func (queries *Queries) MarkNotificationRead(ctx context.Context, id, userID primitive.ObjectID) error {
	res, err := queries.DB.Collection("notifications").UpdateOne(
		ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": bson.M{"isRead": true}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteNotification removes the recipient's own notification.
func (queries *Queries) DeleteNotification(ctx context.Context, id, userID primitive.ObjectID) error {
	res, err := queries.DB.Collection("notifications").DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
