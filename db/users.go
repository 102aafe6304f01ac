package db

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// GetUser fetches a user by id.
func (queries *Queries) GetUser(ctx context.Context, id primitive.ObjectID) (*User, error) {
	var user User
	if err := queries.DB.Collection("users").FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUserPreference returns the user's preferred categories. A missing record
// is not an error: it means no preference, an empty set.
func (queries *Queries) GetUserPreference(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	var pref UserPreference
	err := queries.DB.Collection("user_preferences").FindOne(ctx, bson.M{"user_id": userID}).Decode(&pref)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return pref.PreferredCategory, nil
}

// ListCategories returns all categories. Search needs the names; full
// category management lives outside the core.
func (queries *Queries) ListCategories(ctx context.Context) ([]Category, error) {
	cur, err := queries.DB.Collection("categories").Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	categories := []Category{}
	if err := cur.All(ctx, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}
