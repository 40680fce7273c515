package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/apsas-edu/apsas-api/internal/models"
)

// ErrAppReleaseNotFound indicates no matching app release document exists.
var ErrAppReleaseNotFound = errors.New("app release not found")

// AppReleaseRepository stores app download links in the document store.
type AppReleaseRepository interface {
	List(ctx context.Context, platform string) ([]models.AppRelease, error)
	LatestActive(ctx context.Context, platform string) (models.AppRelease, error)
	Create(ctx context.Context, release *models.AppRelease) error
	SetActive(ctx context.Context, id primitive.ObjectID, active bool) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type appReleaseRepository struct {
	collection *mongo.Collection
}

// NewAppReleaseRepository instantiates the repository over the given collection.
func NewAppReleaseRepository(collection *mongo.Collection) AppReleaseRepository {
	return &appReleaseRepository{collection: collection}
}

func (r *appReleaseRepository) List(ctx context.Context, platform string) ([]models.AppRelease, error) {
	filter := bson.M{}
	if platform != "" {
		filter["platform"] = platform
	}

	opts := options.Find().SetSort(bson.D{{Key: "released_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var releases []models.AppRelease
	if err := cursor.All(ctx, &releases); err != nil {
		return nil, err
	}

	return releases, nil
}

func (r *appReleaseRepository) LatestActive(ctx context.Context, platform string) (models.AppRelease, error) {
	filter := bson.M{"platform": platform, "active": true}
	opts := options.FindOne().SetSort(bson.D{{Key: "released_at", Value: -1}})

	var release models.AppRelease
	err := r.collection.FindOne(ctx, filter, opts).Decode(&release)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.AppRelease{}, ErrAppReleaseNotFound
	}
	if err != nil {
		return models.AppRelease{}, err
	}

	return release, nil
}

func (r *appReleaseRepository) Create(ctx context.Context, release *models.AppRelease) error {
	result, err := r.collection.InsertOne(ctx, release)
	if err != nil {
		return err
	}

	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		release.ID = id
	}

	return nil
}

func (r *appReleaseRepository) SetActive(ctx context.Context, id primitive.ObjectID, active bool) error {
	result, err := r.collection.UpdateByID(ctx, id, bson.M{"$set": bson.M{"active": active}})
	if err != nil {
		return err
	}

	if result.MatchedCount == 0 {
		return ErrAppReleaseNotFound
	}

	return nil
}

func (r *appReleaseRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}

	if result.DeletedCount == 0 {
		return ErrAppReleaseNotFound
	}

	return nil
}
