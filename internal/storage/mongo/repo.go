// Package mongo stores the catalog as one document per poi_id.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"toiletsync/internal/domain"
)

type entryDoc struct {
	POIID        string        `bson:"poi_id"`
	Name         string        `bson:"name"`
	Address      string        `bson:"address"`
	City         string        `bson:"city"`
	District     string        `bson:"district"`
	Coordinates  domain.Coords `bson:"coordinates"`
	Phone        string        `bson:"phone"`
	OpeningHours string        `bson:"opening_hours"`
	OpeningDays  string        `bson:"opening_days"`
	Services     []string      `bson:"services"`
	HasToilet    bool          `bson:"has_toilet"`
	CreatedAt    time.Time     `bson:"created_at"`
	UpdatedAt    time.Time     `bson:"updated_at"`
}

func (d entryDoc) toDomain() domain.CatalogEntry {
	services := d.Services
	if services == nil {
		services = []string{}
	}
	return domain.CatalogEntry{
		POIID:        d.POIID,
		Name:         d.Name,
		Address:      d.Address,
		City:         d.City,
		District:     d.District,
		Coordinates:  d.Coordinates,
		Phone:        d.Phone,
		OpeningHours: d.OpeningHours,
		OpeningDays:  d.OpeningDays,
		Services:     services,
		HasToilet:    d.HasToilet,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

type Repo struct{ coll *mongo.Collection }

func New(coll *mongo.Collection) *Repo { return &Repo{coll: coll} }

// Connect dials uri and returns a repo over db.collection. The caller owns the client.
func Connect(ctx context.Context, uri, db, collection string) (*Repo, *mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}
	return New(client.Database(db).Collection(collection)), client, nil
}

// EnsureIndexes creates the unique poi_id index the upsert relies on.
func (r *Repo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "poi_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("poi_id_unique"),
	})
	return err
}

func (r *Repo) UpsertEntry(ctx context.Context, e domain.CatalogEntry) (domain.UpsertOutcome, error) {
	services := e.Services
	if services == nil {
		services = []string{}
	}
	filter := bson.M{"poi_id": e.POIID}
	update := bson.M{
		"$set": bson.M{
			"poi_id":        e.POIID,
			"name":          e.Name,
			"address":       e.Address,
			"city":          e.City,
			"district":      e.District,
			"coordinates":   e.Coordinates,
			"phone":         e.Phone,
			"opening_hours": e.OpeningHours,
			"opening_days":  e.OpeningDays,
			"services":      services,
			"has_toilet":    true,
			"updated_at":    e.UpdatedAt,
		},
		"$setOnInsert": bson.M{"created_at": e.CreatedAt},
	}
	opts := options.Update().SetUpsert(true)

	res, err := r.coll.UpdateOne(ctx, filter, update, opts)
	if mongo.IsDuplicateKeyError(err) {
		// two runs raced on the same new poi_id; the other insert won, so this one is an update
		res, err = r.coll.UpdateOne(ctx, filter, update, opts)
	}
	if err != nil {
		return domain.Unchanged, fmt.Errorf("upsert %s: %w", e.POIID, err)
	}
	switch {
	case res.UpsertedCount > 0:
		return domain.Inserted, nil
	case res.MatchedCount > 0:
		// an identical rewrite leaves ModifiedCount at 0 but still matched the key
		return domain.Updated, nil
	default:
		return domain.Unchanged, nil
	}
}

func (r *Repo) GetEntry(ctx context.Context, poiID string) (domain.CatalogEntry, error) {
	var d entryDoc
	if err := r.coll.FindOne(ctx, bson.M{"poi_id": poiID}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.CatalogEntry{}, domain.ErrNotFound
		}
		return domain.CatalogEntry{}, err
	}
	return d.toDomain(), nil
}

func (r *Repo) CountEntries(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{})
}
