package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/plantpal/plantpal-api/internal/core/domain"
)

const plantsCollection = "plants"

// PlantRepository implements ports.PlantRepository using MongoDB. Owner
// scoping is always part of the query filter.
type PlantRepository struct {
	coll *mongo.Collection
}

func NewPlantRepository(db *mongo.Database) *PlantRepository {
	return &PlantRepository{coll: db.Collection(plantsCollection)}
}

// plantDocument is the shape written on insert.
type plantDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	OwnerID     string             `bson:"user_id"`
	Name        string             `bson:"name"`
	SpeciesID   primitive.ObjectID `bson:"speciesId,omitempty"`
	LastWatered time.Time          `bson:"lastWatered"`
}

// storedPlant is the shape read back. speciesId and lastWatered are decoded
// leniently: a reference that is not an ObjectID is passed through and later
// resolves to no species, and lastWatered may be a date or an ISO 8601 string.
type storedPlant struct {
	ID          bson.RawValue `bson:"_id"`
	OwnerID     string        `bson:"user_id"`
	Name        bson.RawValue `bson:"name"`
	SpeciesID   bson.RawValue `bson:"speciesId"`
	LastWatered bson.RawValue `bson:"lastWatered"`
}

func (d storedPlant) toDomain() domain.Plant {
	return domain.Plant{
		ID:            rawID(d.ID),
		OwnerID:       d.OwnerID,
		Name:          rawString(d.Name, ""),
		SpeciesID:     rawID(d.SpeciesID),
		LastWateredAt: rawTime(d.LastWatered),
	}
}

// ownedFilter builds the (id, owner) filter. ok is false for malformed IDs,
// which can never match a stored plant.
func ownedFilter(id, ownerID string) (bson.M, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, false
	}
	filter := bson.M{"_id": oid}
	if ownerID != "" {
		filter["user_id"] = ownerID
	}
	return filter, true
}

func (r *PlantRepository) FindByOwner(ctx context.Context, ownerID string) ([]domain.Plant, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{"user_id": ownerID})
	if err != nil {
		return nil, fmt.Errorf("find plants: %w", err)
	}
	defer cur.Close(ctx)

	var docs []storedPlant
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode plants: %w", err)
	}

	out := make([]domain.Plant, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

// FindByID retrieves a plant by ID.
// When ownerID is non-empty, an additional filter by owner is applied.
func (r *PlantRepository) FindByID(ctx context.Context, id, ownerID string) (*domain.Plant, error) {
	filter, ok := ownedFilter(id, ownerID)
	if !ok {
		return nil, domain.ErrPlantNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc storedPlant
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPlantNotFound
		}
		return nil, fmt.Errorf("find plant: %w", err)
	}

	p := doc.toDomain()
	return &p, nil
}

func (r *PlantRepository) Create(ctx context.Context, p *domain.Plant) (*domain.Plant, error) {
	speciesID, err := primitive.ObjectIDFromHex(p.SpeciesID)
	if err != nil {
		return nil, domain.ErrSpeciesNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := plantDocument{
		OwnerID:     p.OwnerID,
		Name:        p.Name,
		SpeciesID:   speciesID,
		LastWatered: p.LastWateredAt.UTC(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert plant: %w", err)
	}

	created := domain.Plant{
		OwnerID:       doc.OwnerID,
		Name:          doc.Name,
		SpeciesID:     p.SpeciesID,
		LastWateredAt: doc.LastWatered,
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

// UpdateLastWatered is a no-op when (id, ownerID) matches nothing.
func (r *PlantRepository) UpdateLastWatered(ctx context.Context, id, ownerID string, at time.Time) error {
	filter, ok := ownedFilter(id, ownerID)
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"lastWatered": at.UTC()}})
	if err != nil {
		return fmt.Errorf("update plant: %w", err)
	}
	return nil
}

func (r *PlantRepository) Delete(ctx context.Context, id, ownerID string) (int64, error) {
	filter, ok := ownedFilter(id, ownerID)
	if !ok {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("delete plant: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *PlantRepository) CountBySpecies(ctx context.Context, speciesID string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(speciesID)
	if err != nil {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{"speciesId": oid})
	if err != nil {
		return 0, fmt.Errorf("count plants: %w", err)
	}
	return n, nil
}

// EnsureIndexes creates the indexes behind owner lookups and the species
// reference count.
func (r *PlantRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "speciesId", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
