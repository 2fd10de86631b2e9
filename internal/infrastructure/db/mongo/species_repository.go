package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/plantpal/plantpal-api/internal/core/domain"
)

const speciesCollection = "species"

// SpeciesRepository implements ports.SpeciesRepository using MongoDB.
type SpeciesRepository struct {
	coll *mongo.Collection
}

func NewSpeciesRepository(db *mongo.Database) *SpeciesRepository {
	return &SpeciesRepository{coll: db.Collection(speciesCollection)}
}

// speciesDocument is the stored shape. Every field is optional and may hold
// any BSON type; toDomain fills in defaults.
type speciesDocument struct {
	ID               bson.RawValue `bson:"_id"`
	Name             bson.RawValue `bson:"name"`
	WateringInterval bson.RawValue `bson:"wateringInterval"`
	ImageURL         bson.RawValue `bson:"imageUrl"`
	Description      bson.RawValue `bson:"description"`
	FunFact          bson.RawValue `bson:"funFact"`
	Fertilizer       bson.RawValue `bson:"fertilizer"`
	LightLevel       bson.RawValue `bson:"lightLevel"`
}

// toDomain is the single place species defaults are applied. Missing, null,
// empty and wrongly typed values are treated alike.
func (d speciesDocument) toDomain() domain.Species {
	return domain.Species{
		ID:                   rawID(d.ID),
		Name:                 rawString(d.Name, ""),
		WateringIntervalDays: rawInt(d.WateringInterval, 0),
		ImageURL:             rawString(d.ImageURL, ""),
		Description:          rawString(d.Description, domain.DefaultSpeciesDescription),
		FunFact:              rawString(d.FunFact, domain.DefaultSpeciesFunFact),
		Fertilizer:           rawString(d.Fertilizer, domain.DefaultSpeciesFertilizer),
		LightLevel:           rawInt(d.LightLevel, domain.DefaultSpeciesLightLevel),
	}
}

func (r *SpeciesRepository) FindAll(ctx context.Context) ([]domain.Species, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find species: %w", err)
	}
	defer cur.Close(ctx)

	var docs []speciesDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode species: %w", err)
	}

	out := make([]domain.Species, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

func (r *SpeciesRepository) FindByID(ctx context.Context, id string) (*domain.Species, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrSpeciesNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc speciesDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSpeciesNotFound
		}
		return nil, fmt.Errorf("find species: %w", err)
	}

	s := doc.toDomain()
	return &s, nil
}

// Create stores the species fields exactly as given.
func (r *SpeciesRepository) Create(ctx context.Context, s *domain.Species) (*domain.Species, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"name":             s.Name,
		"wateringInterval": s.WateringIntervalDays,
		"imageUrl":         s.ImageURL,
		"description":      s.Description,
		"funFact":          s.FunFact,
		"fertilizer":       s.Fertilizer,
		"lightLevel":       s.LightLevel,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert species: %w", err)
	}

	created := *s
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

func (r *SpeciesRepository) Delete(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, fmt.Errorf("delete species: %w", err)
	}
	return res.DeletedCount == 1, nil
}
