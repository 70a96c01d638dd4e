package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"wedding-invitation/internal/models"
)

const (
	DefaultMongoDatabase = "wedding-invitation"

	rsvpCollection = "rsvps"
	phoneIndexName = "phone_unique"
	wishCollection = "wishes"
)

type MongoConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// MongoStore keeps RSVPs and wishes in two collections. Phone uniqueness is
// enforced by a unique index on rsvps.phone.
type MongoStore struct {
	client *mongo.Client
	rsvps  *mongo.Collection
	wishes *mongo.Collection
	log    zerolog.Logger
}

var _ Store = (*MongoStore)(nil)

type rsvpDocument struct {
	ID         primitive.ObjectID `bson:"_id"`
	Name       string             `bson:"name"`
	Phone      string             `bson:"phone"`
	Email      string             `bson:"email"`
	Attendance string             `bson:"attendance"`
	Guests     int                `bson:"guests"`
	Allergies  string             `bson:"allergies"`
	Message    string             `bson:"message"`
	CreatedAt  time.Time          `bson:"createdAt"`
}

func (d rsvpDocument) model() models.RSVP {
	return models.RSVP{
		ID:         d.ID.Hex(),
		Name:       d.Name,
		Phone:      d.Phone,
		Email:      d.Email,
		Attendance: models.Attendance(d.Attendance),
		Guests:     d.Guests,
		Allergies:  d.Allergies,
		Message:    d.Message,
		CreatedAt:  d.CreatedAt,
	}
}

type wishDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	Name      string             `bson:"name"`
	Message   string             `bson:"message"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d wishDocument) model() models.Wish {
	return models.Wish{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Message:   d.Message,
		CreatedAt: d.CreatedAt,
	}
}

// NewMongoStore connects, pings and ensures indexes. The returned store owns
// the client until Close.
func NewMongoStore(ctx context.Context, cfg MongoConfig, log zerolog.Logger) (*MongoStore, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	dbName := cfg.Database
	if dbName == "" {
		dbName = databaseFromURI(cfg.URI)
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.Timeout).
		SetServerSelectionTimeout(cfg.Timeout))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := client.Database(dbName)
	s := &MongoStore{
		client: client,
		rsvps:  db.Collection(rsvpCollection),
		wishes: db.Collection(wishCollection),
		log:    log,
	}
	if err := s.ensureIndexes(connectCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	log.Info().Str("database", dbName).Msg("connected to mongodb")
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.rsvps.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "phone", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(phoneIndexName),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("createdAt_desc"),
		},
	})
	if err != nil {
		return rsvpIndexError(err)
	}

	_, err = s.wishes.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("createdAt_desc"),
	})
	if err != nil {
		return fmt.Errorf("failed to create wish indexes: %w", err)
	}
	return nil
}

// rsvpIndexError explains a failed index build. A duplicate key here means
// rsvps written before the unique index existed share a phone number.
func rsvpIndexError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("failed to create unique index %q: rsvps already contain duplicate phone numbers, remove the duplicates and restart: %w", phoneIndexName, err)
	}
	return fmt.Errorf("failed to create rsvp indexes: %w", err)
}

func (s *MongoStore) InsertRSVP(ctx context.Context, rsvp *models.RSVP) error {
	doc := rsvpDocument{
		ID:         primitive.NewObjectID(),
		Name:       rsvp.Name,
		Phone:      rsvp.Phone,
		Email:      rsvp.Email,
		Attendance: string(rsvp.Attendance),
		Guests:     rsvp.Guests,
		Allergies:  rsvp.Allergies,
		Message:    rsvp.Message,
		CreatedAt:  rsvp.CreatedAt,
	}
	if _, err := s.rsvps.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicatePhone
		}
		return fmt.Errorf("failed to insert rsvp: %w", err)
	}
	rsvp.ID = doc.ID.Hex()
	return nil
}

func (s *MongoStore) ListRSVPs(ctx context.Context, attendance models.Attendance) ([]models.RSVP, error) {
	filter := bson.D{}
	if attendance != "" {
		filter = bson.D{{Key: "attendance", Value: string(attendance)}}
	}

	cursor, err := s.rsvps.Find(ctx, filter, options.Find().SetSort(newestFirst()))
	if err != nil {
		return nil, fmt.Errorf("failed to find rsvps: %w", err)
	}
	var docs []rsvpDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode rsvps: %w", err)
	}

	result := make([]models.RSVP, 0, len(docs))
	for _, d := range docs {
		result = append(result, d.model())
	}
	return result, nil
}

func (s *MongoStore) GetRSVP(ctx context.Context, id string) (*models.RSVP, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var doc rsvpDocument
	if err := s.rsvps.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get rsvp: %w", err)
	}
	r := doc.model()
	return &r, nil
}

func (s *MongoStore) ReplaceRSVP(ctx context.Context, rsvp *models.RSVP) (*models.RSVP, error) {
	oid, err := primitive.ObjectIDFromHex(rsvp.ID)
	if err != nil {
		return nil, ErrNotFound
	}

	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "name", Value: rsvp.Name},
		{Key: "phone", Value: rsvp.Phone},
		{Key: "email", Value: rsvp.Email},
		{Key: "attendance", Value: string(rsvp.Attendance)},
		{Key: "guests", Value: rsvp.Guests},
		{Key: "allergies", Value: rsvp.Allergies},
		{Key: "message", Value: rsvp.Message},
	}}}

	var doc rsvpDocument
	err = s.rsvps.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, ErrNotFound
		case mongo.IsDuplicateKeyError(err):
			return nil, ErrDuplicatePhone
		}
		return nil, fmt.Errorf("failed to update rsvp: %w", err)
	}
	r := doc.model()
	return &r, nil
}

func (s *MongoStore) DeleteRSVP(ctx context.Context, id string) (*models.RSVP, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var doc rsvpDocument
	if err := s.rsvps.FindOneAndDelete(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to delete rsvp: %w", err)
	}
	r := doc.model()
	return &r, nil
}

func (s *MongoStore) RSVPStats(ctx context.Context) (models.Stats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$attendance"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "guests", Value: bson.D{{Key: "$sum", Value: "$guests"}}},
		}}},
	}

	var stats models.Stats
	cursor, err := s.rsvps.Aggregate(ctx, pipeline)
	if err != nil {
		return stats, fmt.Errorf("failed to aggregate rsvps: %w", err)
	}

	var groups []struct {
		Attendance string `bson:"_id"`
		Count      int    `bson:"count"`
		Guests     int    `bson:"guests"`
	}
	if err := cursor.All(ctx, &groups); err != nil {
		return stats, fmt.Errorf("failed to decode rsvp stats: %w", err)
	}
	for _, g := range groups {
		stats.Add(models.Attendance(g.Attendance), g.Count, g.Guests)
	}
	return stats, nil
}

func (s *MongoStore) InsertWish(ctx context.Context, wish *models.Wish) error {
	doc := wishDocument{
		ID:        primitive.NewObjectID(),
		Name:      wish.Name,
		Message:   wish.Message,
		CreatedAt: wish.CreatedAt,
	}
	if _, err := s.wishes.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert wish: %w", err)
	}
	wish.ID = doc.ID.Hex()
	return nil
}

func (s *MongoStore) ListWishes(ctx context.Context) ([]models.Wish, error) {
	cursor, err := s.wishes.Find(ctx, bson.D{}, options.Find().SetSort(newestFirst()))
	if err != nil {
		return nil, fmt.Errorf("failed to find wishes: %w", err)
	}
	var docs []wishDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode wishes: %w", err)
	}

	result := make([]models.Wish, 0, len(docs))
	for _, d := range docs {
		result = append(result, d.model())
	}
	return result, nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoStore) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from mongodb: %w", err)
	}
	s.log.Info().Msg("mongodb connection closed")
	return nil
}

// newestFirst sorts by creation time, breaking ties by ObjectID which grows
// with insertion order.
func newestFirst() bson.D {
	return bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
}

// databaseFromURI returns the database named in the URI path, as in
// mongodb://host:27017/wedding-invitation.
func databaseFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return DefaultMongoDatabase
	}
	if name := strings.Trim(u.Path, "/"); name != "" {
		return name
	}
	return DefaultMongoDatabase
}
