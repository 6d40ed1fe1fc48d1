package store

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mnskies/fireworks-ingest/internal/domain"
)

const opTimeout = 5 * time.Second

// MongoStore implements EventStore and ReportStore on MongoDB.
type MongoStore struct {
	client  *mongo.Client
	events  *mongo.Collection
	reports *mongo.Collection
}

// eventDoc is the persisted shape of an event record. Mongo assigns the
// ObjectID; the domain sees its hex form.
type eventDoc struct {
	ID                         primitive.ObjectID `bson:"_id,omitempty"`
	domain.ExtractionCandidate `bson:",inline"`
	CreatedAt                  time.Time `bson:"created_at"`
}

type reportDoc struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Lat             float64            `bson:"lat"`
	Lng             float64            `bson:"lng"`
	Intensity       string             `bson:"intensity,omitempty"`
	Note            string             `bson:"note,omitempty"`
	ReportTimestamp int64              `bson:"report_timestamp"`
}

// NewMongoStore connects to MongoDB, verifies the connection, and ensures the
// indexes the pipeline queries against.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	db := client.Database(database)
	s := &MongoStore{
		client:  client,
		events:  db.Collection("events"),
		reports: db.Collection("live_reports"),
	}

	if err := s.createIndexes(ctx); err != nil {
		return nil, fmt.Errorf("create indexes: %w", err)
	}
	return s, nil
}

func (s *MongoStore) createIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := s.events.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "location_name", Value: 1}, {Key: "event_date", Value: 1}}},
		{Keys: bson.D{{Key: "name", Value: 1}}},
	})
	if err != nil {
		return err
	}

	_, err = s.reports.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "report_timestamp", Value: -1}},
	})
	return err
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) FindByName(ctx context.Context, name string) ([]domain.EventRecord, error) {
	return s.findEvents(ctx, bson.M{"name": name}, nil)
}

func (s *MongoStore) FindByLocationDate(ctx context.Context, location, date string) ([]domain.EventRecord, error) {
	return s.findEvents(ctx, bson.M{"location_name": location, "event_date": date}, nil)
}

func (s *MongoStore) ListByCreation(ctx context.Context) ([]domain.EventRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	return s.findEvents(ctx, bson.M{}, opts)
}

func (s *MongoStore) Insert(ctx context.Context, c domain.ExtractionCandidate) (domain.EventRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	doc := eventDoc{ExtractionCandidate: c, CreatedAt: domain.Now().UTC()}
	res, err := s.events.InsertOne(ctx, doc)
	if err != nil {
		return domain.EventRecord{}, fmt.Errorf("insert event: %w", err)
	}

	id, _ := res.InsertedID.(primitive.ObjectID)
	return domain.EventRecord{
		ID:                  id.Hex(),
		ExtractionCandidate: c,
		CreatedAt:           doc.CreatedAt,
	}, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid event id %q: %w", id, err)
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := s.events.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete event %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("delete event %s: not found", id)
	}
	return nil
}

func (s *MongoStore) ListVerified(ctx context.Context) ([]domain.EventRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "event_date", Value: 1}})
	return s.findEvents(ctx, bson.M{"verified": true}, opts)
}

func (s *MongoStore) ListUpcoming(ctx context.Context, from, to string) ([]domain.EventRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "event_date", Value: 1}})
	filter := bson.M{
		"verified":   true,
		"event_date": bson.M{"$gte": from, "$lte": to},
	}
	return s.findEvents(ctx, filter, opts)
}

func (s *MongoStore) Search(ctx context.Context, query string) ([]domain.EventRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "event_date", Value: 1}})
	re := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	filter := bson.M{
		"verified": true,
		"$or": bson.A{
			bson.M{"name": re},
			bson.M{"location_name": re},
			bson.M{"description": re},
		},
	}
	return s.findEvents(ctx, filter, opts)
}

func (s *MongoStore) findEvents(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.EventRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var cursor *mongo.Cursor
	var err error
	if opts != nil {
		cursor, err = s.events.Find(ctx, filter, opts)
	} else {
		cursor, err = s.events.Find(ctx, filter)
	}
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []eventDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}

	records := make([]domain.EventRecord, len(docs))
	for i, d := range docs {
		records[i] = domain.EventRecord{
			ID:                  d.ID.Hex(),
			ExtractionCandidate: d.ExtractionCandidate,
			CreatedAt:           d.CreatedAt,
		}
	}
	return records, nil
}

func (s *MongoStore) InsertReport(ctx context.Context, r domain.LiveReport) (domain.LiveReport, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	doc := reportDoc{
		Lat:             r.Lat,
		Lng:             r.Lng,
		Intensity:       r.Intensity,
		Note:            r.Note,
		ReportTimestamp: r.ReportTimestamp,
	}
	res, err := s.reports.InsertOne(ctx, doc)
	if err != nil {
		return domain.LiveReport{}, fmt.Errorf("insert report: %w", err)
	}

	id, _ := res.InsertedID.(primitive.ObjectID)
	r.ID = id.Hex()
	return r, nil
}

func (s *MongoStore) ListRecentReports(ctx context.Context, sinceMillis int64) ([]domain.LiveReport, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "report_timestamp", Value: -1}})
	cursor, err := s.reports.Find(ctx, bson.M{"report_timestamp": bson.M{"$gte": sinceMillis}}, opts)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []reportDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode reports: %w", err)
	}

	reports := make([]domain.LiveReport, len(docs))
	for i, d := range docs {
		reports[i] = domain.LiveReport{
			ID:              d.ID.Hex(),
			Lat:             d.Lat,
			Lng:             d.Lng,
			Intensity:       d.Intensity,
			Note:            d.Note,
			ReportTimestamp: d.ReportTimestamp,
		}
	}
	return reports, nil
}
