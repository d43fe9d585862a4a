package mongo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/opsman/core/execution"
)

const (
	collectionName = "command_executions"

	// Named explicitly so duplicate-key errors can be attributed to the
	// kind constraint rather than the _id index.
	kindInProgressIndexName = "kind_in_progress_unique"
)

// record is the BSON shape of an execution document. The id is stored as
// the canonical uuid string; command output is stored as a native BSON
// document wrapping the original JSON value.
type record struct {
	ID            string     `bson:"_id"`
	Kind          string     `bson:"kind"`
	Status        string     `bson:"status"`
	ErrorMessage  *string    `bson:"error_message,omitempty"`
	CommandOutput bson.Raw   `bson:"command_output,omitempty"`
	StartedAt     time.Time  `bson:"started_at"`
	UpdatedAt     *time.Time `bson:"updated_at,omitempty"`
	CompletedAt   *time.Time `bson:"completed_at,omitempty"`
}

// Store persists execution records in the command_executions collection.
// The partial unique index on kind where status is in_progress enforces
// the one-in-progress-per-kind constraint server-side, matching the
// PostgreSQL store's behavior under concurrent starts.
type Store struct {
	collection *mongo.Collection
}

// NewStore creates a store on db's command_executions collection. Call
// EnsureIndexes before first use.
func NewStore(db *mongo.Database) *Store {
	return &Store{collection: db.Collection(collectionName)}
}

// EnsureIndexes creates the kind, status, and updated_at indexes and the
// partial unique index backing the duplicate-start guard. Idempotent.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "kind", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "updated_at", Value: 1}}},
		{
			Keys: bson.D{{Key: "kind", Value: 1}},
			Options: options.Index().
				SetName(kindInProgressIndexName).
				SetUnique(true).
				SetPartialFilterExpression(bson.D{{Key: "status", Value: string(execution.StatusInProgress)}}),
		},
	}

	if _, err := s.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("ensure execution indexes: %w", err)
	}

	return nil
}

// Create inserts a new in-progress document.
func (s *Store) Create(ctx context.Context, id uuid.UUID, kind execution.Kind) error {
	doc := record{
		ID:        id.String(),
		Kind:      string(kind),
		Status:    string(execution.StatusInProgress),
		StartedAt: time.Now().UTC(),
	}

	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			if strings.Contains(err.Error(), kindInProgressIndexName) {
				return fmt.Errorf("kind %q: %w", kind, execution.ErrKindInProgress)
			}
			return fmt.Errorf("execution %s: %w", id, execution.ErrAlreadyExists)
		}
		return fmt.Errorf("create execution: %w", err)
	}

	return nil
}

// Get returns the record for the given id.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*execution.Execution, error) {
	var doc record
	err := s.collection.FindOne(ctx, bson.D{{Key: "_id", Value: id.String()}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("execution %s: %w", id, execution.ErrNotFound)
		}
		return nil, fmt.Errorf("get execution: %w", err)
	}

	return doc.toExecution()
}

// AnyInProgress reports whether any execution of the kind is in progress.
func (s *Store) AnyInProgress(ctx context.Context, kind execution.Kind) (bool, error) {
	filter := bson.D{
		{Key: "kind", Value: string(kind)},
		{Key: "status", Value: string(execution.StatusInProgress)},
	}

	count, err := s.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check in-progress executions: %w", err)
	}

	return count > 0, nil
}

// Heartbeat refreshes updated_at on a non-terminal document.
func (s *Store) Heartbeat(ctx context.Context, id uuid.UUID) error {
	filter := bson.D{
		{Key: "_id", Value: id.String()},
		{Key: "status", Value: string(execution.StatusInProgress)},
	}
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "updated_at", Value: time.Now().UTC()}}}}

	res, err := s.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("heartbeat execution: %w", err)
	}
	if res.MatchedCount == 0 {
		return s.requireExists(ctx, id)
	}

	return nil
}

// Succeed transitions a document to the succeeded status. A document
// already terminal is left untouched.
func (s *Store) Succeed(ctx context.Context, id uuid.UUID, output json.RawMessage) error {
	stored, err := outputToBSON(output)
	if err != nil {
		return fmt.Errorf("encode execution output: %w", err)
	}

	filter := bson.D{
		{Key: "_id", Value: id.String()},
		{Key: "status", Value: string(execution.StatusInProgress)},
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: string(execution.StatusSucceeded)},
		{Key: "command_output", Value: stored},
		{Key: "completed_at", Value: time.Now().UTC()},
	}}}

	res, err := s.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("record execution success: %w", err)
	}
	if res.MatchedCount == 0 {
		return s.requireExists(ctx, id)
	}

	return nil
}

// Fail transitions a document to the failed status. A document already
// terminal is left untouched.
func (s *Store) Fail(ctx context.Context, id uuid.UUID, errorMessage string) error {
	filter := bson.D{
		{Key: "_id", Value: id.String()},
		{Key: "status", Value: string(execution.StatusInProgress)},
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: string(execution.StatusFailed)},
		{Key: "error_message", Value: errorMessage},
		{Key: "completed_at", Value: time.Now().UTC()},
	}}}

	res, err := s.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("record execution failure: %w", err)
	}
	if res.MatchedCount == 0 {
		return s.requireExists(ctx, id)
	}

	return nil
}

// FailStale reclassifies inactive in-progress executions of the kind as
// failed with the fixed staleness diagnostic.
func (s *Store) FailStale(ctx context.Context, kind execution.Kind, maxInactive time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-maxInactive)

	// Last activity is updated_at when present, started_at otherwise.
	filter := bson.D{
		{Key: "kind", Value: string(kind)},
		{Key: "status", Value: string(execution.StatusInProgress)},
		{Key: "$or", Value: bson.A{
			bson.D{{Key: "updated_at", Value: bson.D{{Key: "$lt", Value: cutoff}}}},
			bson.D{
				{Key: "updated_at", Value: nil},
				{Key: "started_at", Value: bson.D{{Key: "$lt", Value: cutoff}}},
			},
		}},
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: string(execution.StatusFailed)},
		{Key: "error_message", Value: execution.StaleExecutionMessage},
		{Key: "completed_at", Value: time.Now().UTC()},
	}}}

	res, err := s.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("fail stale executions: %w", err)
	}

	return res.ModifiedCount, nil
}

// requireExists distinguishes "document gone" from "document already
// terminal" after a zero-match guarded update.
func (s *Store) requireExists(ctx context.Context, id uuid.UUID) error {
	count, err := s.collection.CountDocuments(ctx,
		bson.D{{Key: "_id", Value: id.String()}},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return fmt.Errorf("check execution existence: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("execution %s: %w", id, execution.ErrNotFound)
	}

	return nil
}

func (r record) toExecution() (*execution.Execution, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, fmt.Errorf("parse execution id: %w", err)
	}

	output, err := outputFromBSON(r.CommandOutput)
	if err != nil {
		return nil, fmt.Errorf("decode execution output: %w", err)
	}

	return &execution.Execution{
		ID:            id,
		Kind:          execution.Kind(r.Kind),
		Status:        execution.Status(r.Status),
		ErrorMessage:  r.ErrorMessage,
		CommandOutput: output,
		StartedAt:     r.StartedAt,
		UpdatedAt:     r.UpdatedAt,
		CompletedAt:   r.CompletedAt,
	}, nil
}

// outputToBSON converts the JSON command output into a BSON document.
// The value is wrapped in a single-field document because top-level BSON
// must be a document while command output may be any JSON value.
func outputToBSON(output json.RawMessage) (bson.Raw, error) {
	wrapped := make([]byte, 0, len(output)+len(`{"value":}`))
	wrapped = append(wrapped, `{"value":`...)
	wrapped = append(wrapped, output...)
	wrapped = append(wrapped, '}')

	var doc bson.Raw
	if err := bson.UnmarshalExtJSON(wrapped, false, &doc); err != nil {
		return nil, err
	}

	return doc, nil
}

// outputFromBSON unwraps a stored output document back into JSON.
func outputFromBSON(doc bson.Raw) (json.RawMessage, error) {
	if len(doc) == 0 {
		return nil, nil
	}

	data, err := bson.MarshalExtJSON(doc, false, false)
	if err != nil {
		return nil, err
	}

	var wrapper struct {
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, err
	}

	return wrapper.Value, nil
}
