package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/newmedia/membership-api/internal/core/domain"
)

const collectionSessions = "sessions"

// SessionStore keeps sessions in a collection with a TTL index on expiresAt.
// The TTL monitor runs about once a minute, so Get also filters on expiry.
type SessionStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewSessionStore(db *mongo.Database) *SessionStore {
	return &SessionStore{coll: db.Collection(collectionSessions), now: time.Now}
}

type mongoSession struct {
	Key       string    `bson:"_id"`
	UserID    string    `bson:"userId"`
	Email     string    `bson:"email"`
	Role      string    `bson:"role"`
	FirstName string    `bson:"firstName,omitempty"`
	LastName  string    `bson:"lastName,omitempty"`
	CreatedAt time.Time `bson:"createdAt"`
	ExpiresAt time.Time `bson:"expiresAt"`
}

func (s *SessionStore) Save(ctx context.Context, session *domain.Session) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoSession{
		Key:       session.Key,
		UserID:    session.UserID,
		Email:     session.Email,
		Role:      session.Role,
		FirstName: session.FirstName,
		LastName:  session.LastName,
		CreatedAt: session.CreatedAt.UTC(),
		ExpiresAt: session.ExpiresAt.UTC(),
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return storeErr("insert session", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, key string) (*domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": key, "expiresAt": bson.M{"$gt": s.now().UTC()}}

	var doc mongoSession
	if err := s.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, storeErr("find session", err)
	}

	return &domain.Session{
		Key:       doc.Key,
		UserID:    doc.UserID,
		Email:     doc.Email,
		Role:      doc.Role,
		FirstName: doc.FirstName,
		LastName:  doc.LastName,
		CreatedAt: doc.CreatedAt,
		ExpiresAt: doc.ExpiresAt,
	}, nil
}

func (s *SessionStore) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return storeErr("delete session", err)
	}
	return nil
}

// EnsureIndexes installs the TTL index that removes sessions at expiresAt.
func (s *SessionStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expiresAt", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0).SetName("ttl_expires_at"),
	})
	if err != nil {
		return storeErr("create session indexes", err)
	}
	return nil
}
