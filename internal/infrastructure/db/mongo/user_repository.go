package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/newmedia/membership-api/internal/core/domain"
	"github.com/newmedia/membership-api/internal/pkg/identifier"
)

const collectionUsers = "users"

// UserRepository implements ports.UserRepository. Email uniqueness is
// enforced on the lowercased copy in emailLower.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(collectionUsers)}
}

type mongoUser struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	FirstName        string             `bson:"firstName"`
	LastName         string             `bson:"lastName"`
	Email            string             `bson:"email"`
	EmailLower       string             `bson:"emailLower"`
	AccountUsername  string             `bson:"accountUsername"`
	PasswordHash     string             `bson:"passwordHash,omitempty"`
	Role             string             `bson:"role"`
	StreetAddress    string             `bson:"streetAddress,omitempty"`
	Town             string             `bson:"town,omitempty"`
	State            string             `bson:"state,omitempty"`
	Pincode          string             `bson:"pincode,omitempty"`
	Phone            string             `bson:"phone,omitempty"`
	NomineeName      string             `bson:"nomineeName,omitempty"`
	SponsorID        string             `bson:"sponsorId,omitempty"`
	VigilanceOfficer string             `bson:"vigilanceOfficer,omitempty"`
	CreatedAt        time.Time          `bson:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt"`
}

func fromDomainUser(u *domain.User) mongoUser {
	role := u.Role
	if role == "" {
		role = domain.RoleUser
	}
	return mongoUser{
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		Email:            u.Email,
		EmailLower:       identifier.Email(u.Email),
		AccountUsername:  identifier.Username(u.AccountUsername),
		PasswordHash:     u.PasswordHash,
		Role:             role,
		StreetAddress:    u.StreetAddress,
		Town:             u.Town,
		State:            u.State,
		Pincode:          u.Pincode,
		Phone:            u.Phone,
		NomineeName:      u.NomineeName,
		SponsorID:        u.SponsorID,
		VigilanceOfficer: u.VigilanceOfficer,
		CreatedAt:        u.CreatedAt.UTC(),
		UpdatedAt:        u.UpdatedAt.UTC(),
	}
}

func (m mongoUser) toDomain() *domain.User {
	role := m.Role
	if role == "" {
		role = domain.RoleUser
	}
	return &domain.User{
		ID:               m.ID.Hex(),
		FirstName:        m.FirstName,
		LastName:         m.LastName,
		Email:            m.Email,
		AccountUsername:  m.AccountUsername,
		PasswordHash:     m.PasswordHash,
		Role:             role,
		StreetAddress:    m.StreetAddress,
		Town:             m.Town,
		State:            m.State,
		Pincode:          m.Pincode,
		Phone:            m.Phone,
		NomineeName:      m.NomineeName,
		SponsorID:        m.SponsorID,
		VigilanceOfficer: m.VigilanceOfficer,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// identifierFilter matches the email case-insensitively or the username exactly.
func identifierFilter(id string) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"emailLower": identifier.Email(id)},
		bson.M{"accountUsername": identifier.Username(id)},
	}}
}

// Create inserts a new user. The unique indexes from EnsureIndexes make the
// insert itself the authoritative duplicate check.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := fromDomainUser(user)
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, storeErr("insert user", err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByIdentifier(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, identifierFilter(id))
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, storeErr("find user", err)
	}
	return mu.toDomain(), nil
}

// List returns every user, oldest first, without password hashes.
func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetProjection(bson.M{"passwordHash": 0})

	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, storeErr("list users", err)
	}
	defer cur.Close(ctx)

	var docs []mongoUser
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storeErr("decode users", err)
	}

	users := make([]*domain.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.toDomain())
	}
	return users, nil
}

// EnsureIndexes creates the uniqueness constraints on the users collection.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "emailLower", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_email_lower"),
		},
		{
			Keys:    bson.D{{Key: "accountUsername", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_account_username"),
		},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return storeErr("create user indexes", err)
	}
	return nil
}
