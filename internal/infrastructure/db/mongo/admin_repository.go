package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/humanityclub/hco-backend/internal/core/domain"
)

const collectionAdmins = "admins"

// Field names match the documents written by the previous backend.
const (
	fieldName         = "name"
	fieldEmail        = "email"
	fieldUsername     = "username"
	fieldPassword     = "password"
	fieldRole         = "role"
	fieldRefreshToken = "refreshToken"
	fieldCreatedAt    = "createdAt"
	fieldUpdatedAt    = "updatedAt"
)

// publicProjection leaves out both credential fields.
var publicProjection = bson.M{fieldPassword: 0, fieldRefreshToken: 0}

type AdminRepository struct {
	col *mongo.Collection
	now func() time.Time
}

func NewAdminRepository(db *mongo.Database) *AdminRepository {
	return &AdminRepository{col: db.Collection(collectionAdmins), now: time.Now}
}

type mongoAdmin struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	Username     string             `bson:"username"`
	Password     string             `bson:"password,omitempty"`
	Role         string             `bson:"role"`
	RefreshToken string             `bson:"refreshToken,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

func fromDomain(a *domain.Admin) mongoAdmin {
	return mongoAdmin{
		Name:         a.Name,
		Email:        domain.NormalizeEmail(a.Email),
		Username:     a.Username,
		Password:     a.PasswordHash,
		Role:         string(a.Role),
		RefreshToken: a.RefreshToken,
		CreatedAt:    a.CreatedAt.UTC(),
		UpdatedAt:    a.UpdatedAt.UTC(),
	}
}

func (m mongoAdmin) toDomain() *domain.Admin {
	return &domain.Admin{
		ID:           m.ID.Hex(),
		Name:         m.Name,
		Email:        m.Email,
		Username:     m.Username,
		PasswordHash: m.Password,
		Role:         domain.Role(m.Role),
		RefreshToken: m.RefreshToken,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// identifierFilter matches the email case-insensitively or the exact username.
// Usernames cannot contain "@", so an identifier that does is matched against
// the email alone and at most one document qualifies.
func identifierFilter(identifier string) bson.M {
	if strings.Contains(identifier, "@") {
		return bson.M{fieldEmail: domain.NormalizeEmail(identifier)}
	}
	return bson.M{"$or": bson.A{
		bson.M{fieldEmail: domain.NormalizeEmail(identifier)},
		bson.M{fieldUsername: identifier},
	}}
}

// idFilter parses a hex id. Malformed ids cannot exist, so they are reported
// as not found.
func idFilter(id string) (bson.M, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	return bson.M{"_id": oid}, nil
}

// Create inserts a new admin document.
func (r *AdminRepository) Create(ctx context.Context, a *domain.Admin) (*domain.Admin, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := fromDomain(a)
	doc.RefreshToken = ""
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.Wrap(domain.ErrConflict, err)
		}
		return nil, fmt.Errorf("insert admin: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("insert admin: unexpected id type %T", res.InsertedID)
	}
	doc.ID = oid
	return doc.toDomain(), nil
}

// FindByIdentifier returns the admin with its password hash for credential checks.
func (r *AdminRepository) FindByIdentifier(ctx context.Context, identifier string) (*domain.Admin, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOne().SetProjection(bson.M{fieldRefreshToken: 0})
	return r.findOne(ctx, identifierFilter(identifier), opts)
}

// FindByID returns the admin without password hash or refresh token.
func (r *AdminRepository) FindByID(ctx context.Context, id string) (*domain.Admin, error) {
	filter, err := idFilter(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.findOne(ctx, filter, options.FindOne().SetProjection(publicProjection))
}

func (r *AdminRepository) findOne(ctx context.Context, filter bson.M, opts *options.FindOneOptions) (*domain.Admin, error) {
	var m mongoAdmin
	if err := r.col.FindOne(ctx, filter, opts).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find admin: %w", err)
	}
	return m.toDomain(), nil
}

func (r *AdminRepository) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"$or": bson.A{
		bson.M{fieldEmail: domain.NormalizeEmail(email)},
		bson.M{fieldUsername: username},
	}}
	n, err := r.col.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count admins: %w", err)
	}
	return n > 0, nil
}

// List returns every admin, oldest first, without credential fields.
func (r *AdminRepository) List(ctx context.Context) ([]*domain.Admin, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetProjection(publicProjection).
		SetSort(bson.D{{Key: fieldCreatedAt, Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoAdmin
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode admins: %w", err)
	}

	out := make([]*domain.Admin, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// FindRefreshToken reads only the stored refresh token; empty means no session.
func (r *AdminRepository) FindRefreshToken(ctx context.Context, id string) (string, error) {
	filter, err := idFilter(id)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var m mongoAdmin
	opts := options.FindOne().SetProjection(bson.M{fieldRefreshToken: 1})
	if err := r.col.FindOne(ctx, filter, opts).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("find refresh token: %w", err)
	}
	return m.RefreshToken, nil
}

// SetRefreshToken overwrites the single refresh token field.
func (r *AdminRepository) SetRefreshToken(ctx context.Context, id, token string) error {
	return r.update(ctx, id, bson.M{
		"$set": bson.M{fieldRefreshToken: token, fieldUpdatedAt: r.now().UTC()},
	})
}

// ClearRefreshToken removes the refresh token field, ending the session.
func (r *AdminRepository) ClearRefreshToken(ctx context.Context, id string) error {
	return r.update(ctx, id, bson.M{
		"$unset": bson.M{fieldRefreshToken: ""},
		"$set":   bson.M{fieldUpdatedAt: r.now().UTC()},
	})
}

// RotateRefreshToken swaps current for next in a single conditional update.
func (r *AdminRepository) RotateRefreshToken(ctx context.Context, id, current, next string) (bool, error) {
	filter, err := idFilter(id)
	if err != nil {
		return false, nil
	}
	if current == "" {
		return false, nil
	}
	filter[fieldRefreshToken] = current

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, filter, bson.M{
		"$set": bson.M{fieldRefreshToken: next, fieldUpdatedAt: r.now().UTC()},
	})
	if err != nil {
		return false, fmt.Errorf("rotate refresh token: %w", err)
	}
	return res.MatchedCount == 1, nil
}

// UpdatePassword stores a new hash and revokes the session.
func (r *AdminRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.update(ctx, id, bson.M{
		"$set":   bson.M{fieldPassword: passwordHash, fieldUpdatedAt: r.now().UTC()},
		"$unset": bson.M{fieldRefreshToken: ""},
	})
}

func (r *AdminRepository) update(ctx context.Context, id string, update bson.M) error {
	filter, err := idFilter(id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update admin: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// EnsureIndexes creates the unique indexes on the admins collection.
func (r *AdminRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: fieldEmail, Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: fieldUsername, Value: 1}}, Options: options.Index().SetUnique(true)},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
