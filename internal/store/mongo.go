package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/masiqhakaze/website/internal/models"
)

var _ Backend = (*MongoStore)(nil)

// MongoStore keeps the auth and posts collections in MongoDB. Unique
// inserts claim the title in a post_titles collection keyed by _id.
type MongoStore struct {
	client *mongo.Client
	auth   *mongo.Collection
	posts  *mongo.Collection
	titles *mongo.Collection
}

// mongoPost is the on-wire shape of a post document.
type mongoPost struct {
	ID    primitive.ObjectID `bson:"_id,omitempty"`
	Title string             `bson:"title"`
	Body  string             `bson:"body"`
	Date  string             `bson:"date"`
}

func NewMongoStore(client *mongo.Client, db *mongo.Database) *MongoStore {
	return &MongoStore{
		client: client,
		auth:   db.Collection("auth"),
		posts:  db.Collection("posts"),
		titles: db.Collection("post_titles"),
	}
}

func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

func (s *MongoStore) GetCredential(ctx context.Context) (*models.Credential, error) {
	var raw bson.M
	filter := bson.M{"hashed_password": bson.M{"$exists": true}}
	err := s.auth.FindOne(ctx, filter).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo get credential: %w", err)
	}
	hashed, _ := raw["hashed_password"].(string)
	if hashed == "" {
		return nil, ErrNotFound
	}
	return &models.Credential{HashedPassword: hashed}, nil
}

func (s *MongoStore) PutCredential(ctx context.Context, hashedPassword string) error {
	_, err := s.auth.UpdateOne(ctx,
		bson.M{},
		bson.M{"$set": bson.M{"hashed_password": hashedPassword}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("mongo put credential: %w", err)
	}
	return nil
}

func (s *MongoStore) InsertPost(ctx context.Context, p *models.Post) error {
	res, err := s.posts.InsertOne(ctx, mongoPost{Title: p.Title, Body: p.Body, Date: p.Date})
	if err != nil {
		return fmt.Errorf("mongo insert post: %w", err)
	}
	p.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

func (s *MongoStore) InsertPostUnique(ctx context.Context, p *models.Post) error {
	n, err := s.posts.CountDocuments(ctx, bson.M{"title": p.Title}, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("mongo count posts: %w", err)
	}
	if n > 0 {
		return ErrDuplicate
	}
	if _, err := s.titles.InsertOne(ctx, bson.M{"_id": p.Title}); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("mongo claim title: %w", err)
	}
	if err := s.InsertPost(ctx, p); err != nil {
		if _, relErr := s.titles.DeleteOne(ctx, bson.M{"_id": p.Title}); relErr != nil {
			return errors.Join(err, fmt.Errorf("mongo release title: %w", relErr))
		}
		return err
	}
	return nil
}

func (s *MongoStore) ListPosts(ctx context.Context) ([]models.Post, error) {
	return s.findPosts(ctx, bson.M{})
}

func (s *MongoStore) FindPost(ctx context.Context, title string) (*models.Post, error) {
	var doc mongoPost
	err := s.posts.FindOne(ctx, bson.M{"title": title}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo find post: %w", err)
	}
	p := doc.toModel()
	return &p, nil
}

func (s *MongoStore) DeletePosts(ctx context.Context, title string) (int, error) {
	res, err := s.posts.DeleteMany(ctx, bson.M{"title": title})
	if err != nil {
		return 0, fmt.Errorf("mongo delete posts: %w", err)
	}
	if _, err := s.titles.DeleteOne(ctx, bson.M{"_id": title}); err != nil {
		return int(res.DeletedCount), fmt.Errorf("mongo release title: %w", err)
	}
	return int(res.DeletedCount), nil
}

func (s *MongoStore) findPosts(ctx context.Context, filter bson.M) ([]models.Post, error) {
	cur, err := s.posts.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("mongo find posts: %w", err)
	}
	defer cur.Close(ctx)

	var posts []models.Post
	for cur.Next(ctx) {
		var doc mongoPost
		if err := cur.Decode(&doc); err != nil {
			continue
		}
		posts = append(posts, doc.toModel())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("mongo cursor: %w", err)
	}
	return posts, nil
}

func (d mongoPost) toModel() models.Post {
	return models.Post{ID: d.ID.Hex(), Title: d.Title, Body: d.Body, Date: d.Date}
}
