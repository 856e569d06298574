package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"travel-review-service/internal/apperror"
	"travel-review-service/internal/model"
)

// MongoReviewRepository is the MongoDB review store. Each review is one document
// with its comments embedded.
type MongoReviewRepository struct {
	coll *mongo.Collection
}

var _ ReviewRepository = (*MongoReviewRepository)(nil)

func NewMongoReviewRepository(coll *mongo.Collection) *MongoReviewRepository {
	return &MongoReviewRepository{coll: coll}
}

type reviewDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"Name"`
	Location    string             `bson:"location"`
	Purpose     string             `bson:"purpose"`
	Budget      looseString        `bson:"budget"`
	Transport   string             `bson:"transport"`
	Text        string             `bson:"review"`
	Images      []string           `bson:"images"`
	Rating      float64            `bson:"rating"`
	RatingCount int                `bson:"rating_count"`
	Comments    []commentDocument  `bson:"comments"`
	CreatedAt   time.Time          `bson:"created_at"`
}

// looseString decodes a BSON string or number into text. Older documents
// kept whatever type the client sent for budget.
type looseString string

func (s *looseString) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.String:
		*s = looseString(rv.StringValue())
	case bsontype.Int32:
		*s = looseString(strconv.FormatInt(int64(rv.Int32()), 10))
	case bsontype.Int64:
		*s = looseString(strconv.FormatInt(rv.Int64(), 10))
	case bsontype.Double:
		*s = looseString(strconv.FormatFloat(rv.Double(), 'f', -1, 64))
	case bsontype.Null, bsontype.Undefined:
		*s = ""
	default:
		return fmt.Errorf("cannot decode BSON %s into a string", t)
	}
	return nil
}

type commentDocument struct {
	UserEmail string `bson:"user_email"`
	Comment   string `bson:"comment"`
}

func (r *MongoReviewRepository) Insert(ctx context.Context, in model.NewReview) (string, error) {
	images := in.Images
	if images == nil {
		images = []string{}
	}
	doc := reviewDocument{
		Name:      in.Name,
		Location:  in.Location,
		Purpose:   in.Purpose,
		Budget:    looseString(in.Budget),
		Transport: in.Transport,
		Text:      in.Text,
		Images:    images,
		Comments:  []commentDocument{},
		CreatedAt: time.Now().UTC(),
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return "", apperror.Internal("insert review", fmt.Errorf("MongoReviewRepository.Insert: %w", err))
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", apperror.Internal("insert review", fmt.Errorf("MongoReviewRepository.Insert: unexpected id type %T", res.InsertedID))
	}
	return oid.Hex(), nil
}

// List sorts newest by _id, whose leading bytes are the creation time.
func (r *MongoReviewRepository) List(ctx context.Context, f model.ReviewFilter) ([]model.Review, error) {
	query := bson.M{}
	if f.Location != "" {
		query["location"] = f.Location
	}
	if f.Purpose != "" {
		query["purpose"] = f.Purpose
	}
	if f.Budget != "" {
		query["budget"] = budgetQuery(f.Budget)
	}
	if f.Transport != "" {
		query["transport"] = f.Transport
	}

	opts := options.Find()
	switch f.Sort {
	case model.SortNewest:
		opts.SetSort(bson.D{{Key: "_id", Value: -1}})
	case model.SortRating:
		opts.SetSort(bson.D{{Key: "rating", Value: -1}, {Key: "_id", Value: -1}})
	}

	cur, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, apperror.Internal("list reviews", fmt.Errorf("MongoReviewRepository.List: %w", err))
	}
	var docs []reviewDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, apperror.Internal("list reviews", fmt.Errorf("MongoReviewRepository.List decode: %w", err))
	}

	reviews := make([]model.Review, 0, len(docs))
	for _, d := range docs {
		reviews = append(reviews, d.toModel())
	}
	return reviews, nil
}

// budgetQuery also matches documents that stored a numeric budget.
func budgetQuery(budget string) interface{} {
	n, err := strconv.ParseFloat(budget, 64)
	if err != nil {
		return budget
	}
	return bson.M{"$in": bson.A{budget, n}}
}

// FoldRating runs the whole read-modify-write on the server as one
// findAndModify with a pipeline update. Both $set expressions see the
// pre-update document, so rating uses the old rating_count.
func (r *MongoReviewRepository) FoldRating(ctx context.Context, id string, value float64) (model.RatingStats, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.RatingStats{}, apperror.NotFound(msgReviewNotFound)
	}

	rating := bson.D{{Key: "$ifNull", Value: bson.A{"$rating", 0}}}
	count := bson.D{{Key: "$ifNull", Value: bson.A{"$rating_count", 0}}}
	nextCount := bson.D{{Key: "$add", Value: bson.A{count, 1}}}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "rating", Value: bson.D{{Key: "$divide", Value: bson.A{
				bson.D{{Key: "$add", Value: bson.A{
					bson.D{{Key: "$multiply", Value: bson.A{rating, count}}},
					value,
				}}},
				nextCount,
			}}}},
			{Key: "rating_count", Value: nextCount},
		}}},
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.D{{Key: "rating", Value: 1}, {Key: "rating_count", Value: 1}})

	var doc reviewDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.RatingStats{}, apperror.NotFound(msgReviewNotFound)
	}
	if err != nil {
		return model.RatingStats{}, apperror.Internal("update rating", fmt.Errorf("MongoReviewRepository.FoldRating: %w", err))
	}
	return model.RatingStats{Rating: doc.Rating, RatingCount: doc.RatingCount}, nil
}

// AppendComment is a targeted $push; it never reads the document.
func (r *MongoReviewRepository) AppendComment(ctx context.Context, id string, c model.Comment) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperror.NotFound(msgReviewNotFound)
	}
	update := bson.M{"$push": bson.M{"comments": commentDocument{UserEmail: c.UserEmail, Comment: c.Comment}}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return apperror.Internal("add comment", fmt.Errorf("MongoReviewRepository.AppendComment: %w", err))
	}
	if res.MatchedCount == 0 {
		return apperror.NotFound(msgReviewNotFound)
	}
	return nil
}

func (d reviewDocument) toModel() model.Review {
	comments := make([]model.Comment, 0, len(d.Comments))
	for _, c := range d.Comments {
		comments = append(comments, model.Comment{UserEmail: c.UserEmail, Comment: c.Comment})
	}
	images := d.Images
	if images == nil {
		images = []string{}
	}
	createdAt := d.CreatedAt
	if createdAt.IsZero() {
		createdAt = d.ID.Timestamp()
	}
	return model.Review{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Location:    d.Location,
		Purpose:     d.Purpose,
		Budget:      string(d.Budget),
		Transport:   d.Transport,
		Text:        d.Text,
		Images:      images,
		Rating:      d.Rating,
		RatingCount: d.RatingCount,
		Comments:    comments,
		CreatedAt:   createdAt,
	}
}
