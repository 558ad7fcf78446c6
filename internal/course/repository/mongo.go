package repository

import (
	"context"
	"errors"
	"time"

	"github.com/coursehub/coursehub-api/internal/course"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo implements Repository on the courses collection. Ids are uuid
// strings stored in _id.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	return &MongoRepo{col: col}
}

func (m *MongoRepo) Create(ctx context.Context, c *course.Course) (string, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	if _, err := m.col.InsertOne(ctx, c); err != nil {
		return "", err
	}
	return c.ID, nil
}

func (m *MongoRepo) Get(ctx context.Context, id string) (*course.Course, error) {
	var c course.Course
	err := m.col.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (m *MongoRepo) List(ctx context.Context) ([]*course.Course, error) {
	cur, err := m.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*course.Course{}
	for cur.Next(ctx) {
		var c course.Course
		if err := cur.Decode(&c); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, cur.Err()
}

func (m *MongoRepo) Update(ctx context.Context, id string, c *course.Course) error {
	set := bson.M{
		"name":           c.Name,
		"description":    c.Description,
		"price":          c.Price,
		"estimatedPrice": c.EstimatedPrice,
		"tags":           c.Tags,
		"level":          c.Level,
		"demoUrl":        c.DemoURL,
		"benefits":       c.Benefits,
		"prerequisites":  c.Prerequisites,
		"courseData":     c.Sections,
		"updatedAt":      time.Now().UTC(),
	}
	res, err := m.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoRepo) Delete(ctx context.Context, id string) error {
	res, err := m.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoRepo) IncrementPurchased(ctx context.Context, id string) error {
	res, err := m.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"purchased": 1}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoRepo) AddQuestion(ctx context.Context, courseID, sectionID string, q course.Question) error {
	res, err := m.col.UpdateOne(ctx,
		bson.M{"_id": courseID, "courseData._id": sectionID},
		bson.M{
			"$push": bson.M{"courseData.$.questions": q},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrSectionNotFound
	}
	return nil
}

func (m *MongoRepo) AddAnswer(ctx context.Context, courseID, sectionID, questionID string, a course.Answer) error {
	filter := bson.M{
		"_id":        courseID,
		"courseData": bson.M{"$elemMatch": bson.M{"_id": sectionID, "questions._id": questionID}},
	}
	update := bson.M{
		"$push": bson.M{"courseData.$[s].questions.$[q].questionReplies": a},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{"s._id": sectionID}, bson.M{"q._id": questionID}},
	})
	res, err := m.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrQuestionNotFound
	}
	return nil
}

// AddReview appends the review and recomputes ratings in a single pipeline
// update, so concurrent reviews cannot lose each other's rating.
func (m *MongoRepo) AddReview(ctx context.Context, courseID string, r course.Review) error {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"reviews": bson.M{"$concatArrays": bson.A{
				bson.M{"$ifNull": bson.A{"$reviews", bson.A{}}},
				bson.A{bson.M{"$literal": r}},
			}},
		}}},
		{{Key: "$set", Value: bson.M{
			"ratings":   bson.M{"$avg": "$reviews.rating"},
			"updatedAt": time.Now().UTC(),
		}}},
	}
	res, err := m.col.UpdateOne(ctx, bson.M{"_id": courseID}, pipeline)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoRepo) AddReviewReply(ctx context.Context, courseID, reviewID string, r course.ReviewReply) error {
	res, err := m.col.UpdateOne(ctx,
		bson.M{"_id": courseID, "reviews._id": reviewID},
		bson.M{
			"$push": bson.M{"reviews.$.commentReplies": r},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrReviewNotFound
	}
	return nil
}
