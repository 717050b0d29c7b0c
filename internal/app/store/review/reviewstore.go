// internal/app/store/review/reviewstore.go
package reviewstore

// Shared review writes for kpi_submissions and assignment_submissions. Both
// collections carry the same inline review block.

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/coachhub/internal/domain/approval"
	"github.com/dalemusser/coachhub/internal/domain/kpierr"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Status returns the current review status of a submission.
func Status(ctx context.Context, c *mongo.Collection, id primitive.ObjectID) (string, error) {
	var doc struct {
		Status string `bson:"status"`
	}
	opts := options.FindOne().SetProjection(bson.M{"status": 1})
	if err := c.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", kpierr.NotFound("submission %s not found", id.Hex())
		}
		return "", err
	}
	return doc.Status, nil
}

// Apply writes dec to the submission if it is still in dec.From and decodes
// the updated document into out. extra holds additional fields to set in the
// same write. A reviewer who lost the race gets InvalidState.
func Apply(ctx context.Context, c *mongo.Collection, id primitive.ObjectID, dec approval.Decision, extra bson.M, out any) error {
	set := bson.M{
		"status":      dec.Review.Status,
		"coach_id":    dec.Review.CoachID,
		"coach_name":  dec.Review.CoachName,
		"feedback":    dec.Review.Feedback,
		"reviewed_at": dec.Review.ReviewedAt,
		"updated_at":  time.Now().UTC(),
	}
	for k, v := range extra {
		set[k] = v
	}
	err := c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": dec.From},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		now, serr := Status(ctx, c, id)
		if serr != nil {
			return serr
		}
		return kpierr.InvalidState("submission is already %s", now)
	}
	return err
}

// Decide loads the submission's status and runs fn against it.
func Decide(ctx context.Context, c *mongo.Collection, id primitive.ObjectID, fn func(current string, now time.Time) (approval.Decision, error)) (approval.Decision, error) {
	cur, err := Status(ctx, c, id)
	if err != nil {
		return approval.Decision{}, err
	}
	return fn(cur, time.Now().UTC())
}

// Revert returns a reviewed submission to pending. It undoes an approval
// whose follow-up write failed outside a transaction.
func Revert(ctx context.Context, c *mongo.Collection, id primitive.ObjectID, from string) error {
	_, err := c.UpdateOne(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{
			"$set":   bson.M{"status": models.ReviewPending, "updated_at": time.Now().UTC()},
			"$unset": bson.M{"coach_id": "", "coach_name": "", "feedback": "", "reviewed_at": "", "rating": ""},
		},
	)
	return err
}
