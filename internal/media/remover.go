// Package media removes source videos once they are no longer needed.
package media

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	log "github.com/sirupsen/logrus"
)

var ErrInvalidEvent = errors.New("event needs srcBucket and srcVideo")

// Event names the object to remove
type Event struct {
	SrcBucket string `json:"srcBucket"`
	SrcVideo  string `json:"srcVideo"`
}

// ObjectDeleter is satisfied by *s3.Client
type ObjectDeleter interface {
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Reporter records removals that failed
type Reporter interface {
	Report(ctx context.Context, event Event, cause error) error
}

type Remover struct {
	objects  ObjectDeleter
	reporter Reporter
}

func NewRemover(objects ObjectDeleter, reporter Reporter) *Remover {
	return &Remover{
		objects:  objects,
		reporter: reporter,
	}
}

// Handle deletes the event's video. A failed deletion is reported and
// returned, so the invocation itself fails.
func (r *Remover) Handle(ctx context.Context, event Event) (Event, error) {
	if event.SrcBucket == "" || event.SrcVideo == "" {
		return event, ErrInvalidEvent
	}

	_, err := r.objects.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(event.SrcBucket),
		Key:    aws.String(event.SrcVideo),
	})
	if err != nil {
		log.WithFields(log.Fields{
			"bucket": event.SrcBucket,
			"key":    event.SrcVideo,
		}).Errorf("❌ Failed to remove source video: %v", err)

		if r.reporter != nil {
			if reportErr := r.reporter.Report(ctx, event, err); reportErr != nil {
				log.Errorf("❌ Failed to report removal failure: %v", reportErr)
			}
		}
		return event, fmt.Errorf("failed to remove %s/%s: %w", event.SrcBucket, event.SrcVideo, err)
	}

	log.WithFields(log.Fields{
		"bucket": event.SrcBucket,
		"key":    event.SrcVideo,
	}).Info("🗑️ Removed source video")
	return event, nil
}
