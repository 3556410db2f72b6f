package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Attachment stores metadata about a result file (measurement report,
// chromatogram, photo) attached to a task. The file itself lives in S3;
// only the object key is kept here.
type Attachment struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TaskID      primitive.ObjectID `bson:"taskId" json:"taskId"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	S3ObjectKey string             `bson:"s3ObjectKey" json:"-"` // internal use only
	FileName    string             `bson:"fileName" json:"fileName"`
	ContentType string             `bson:"contentType" json:"contentType"`
	Size        int64              `bson:"size" json:"size"`
	UploadedAt  time.Time          `bson:"uploadedAt" json:"uploadedAt"`
}
