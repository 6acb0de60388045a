package objectclient

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	cfg "github.com/markdave123-py/insightcart/internal/config"
)

func TestObjectURL(t *testing.T) {
	assert.Equal(t,
		"https://audits.s3.us-east-2.amazonaws.com/reports/u1/r%20one.json",
		ObjectURL("audits", "us-east-2", "reports/u1/r one.json"))
}

func TestNewS3ClientRequiresSettings(t *testing.T) {
	ctx := context.Background()

	_, err := NewS3Client(ctx, &cfg.Config{}, nil)
	assert.ErrorContains(t, err, "AWS credentials not set")

	_, err = NewS3Client(ctx, &cfg.Config{AwsAccessKey: "a", AwsSecretKey: "b"}, nil)
	assert.ErrorContains(t, err, "AWS_REGION not set")

	_, err = NewS3Client(ctx, &cfg.Config{AwsAccessKey: "a", AwsSecretKey: "b", AwsRegion: "us-east-2"}, nil)
	assert.ErrorContains(t, err, "bucket name not set")
}
