package scripts

import (
	"context"
	"testing"
)

func TestNewS3Source(t *testing.T) {
	src, err := NewS3Source(context.Background(), "sql-scripts", "prod",
		WithRegion("eu-west-1"),
		WithStaticCredentials("access", "secret"),
		WithEndpoint("http://localhost:9000"))
	if err != nil {
		t.Fatalf("NewS3Source failed: %v", err)
	}
	if src.bucket != "sql-scripts" || src.prefix != "prod" {
		t.Errorf("Unexpected source config: bucket=%s prefix=%s", src.bucket, src.prefix)
	}
	if src.client == nil {
		t.Error("Expected S3 client to be created")
	}
}

func TestNewS3Source_NoOptions(t *testing.T) {
	src, err := NewS3Source(context.Background(), "sql-scripts", "")
	if err != nil {
		t.Fatalf("NewS3Source failed: %v", err)
	}
	if src.prefix != "" {
		t.Errorf("Expected empty prefix, got %s", src.prefix)
	}
}
