package sync

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// fakePutter captures PutObject calls.
type fakePutter struct {
	in   *s3.PutObjectInput
	body string
	err  error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3Destination_WritesSummaryMetadata(t *testing.T) {
	fake := &fakePutter{}
	dest := &S3Destination{client: fake, bucket: "gate-audit", key: "gatewatch/transitions.jsonl"}

	first := time.Date(2026, 4, 2, 6, 15, 0, 0, time.UTC)
	sum := Summary{
		Transitions: 4,
		First:       first,
		Last:        first.Add(time.Hour),
		MonitorIDs:  []string{"mon-a", "mon-b"},
	}
	data := `{"type":"header","transition_count":4}` + "\n"

	if err := dest.Write(context.Background(), []byte(data), sum); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if aws.ToString(fake.in.Bucket) != "gate-audit" || aws.ToString(fake.in.Key) != "gatewatch/transitions.jsonl" {
		t.Fatalf("unexpected target s3://%s/%s", aws.ToString(fake.in.Bucket), aws.ToString(fake.in.Key))
	}
	if aws.ToString(fake.in.ContentType) != "application/x-ndjson" {
		t.Errorf("ContentType = %q", aws.ToString(fake.in.ContentType))
	}
	if fake.body != data {
		t.Errorf("body = %q", fake.body)
	}

	want := map[string]string{
		"transition-count": "4",
		"monitor-ids":      "mon-a,mon-b",
		"first-at":         "2026-04-02T06:15:00Z",
		"last-at":          "2026-04-02T07:15:00Z",
	}
	for k, v := range want {
		if got := fake.in.Metadata[k]; got != v {
			t.Errorf("metadata %s = %q, want %q", k, got, v)
		}
	}
}

func TestS3Destination_EmptyJournalMetadata(t *testing.T) {
	md := objectMetadata(Summary{})
	if len(md) != 1 || md["transition-count"] != "0" {
		t.Fatalf("objectMetadata(empty) = %v", md)
	}
}

func TestS3Destination_UploadError(t *testing.T) {
	boom := errors.New("access denied")
	dest := &S3Destination{client: &fakePutter{err: boom}, bucket: "b", key: "k"}
	err := dest.Write(context.Background(), []byte("{}\n"), Summary{})
	if !errors.Is(err, boom) || !strings.Contains(err.Error(), "s3://b/k") {
		t.Fatalf("Write error = %v", err)
	}
}
