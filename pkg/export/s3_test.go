package export

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type fakeObject struct {
	body     []byte
	metadata map[string]string
}

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]fakeObject
	puts    int
	headErr error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string]fakeObject)}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = fakeObject{body: body, metadata: in.Metadata}
	f.puts++
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) HeadObject(ctx context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.headErr != nil {
		return nil, f.headErr
	}
	obj, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{Metadata: obj.metadata, ContentLength: aws.Int64(int64(len(obj.body)))}, nil
}

func TestS3SinkPut(t *testing.T) {
	client := newFakeS3()
	sink := NewS3Sink(client, "bucket", "projects/thesis/")
	ctx := context.Background()

	written, err := sink.Put(ctx, "chapters/intro.tex", []byte("hello\n"))
	if err != nil || !written {
		t.Fatalf("Put = %v, %v; want written", written, err)
	}
	obj, ok := client.objects["bucket/projects/thesis/chapters/intro.tex"]
	if !ok {
		t.Fatalf("object not stored, have %v", client.objects)
	}
	if string(obj.body) != "hello\n" {
		t.Errorf("body = %q", obj.body)
	}
	if obj.metadata[fingerprintKey] != Fingerprint([]byte("hello\n")) {
		t.Errorf("fingerprint metadata = %q", obj.metadata[fingerprintKey])
	}

	written, err = sink.Put(ctx, "chapters/intro.tex", []byte("hello\n"))
	if err != nil || written {
		t.Fatalf("second Put = %v, %v; want skipped", written, err)
	}
	if client.puts != 1 {
		t.Errorf("puts = %d, want 1", client.puts)
	}

	if written, err = sink.Put(ctx, "chapters/intro.tex", []byte("changed\n")); err != nil || !written {
		t.Fatalf("changed Put = %v, %v; want written", written, err)
	}
}

func TestS3SinkHeadError(t *testing.T) {
	client := newFakeS3()
	client.headErr = errors.New("access denied")
	sink := NewS3Sink(client, "bucket", "")

	if _, err := sink.Put(context.Background(), "a.tex", []byte("x")); err == nil {
		t.Fatal("Put succeeded despite head error")
	}
	if client.puts != 0 {
		t.Errorf("puts = %d, want 0", client.puts)
	}
}

func TestS3SinkKey(t *testing.T) {
	sink := NewS3Sink(nil, "b", "pre/")
	tests := map[string]string{
		"main.tex":           "pre/main.tex",
		"/main.tex":          "pre/main.tex",
		"a/../b/c.tex":       "pre/b/c.tex",
		"chapters/intro.tex": "pre/chapters/intro.tex",
	}
	for in, want := range tests {
		if got := sink.Key(in); got != want {
			t.Errorf("Key(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFingerprintRoundTrip(t *testing.T) {
	fp := Fingerprint([]byte("content"))
	if len(fp) != 16 {
		t.Fatalf("Fingerprint length = %d", len(fp))
	}
	if _, ok := parseFingerprint(fp); !ok {
		t.Errorf("parseFingerprint(%q) failed", fp)
	}
	for _, bad := range []string{"", "xyz", "0123456789abcdeg"} {
		if _, ok := parseFingerprint(bad); ok {
			t.Errorf("parseFingerprint(%q) succeeded", bad)
		}
	}
}
