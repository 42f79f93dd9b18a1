package blob

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"
)

// fakeS3 records PUT requests by path.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]fakeObject
	status  int
}

type fakeObject struct {
	body        []byte
	contentType string
}

func (f *fakeS3) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.status != 0 {
		return &http.Response{StatusCode: f.status, Body: io.NopCloser(strings.NewReader("<Error><Code>InternalError</Code></Error>")), Header: http.Header{"Content-Type": {"application/xml"}}, Request: req}, nil
	}
	if req.Method != http.MethodPut {
		return &http.Response{StatusCode: http.StatusNotImplemented, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{}, Request: req}, nil
	}
	body, _ := io.ReadAll(req.Body)
	f.objects[req.URL.Path] = fakeObject{body: body, contentType: req.Header.Get("Content-Type")}
	return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{"ETag": {"\"etag\""}}, Request: req}, nil
}

func newTestStore(t *testing.T, rt *fakeS3, prefix string) *S3Store {
	t.Helper()
	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")),
	)
	require.NoError(t, err)
	return newS3Store(awsCfg, Config{
		Bucket:    "exports",
		Endpoint:  "https://mock.s3.local",
		PathStyle: true,
		Prefix:    prefix,
	}, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: rt}
		o.RetryMaxAttempts = 1
	})
}

func TestS3Store_Put(t *testing.T) {
	rt := &fakeS3{objects: map[string]fakeObject{}}
	store := newTestStore(t, rt, "/history/")

	obj, err := store.Put(context.Background(), "user1/export.csv", []byte("a,b\n1,2\n"), "text/csv")
	require.NoError(t, err)
	require.Equal(t, "exports", obj.Bucket)
	require.Equal(t, "history/user1/export.csv", obj.Key)
	require.Equal(t, 8, obj.Size)
	require.Contains(t, obj.URL, "https://mock.s3.local/exports/history/user1/export.csv")
	require.Contains(t, obj.URL, "X-Amz-Signature=")

	stored, ok := rt.objects["/exports/history/user1/export.csv"]
	require.True(t, ok)
	require.Equal(t, "text/csv", stored.contentType)
	require.Contains(t, string(stored.body), "a,b\n1,2\n")
}

func TestS3Store_PutFailure(t *testing.T) {
	rt := &fakeS3{objects: map[string]fakeObject{}, status: http.StatusInternalServerError}
	store := newTestStore(t, rt, "")

	_, err := store.Put(context.Background(), "export.csv", []byte("x"), "text/csv")
	require.Error(t, err)
	require.Contains(t, err.Error(), "uploading export.csv")
}

func TestNewS3_RequiresBucket(t *testing.T) {
	_, err := NewS3(context.Background(), Config{})
	require.Error(t, err)
}

func TestS3Store_ObjectKey(t *testing.T) {
	store := &S3Store{}
	require.Equal(t, "a.csv", store.objectKey("/a.csv"))
	store.prefix = "p"
	require.Equal(t, "p/a.csv", store.objectKey("a.csv"))
}
