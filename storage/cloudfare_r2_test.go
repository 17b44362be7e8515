package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjectAPI struct {
	puts    map[string]string
	deletes []string
	err     error
}

func (f *fakeObjectAPI) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.puts[aws.ToString(params.Key)] = string(body)
	return &s3.PutObjectOutput{ETag: aws.String(`"abc123"`)}, nil
}

func (f *fakeObjectAPI) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deletes = append(f.deletes, aws.ToString(params.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestR2ArchiverPut(t *testing.T) {
	api := &fakeObjectAPI{puts: map[string]string{}}
	a := newR2Archiver(api, "brackets", "https://cdn.example.com/archive")

	res, err := a.Put(context.Background(), "sessions/1/final.json", "application/json", strings.NewReader(`{"value":"A"}`))
	require.NoError(t, err)
	assert.Equal(t, "abc123", res.ETag)
	assert.Equal(t, "https://cdn.example.com/archive/sessions/1/final.json", res.Location)
	assert.Equal(t, `{"value":"A"}`, api.puts["sessions/1/final.json"])

	require.NoError(t, a.Delete(context.Background(), "sessions/1/final.json"))
	assert.Equal(t, []string{"sessions/1/final.json"}, api.deletes)
}

func TestR2ArchiverErrors(t *testing.T) {
	api := &fakeObjectAPI{err: errors.New("boom")}
	a := newR2Archiver(api, "brackets", "https://cdn.example.com/")

	_, err := a.Put(context.Background(), "k", "application/json", strings.NewReader("{}"))
	assert.ErrorContains(t, err, "boom")
	assert.ErrorContains(t, a.Delete(context.Background(), "k"), "boom")
}

func TestPublicURL(t *testing.T) {
	a := newR2Archiver(nil, "b", "https://cdn.example.com/")
	assert.Equal(t, "https://cdn.example.com/x/y.json", a.PublicURL("/x/y.json"))
	assert.Equal(t, "", a.PublicURL(""))

	assert.Equal(t, "", newR2Archiver(nil, "b", "").PublicURL("x"))
}

func TestNewCloudflareR2ArchiverValidation(t *testing.T) {
	_, err := NewCloudflareR2Archiver(context.Background(), CloudflareR2ArchiverConfig{AccountID: "only"})
	assert.Error(t, err)
}

func TestArchiveKey(t *testing.T) {
	at := time.Unix(1700000000, 0)
	key := ArchiveKey(7, "final.json", []byte("payload"), at)
	assert.Equal(t, "sessions/7/final_321c3cf4-1700000000.json", key)

	// same content, same hash fragment
	assert.Equal(t, key, ArchiveKey(7, "final", []byte("payload"), at))
	assert.NotEqual(t, key, ArchiveKey(7, "final", []byte("other"), at))
}
