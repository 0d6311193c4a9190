package artifacts

import (
	"context"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestScreenshotName(t *testing.T) {
	at := time.Date(2026, 10, 18, 12, 30, 5, 0, time.UTC)
	require.Equal(t, "screenshots/Open_the_home_page-20261018T123005.000.png",
		ScreenshotName("Open the home page!", at))
	require.True(t, strings.HasPrefix(ScreenshotName("???", at), "screenshots/scenario-"))
}

func TestLocalSave(t *testing.T) {
	dir := t.TempDir()
	store := NewLocal(dir)

	location, err := store.Save(context.Background(), "screenshots/a.png", []byte("png"), "image/png")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "screenshots", "a.png"), location)

	data, err := ioutil.ReadFile(location)
	require.NoError(t, err)
	require.Equal(t, "png", string(data))
}

func TestLocalSaveCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	dir := t.TempDir()

	_, err := NewLocal(dir).Save(ctx, "a.png", []byte("png"), "image/png")
	require.Error(t, err)
	_, err = os.Stat(filepath.Join(dir, "a.png"))
	require.True(t, os.IsNotExist(err))
}

type fakeUploader struct {
	inputs []*s3manager.UploadInput
	err    error
}

func (r *fakeUploader) UploadWithContext(ctx aws.Context, input *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	r.inputs = append(r.inputs, input)
	if r.err != nil {
		return nil, r.err
	}
	return &s3manager.UploadOutput{Location: "https://bucket/" + aws.StringValue(input.Key)}, nil
}

func TestS3Save(t *testing.T) {
	up := &fakeUploader{}
	store := &S3{
		FieldLogger: logrus.New(),
		config:      S3Config{Bucket: "bucket", Region: "us-east-1", Prefix: "run-1"},
		uploader:    up,
	}

	location, err := store.Save(context.Background(), "screenshots/a.png", []byte("png"), "image/png")
	require.NoError(t, err)
	require.Equal(t, "https://bucket/run-1/screenshots/a.png", location)
	require.Len(t, up.inputs, 1)
	require.Equal(t, "bucket", aws.StringValue(up.inputs[0].Bucket))
	require.Equal(t, "image/png", aws.StringValue(up.inputs[0].ContentType))
}

func TestNewS3RequiresBucket(t *testing.T) {
	_, err := NewS3(S3Config{Region: "us-east-1"}, logrus.New())
	require.Error(t, err)
}

func TestStoresKeepsGoingAfterFailure(t *testing.T) {
	dir := t.TempDir()
	failing := &S3{
		FieldLogger: logrus.New(),
		config:      S3Config{Bucket: "bucket"},
		uploader:    &fakeUploader{err: errors.New("access denied")},
	}

	location, err := Stores{failing, NewLocal(dir)}.Save(context.Background(), "a.png", []byte("png"), "image/png")
	require.Error(t, err)
	require.Equal(t, filepath.Join(dir, "a.png"), location)
}
