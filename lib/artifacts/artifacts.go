/*
Copyright 2020 Gravitational, Inc.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package artifacts persists files produced by scenario runs (screenshots)
// to the report directory and, optionally, to an S3 bucket.
package artifacts

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gravitational/uitest/lib/system"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/gravitational/trace"
	"github.com/sirupsen/logrus"
)

// ScreenshotDir is the directory under the store root that holds screenshots
const ScreenshotDir = "screenshots"

// Store saves named artifacts
type Store interface {
	// Save stores data under name and returns where it ended up
	Save(ctx context.Context, name string, data []byte, contentType string) (location string, err error)
}

// Stores saves every artifact to all stores.
// The first location is returned, errors are aggregated.
type Stores []Store

// Save implements Store
func (r Stores) Save(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	var errors []error
	var location string
	for _, store := range r {
		loc, err := store.Save(ctx, name, data, contentType)
		if err != nil {
			errors = append(errors, err)
			continue
		}
		if location == "" {
			location = loc
		}
	}
	return location, trace.NewAggregate(errors...)
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// ScreenshotName returns the artifact name of a failure screenshot for the given scenario
func ScreenshotName(scenario string, at time.Time) string {
	name := strings.Trim(unsafeChars.ReplaceAllString(scenario, "_"), "_")
	if name == "" {
		name = "scenario"
	}
	return path.Join(ScreenshotDir, fmt.Sprintf("%v-%v.png", name, at.UTC().Format("20060102T150405.000")))
}

// NewLocal returns a store writing artifacts below dir
func NewLocal(dir string) *Local {
	return &Local{dir: dir}
}

// Local stores artifacts on the local filesystem
type Local struct {
	dir string
}

// Save implements Store
func (r *Local) Save(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", trace.Wrap(err)
	}
	dst := filepath.Join(r.dir, filepath.FromSlash(name))
	if err := system.WriteFile(dst, data); err != nil {
		return "", trace.Wrap(err)
	}
	return dst, nil
}

// S3Config configures the S3 artifact store
type S3Config struct {
	// Bucket is the destination bucket
	Bucket string `validate:"required"`
	// Region is the bucket region
	Region string `validate:"required"`
	// Prefix is prepended to every object key
	Prefix string
}

// NewS3 returns a store uploading artifacts to the configured bucket.
// Credentials are resolved using the default AWS chain.
func NewS3(config S3Config, log logrus.FieldLogger) (*S3, error) {
	if config.Bucket == "" || config.Region == "" {
		return nil, trace.BadParameter("artifact bucket and region are required")
	}
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(config.Region),
	})
	if err != nil {
		return nil, trace.Wrap(err)
	}
	return &S3{
		FieldLogger: log.WithField("bucket", config.Bucket),
		config:      config,
		uploader:    s3manager.NewUploader(sess),
	}, nil
}

// S3 stores artifacts in an S3 bucket
type S3 struct {
	logrus.FieldLogger
	config   S3Config
	uploader uploader
}

// Save implements Store
func (r *S3) Save(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	key := path.Join(r.config.Prefix, name)
	out, err := r.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(r.config.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", trace.Wrap(err, "failed to upload %v", key)
	}
	r.WithField("key", key).Debug("Uploaded artifact.")
	return out.Location, nil
}

type uploader interface {
	UploadWithContext(ctx aws.Context, input *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error)
}
