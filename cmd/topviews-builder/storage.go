// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

type ObjectInfo struct {
	Key         string
	ContentType string
	ETag        string
}

type Storage interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	List(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error)
	PutFile(ctx context.Context, bucket string, remotepath string, localpath string, contentType string) error
	Remove(ctx context.Context, bucket, path string) error
}

// remoteStorage talks to an S3-compatible server. The other implementation
// is FakeStorage, which is used for testing.
type remoteStorage struct {
	client *minio.Client
}

func (s *remoteStorage) BucketExists(ctx context.Context, bucket string) (bool, error) {
	return s.client.BucketExists(ctx, bucket)
}

func (s *remoteStorage) List(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error) {
	opts := minio.ListObjectsOptions{Prefix: prefix, Recursive: true}
	result := make([]ObjectInfo, 0)
	for f := range s.client.ListObjects(ctx, bucket, opts) {
		o := ObjectInfo{Key: f.Key, ContentType: f.ContentType, ETag: f.ETag}
		result = append(result, o)
	}
	return result, nil
}

func (s *remoteStorage) PutFile(ctx context.Context, bucket string, remotepath string, localpath string, contentType string) error {
	opts := minio.PutObjectOptions{ContentType: contentType}
	_, err := s.client.FPutObject(ctx, bucket, remotepath, localpath, opts)
	return err
}

func (s *remoteStorage) Remove(ctx context.Context, bucket, path string) error {
	return s.client.RemoveObject(ctx, bucket, path, minio.RemoveObjectOptions{})
}

// NewStorage sets up a client for accessing S3-compatible object storage.
// The key file is JSON with fields Endpoint, Key and Secret.
func NewStorage(keypath string) (Storage, error) {
	data, err := os.ReadFile(keypath)
	if err != nil {
		return nil, err
	}

	var config struct{ Endpoint, Key, Secret string }
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.Key, config.Secret, ""),
		Secure: true,
	})
	if err != nil {
		return nil, err
	}

	client.SetAppInfo("TopviewsBuilder", "0.1")
	return &remoteStorage{client: client}, nil
}

// uploadOutputs puts the run's output files under public/ in the bucket.
func uploadOutputs(ctx context.Context, s Storage, bucket string, paths []string) error {
	exists, err := s.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("bucket %q does not exist", bucket)
	}

	for _, path := range paths {
		remote := "public/" + filepath.Base(path)
		if err := s.PutFile(ctx, bucket, remote, path, contentTypeFor(path)); err != nil {
			return err
		}
		logger.Info("uploaded", zap.String("bucket", bucket), zap.String("key", remote))
	}
	return nil
}

func contentTypeFor(path string) string {
	switch {
	case strings.HasSuffix(path, ".png"):
		return "image/png"
	case strings.HasSuffix(path, ".csv.gz"):
		return "application/gzip"
	case strings.HasSuffix(path, ".json"):
		return "application/json"
	case strings.HasSuffix(path, ".html"):
		return "text/html"
	}
	return "application/octet-stream"
}

// cleanupStorage deletes all but the most recent uploads of each kind. The
// date-stamped file names sort chronologically, so plain string order works.
func cleanupStorage(ctx context.Context, s Storage, bucket string) error {
	for _, p := range []struct {
		prefix, pattern string
		keep            int
	}{
		{"public/topviews-", `public/topviews-\d{8}-\d{8}\.csv\.gz`, 8},
		{"public/stats-", `public/stats-\d{8}-\d{8}\.json`, 8},
	} {
		if err := cleanupPath(ctx, s, bucket, p.prefix, p.pattern, p.keep); err != nil {
			return err
		}
	}
	return nil
}

func cleanupPath(ctx context.Context, s Storage, bucket, prefix, pattern string, keep int) error {
	re := regexp.MustCompile(pattern)

	found := make([]string, 0, keep+10)
	files, err := s.List(ctx, bucket, prefix)
	if err != nil {
		return err
	}
	for _, f := range files {
		if re.MatchString(f.Key) {
			found = append(found, f.Key)
		}
	}

	if len(found) > keep {
		sort.Strings(found)
		for _, path := range found[0 : len(found)-keep] {
			logger.Info("deleting from storage",
				zap.String("bucket", bucket), zap.String("key", path))
			if err := s.Remove(ctx, bucket, path); err != nil {
				return err
			}
		}
	}

	return nil
}
