// Package objectstore provides a NATS JetStream implementation of the
// ObjectStore interface used for synthesized audio payloads.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// AudioStore stores decoded PCM payloads in a JetStream object store bucket.
type AudioStore struct {
	bucket string
	store  nats.ObjectStore
}

// New creates the bucket if it does not exist, or binds to it if it does.
func New(jetstreamContext nats.JetStreamContext, bucketName string) (*AudioStore, error) {
	store, err := jetstreamContext.CreateObjectStore(&nats.ObjectStoreConfig{
		Bucket:      bucketName,
		Description: fmt.Sprintf("Synthesized audio payloads for the %s bucket.", bucketName),
		Storage:     nats.FileStorage,
		Replicas:    1,
	})
	if err != nil {
		if !errors.Is(err, jetstream.ErrBucketExists) {
			return nil, fmt.Errorf(
				"failed to create object store bucket '%s': %w", bucketName, err)
		}

		store, err = jetstreamContext.ObjectStore(bucketName)
		if err != nil {
			return nil, fmt.Errorf(
				"failed to bind to existing object store bucket '%s': %w",
				bucketName, err)
		}
	}

	return &AudioStore{
		bucket: bucketName,
		store:  store,
	}, nil
}

// Download retrieves an audio payload by key.
func (s *AudioStore) Download(_ context.Context, key string) ([]byte, error) {
	obj, err := s.store.Get(key)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to get object '%s' from bucket '%s': %w", key, s.bucket, err)
	}

	data, readErr := io.ReadAll(obj)
	closeErr := obj.Close()

	if readErr != nil {
		return nil, fmt.Errorf("failed to read object '%s': %w", key, readErr)
	}

	if closeErr != nil {
		return data, fmt.Errorf("failed to close object '%s': %w", key, closeErr)
	}

	return data, nil
}

// Upload saves an audio payload under key.
func (s *AudioStore) Upload(_ context.Context, key string, data []byte) error {
	_, err := s.store.Put(&nats.ObjectMeta{
		Name: key,
	}, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf(
			"failed to put object '%s' to bucket '%s': %w", key, s.bucket, err)
	}

	return nil
}
