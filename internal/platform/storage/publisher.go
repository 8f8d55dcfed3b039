package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

const defaultCacheControl = "public, max-age=3600"

// ClientOptions configures the Cloud Storage client used by the publisher.
type ClientOptions struct {
	// Endpoint overrides the API endpoint, e.g. a local emulator.
	Endpoint        string
	CredentialsFile string
	Anonymous       bool
}

// NewGCSClient builds a Cloud Storage client from opts.
func NewGCSClient(ctx context.Context, opts ClientOptions) (*gcs.Client, error) {
	var clientOpts []option.ClientOption
	if endpoint := strings.TrimSpace(opts.Endpoint); endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(endpoint))
	}
	if file := strings.TrimSpace(opts.CredentialsFile); file != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(file))
	}
	if opts.Anonymous {
		clientOpts = append(clientOpts, option.WithoutAuthentication())
	}
	client, err := gcs.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("storage: create client: %w", err)
	}
	return client, nil
}

// Object describes a blob to publish.
type Object struct {
	Bucket       string
	Name         string
	ContentType  string
	CacheControl string
	Data         []byte
}

type openFunc func(ctx context.Context, obj Object) io.WriteCloser

// Publisher uploads generated artefacts such as sitemaps to Cloud Storage.
type Publisher struct {
	open openFunc
}

// NewPublisher constructs a Publisher backed by the provided Cloud Storage client.
func NewPublisher(client *gcs.Client) (*Publisher, error) {
	if client == nil {
		return nil, errors.New("storage publisher: client is required")
	}
	return &Publisher{open: func(ctx context.Context, obj Object) io.WriteCloser {
		w := client.Bucket(obj.Bucket).Object(obj.Name).NewWriter(ctx)
		w.ContentType = obj.ContentType
		w.CacheControl = obj.CacheControl
		return w
	}}, nil
}

// Publish writes obj, replacing any existing object of the same name.
func (p *Publisher) Publish(ctx context.Context, obj Object) error {
	if p == nil || p.open == nil {
		return errors.New("storage publisher: client is not initialised")
	}
	obj.Bucket = strings.TrimSpace(obj.Bucket)
	obj.Name = strings.TrimLeft(strings.TrimSpace(obj.Name), "/")
	if obj.Bucket == "" || obj.Name == "" {
		return errors.New("storage publisher: bucket and object must be provided")
	}
	if obj.ContentType == "" {
		obj.ContentType = "application/octet-stream"
	}
	if obj.CacheControl == "" {
		obj.CacheControl = defaultCacheControl
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := p.open(ctx, obj)
	if _, err := io.Copy(w, bytes.NewReader(obj.Data)); err != nil {
		// cancelling before Close aborts the upload
		cancel()
		_ = w.Close()
		return fmt.Errorf("storage publisher: write gs://%s/%s: %w", obj.Bucket, obj.Name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("storage publisher: finalize gs://%s/%s: %w", obj.Bucket, obj.Name, err)
	}
	return nil
}

// SitemapTarget publishes rendered sitemaps to a fixed object.
type SitemapTarget struct {
	Publisher *Publisher
	Bucket    string
	Object    string
}

// PublishSitemap uploads data as an XML document.
func (t SitemapTarget) PublishSitemap(ctx context.Context, data []byte) error {
	return t.Publisher.Publish(ctx, Object{
		Bucket:      t.Bucket,
		Name:        t.Object,
		ContentType: "application/xml; charset=utf-8",
		Data:        data,
	})
}
