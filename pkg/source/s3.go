package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/ilkoid/poncho-patterns/pkg/s3storage"
	"github.com/ilkoid/poncho-patterns/pkg/utils"
)

// S3Source — объекты под префиксом бакета.
type S3Source struct {
	client s3storage.ClientInterface
	prefix string
	filter Filter
}

var _ Source = (*S3Source)(nil)

// NewS3Source создаёт источник. Глобы применяются к ключу без префикса.
func NewS3Source(client s3storage.ClientInterface, prefix string, include, exclude []string) (*S3Source, error) {
	if client == nil {
		return nil, fmt.Errorf("s3 client is nil")
	}
	f, err := NewFilter(include, exclude)
	if err != nil {
		return nil, err
	}
	return &S3Source{client: client, prefix: s3storage.NormalizePrefix(prefix), filter: f}, nil
}

// Describe возвращает префикс.
func (s *S3Source) Describe() string {
	return "s3:" + s.prefix
}

// List перечисляет объекты под префиксом.
func (s *S3Source) List(ctx context.Context) ([]Entry, error) {
	objects, err := s.client.ListFiles(ctx, s.prefix)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(objects))
	for _, obj := range objects {
		rel := strings.TrimPrefix(obj.Key, s.prefix)
		if !s.filter.Match(rel) {
			continue
		}
		entries = append(entries, Entry{Name: obj.Filename(), Key: obj.Key})
	}

	sortEntries(entries)
	utils.Debug("S3 prefix listed", "prefix", s.prefix, "objects", len(objects), "files", len(entries))
	return entries, nil
}

// Fetch скачивает объект.
func (s *S3Source) Fetch(ctx context.Context, key string) ([]byte, error) {
	return s.client.DownloadFile(ctx, key)
}
