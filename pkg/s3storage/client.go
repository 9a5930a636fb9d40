// Package s3storage — тонкий клиент объектного хранилища (minio/S3):
// перечисление ключей по префиксу и скачивание объектов.
// Разбор имён и группировка выполняются выше, в pkg/source и pkg/grouping.
package s3storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/ilkoid/poncho-patterns/pkg/config"
)

// ClientInterface определяет интерфейс для S3 клиента.
// Используется для мокания в тестах и внедрения зависимостей.
type ClientInterface interface {
	ListFiles(ctx context.Context, prefix string) ([]StoredObject, error)
	DownloadFile(ctx context.Context, key string) ([]byte, error)
}

// Client — реализация ClientInterface поверх minio-go.
type Client struct {
	api    *minio.Client
	bucket string
}

// Проверка что Client реализует ClientInterface
var _ ClientInterface = (*Client)(nil)

// StoredObject - сырой объект из S3
type StoredObject struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Filename возвращает имя объекта без префикса.
func (o StoredObject) Filename() string {
	return path.Base(o.Key)
}

// New создает клиент по секции s3 конфига.
func New(cfg config.S3Config) (*Client, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("s3.bucket is not configured")
	}
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}

	return &Client{
		api:    minioClient,
		bucket: cfg.Bucket,
	}, nil
}

// Bucket возвращает имя бакета.
func (c *Client) Bucket() string {
	return c.bucket
}

// NormalizePrefix добавляет завершающий слеш к непустому префиксу.
func NormalizePrefix(prefix string) string {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix
}

// ListFiles возвращает все объекты под префиксом (рекурсивно).
// Пустой результат — не ошибка: выборку проверяет валидация.
//
// Rule 11: уважает context.Context.
func (c *Client) ListFiles(ctx context.Context, prefix string) ([]StoredObject, error) {
	prefix = NormalizePrefix(prefix)

	var objects []StoredObject
	opts := minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}

	for obj := range c.api.ListObjects(ctx, c.bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list %s/%s: %w", c.bucket, prefix, obj.Err)
		}
		// Пропускаем саму "папку"
		if obj.Key == prefix || strings.HasSuffix(obj.Key, "/") {
			continue
		}
		objects = append(objects, StoredObject{
			Key:          obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}
	return objects, nil
}

// DownloadFile скачивает объект целиком в память.
func (c *Client) DownloadFile(ctx context.Context, key string) ([]byte, error) {
	obj, err := c.api.GetObject(ctx, c.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	defer obj.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, obj); err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", key, err)
	}
	return buf.Bytes(), nil
}
