package asset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"time"

	"texture-manager/core/storage"
	"texture-manager/core/texture"

	_ "github.com/ftrvxmtrx/tga"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrNotFound is returned when the source object does not exist.
	ErrNotFound = errors.New("asset: object not found")
	// ErrEmptyObject is returned for zero-length source objects.
	ErrEmptyObject = errors.New("asset: object is empty")
	// ErrUnsupportedFormat is returned when no registered decoder recognises the object.
	ErrUnsupportedFormat = errors.New("asset: unsupported image format")
)

// Provider decodes source images stored in a bucket. It implements texture.Provider.
type Provider struct {
	client storage.Client
	bucket string
	logger *zap.Logger
	group  singleflight.Group
}

// NewProvider creates a provider reading from bucket.
func NewProvider(client storage.Client, bucket string, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		client: client,
		bucket: bucket,
		logger: logger,
	}
}

// Decode fetches and decodes the asset's object and returns its mip chain. A positive
// asset.MipLevels() caps the chain length.
//
// Concurrent decodes of the same (object, color space) share one fetch. The shared fetch
// ignores cancellation of the caller that started it; each caller stops waiting when its
// own ctx is done.
func (p *Provider) Decode(ctx context.Context, a texture.AssetData, colorSpace texture.ColorSpace) (*texture.MipChain, error) {
	key := colorSpace.String() + "/" + a.AssetID()
	shared := context.WithoutCancel(ctx)

	ch := p.group.DoChan(key, func() (interface{}, error) {
		start := time.Now()
		img, format, err := p.decodeObject(shared, a.AssetID())
		if err != nil {
			return nil, err
		}
		chain := &texture.MipChain{
			Format: colorSpace.Format(),
			Levels: BuildMipChain(img, a.MipLevels()),
		}
		p.logger.Debug("Decoded texture source",
			zap.String("object", a.AssetID()),
			zap.String("format", format),
			zap.Int("width", img.Rect.Dx()),
			zap.Int("height", img.Rect.Dy()),
			zap.Int("levels", len(chain.Levels)),
			zap.Duration("elapsed", time.Since(start)))
		return chain, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("asset: decode %s: %w", a.AssetID(), ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			p.logger.Debug("Shared in-flight decode", zap.String("object", a.AssetID()))
		}
		return res.Val.(*texture.MipChain), nil
	}
}

// Describe reads the dimensions of object without decoding its pixels.
func (p *Provider) Describe(ctx context.Context, object string) (Descriptor, error) {
	info, err := p.client.StatObject(ctx, p.bucket, object, minio.StatObjectOptions{})
	if err != nil {
		return Descriptor{}, p.wrap(object, err)
	}
	if info.Size == 0 {
		return Descriptor{}, fmt.Errorf("%w: %s", ErrEmptyObject, object)
	}

	rc, err := p.client.GetObject(ctx, p.bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return Descriptor{}, p.wrap(object, err)
	}
	defer rc.Close()

	cfg, _, err := image.DecodeConfig(rc)
	if err != nil {
		return Descriptor{}, p.wrapDecode(object, err)
	}
	return Descriptor{Object: object, Width: cfg.Width, Height: cfg.Height}, nil
}

// Image fetches and decodes object as a straight-alpha image.
func (p *Provider) Image(ctx context.Context, object string) (*image.NRGBA, error) {
	img, _, err := p.decodeObject(ctx, object)
	return img, err
}

func (p *Provider) decodeObject(ctx context.Context, object string) (*image.NRGBA, string, error) {
	rc, err := p.client.GetObject(ctx, p.bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", p.wrap(object, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, "", p.wrap(object, err)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%w: %s", ErrEmptyObject, object)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", p.wrapDecode(object, err)
	}
	return ToNRGBA(img), format, nil
}

func (p *Provider) wrap(object string, err error) error {
	if storage.IsNotFound(err) {
		return fmt.Errorf("%w: %s", ErrNotFound, object)
	}
	return fmt.Errorf("asset: fetch %s: %w", object, err)
}

func (p *Provider) wrapDecode(object string, err error) error {
	if errors.Is(err, image.ErrFormat) {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, object)
	}
	return fmt.Errorf("asset: decode %s: %w", object, err)
}
