package cache

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-redis/redis"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	cacheImageKey = "images:%s"
	imageTTL      = 300 * time.Second
)

// ImageCache fronts the blob store for image reads: payment slips the admin
// reviews and villa images the public site serves.
type ImageCache struct {
	cli    *redis.Client
	logger *log.Logger
	Tracer trace.Tracer
}

func New(logger *log.Logger, tracer trace.Tracer) *ImageCache {
	redisHost := os.Getenv("REDIS_HOST")
	redisPort := os.Getenv("REDIS_PORT")
	redisAddress := fmt.Sprintf("%s:%s", redisHost, redisPort)

	client := redis.NewClient(&redis.Options{
		Addr: redisAddress,
	})

	return &ImageCache{
		cli:    client,
		logger: logger,
		Tracer: tracer,
	}
}

func (ic *ImageCache) Ping() {
	val, _ := ic.cli.Ping().Result()
	ic.logger.Println(val)
}

func (ic *ImageCache) PostImage(ctx context.Context, ref string, imageData []byte) error {
	_, span := ic.Tracer.Start(ctx, "ImageCache.PostImage")
	defer span.End()

	err := ic.cli.Set(constructImageKey(ref), imageData, imageTTL).Err()
	if err != nil {
		span.SetStatus(codes.Error, "Error setting image in Redis: "+err.Error())
		ic.logger.Println("Error setting image in Redis:", err)
		return err
	}
	return nil
}

func (ic *ImageCache) GetImage(ctx context.Context, ref string) ([]byte, error) {
	_, span := ic.Tracer.Start(ctx, "ImageCache.GetImage")
	defer span.End()

	imageData, err := ic.cli.Get(constructImageKey(ref)).Bytes()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	ic.logger.Println("Image cache hit")
	return imageData, nil
}

func (ic *ImageCache) ImageExists(ctx context.Context, ref string) bool {
	_, span := ic.Tracer.Start(ctx, "ImageCache.ImageExists")
	defer span.End()

	cnt, err := ic.cli.Exists(constructImageKey(ref)).Result()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return false
	}
	return cnt == 1
}

func constructImageKey(ref string) string {
	return fmt.Sprintf(cacheImageKey, ref)
}
