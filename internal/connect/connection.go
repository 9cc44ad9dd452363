package connect

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sgazz/SuperMoment/internal/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func MongoDBConnect(ctx context.Context, cfg config.StorageConfig) (*mongo.Client, error) {
	fullUri := strings.Replace(cfg.MongoDBURI, "<password>", cfg.MongoPassword, 1)

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	clientOptions := options.Client().ApplyURI(fullUri)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client, nil
}

func MongoDBDisconnect(client *mongo.Client) error {
	if client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect MongoDB: %w", err)
	}
	return nil
}
