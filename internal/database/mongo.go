package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

func ConnectMongo(uri, dbName string, logger *zap.SugaredLogger) (*mongo.Database, *mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		logger.Errorf("MongoDB connection failed: %v", err)
		return nil, nil, err
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		logger.Errorf("MongoDB ping failed: %v", err)
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}

	logger.Infof("MongoDB connected successfully (database %s)", dbName)
	return client.Database(dbName), client, nil
}

// Pinger reports whether the document store is reachable. It backs /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

type mongoPinger struct {
	client *mongo.Client
}

func NewMongoPinger(client *mongo.Client) Pinger {
	return &mongoPinger{client: client}
}

func (p *mongoPinger) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return p.client.Ping(ctx, readpref.Primary())
}
