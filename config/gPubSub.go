package config

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"cloud.google.com/go/pubsub"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

var (
	pubsubClient   *pubsub.Client
	pubsubClientMu sync.Mutex
)

// GetPubSubClient returns the shared Pub/Sub client, creating it on first use.
// It uses Application Default Credentials unless credJSON is provided.
func GetPubSubClient(ctx context.Context, projectID, credJSON string) (*pubsub.Client, error) {
	pubsubClientMu.Lock()
	defer pubsubClientMu.Unlock()
	if pubsubClient != nil {
		return pubsubClient, nil
	}
	if projectID == "" {
		return nil, errors.New("PUBSUB_PROJECT_ID/GOOGLE_CLOUD_PROJECT not set")
	}

	var (
		c   *pubsub.Client
		err error
	)
	if credJSON != "" {
		c, err = pubsub.NewClient(ctx, projectID, option.WithCredentialsJSON([]byte(credJSON)))
	} else {
		c, err = pubsub.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, err
	}
	pubsubClient = c
	logg.WithFields(logrus.Fields{"project_id": projectID}).Info("pubsub client ready")
	return c, nil
}

// PublishJSON publishes obj to topicName and returns the server-assigned
// message id.
func PublishJSON(ctx context.Context, client *pubsub.Client, topicName string, obj any) (string, error) {
	if client == nil {
		return "", errors.New("pubsub client is nil")
	}
	if topicName == "" {
		return "", errors.New("topicName is required")
	}
	data, err := json.Marshal(obj)
	if err != nil {
		return "", err
	}
	t := client.Topic(topicName)
	defer t.Stop()
	return t.Publish(ctx, &pubsub.Message{Data: data}).Get(ctx)
}

func ClosePubSub() {
	pubsubClientMu.Lock()
	defer pubsubClientMu.Unlock()
	if pubsubClient != nil {
		_ = pubsubClient.Close()
		pubsubClient = nil
	}
}
