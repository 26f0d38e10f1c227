package pipeline

import (
	"context"

	"github.com/mmdatafocus/hubspot_pipeline/config"
	"github.com/sirupsen/logrus"
)

// SummaryEvent is the message published after a finished export.
type SummaryEvent struct {
	Tool string `json:"tool"`
	Sink string `json:"sink"`
	Summary
}

// PublishSummary publishes the event to the configured topic. No topic means
// nothing is published.
func PublishSummary(ctx context.Context, s *config.Settings, ev SummaryEvent) error {
	topic := s.PubSub.SummaryTopic
	if topic == "" {
		return nil
	}
	client, err := config.GetPubSubClient(ctx, s.PubSubProjectID(), s.PubSub.CredentialsJSON)
	if err != nil {
		return err
	}
	msgID, err := config.PublishJSON(ctx, client, topic, ev)
	if err != nil {
		return err
	}
	config.WithContext(ctx).WithFields(logrus.Fields{"topic": topic, "message_id": msgID}).Info("export summary published")
	return nil
}
