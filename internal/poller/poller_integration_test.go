//go:build integration

package poller

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
)

func setupKafka(t *testing.T) string {
	ctx := context.Background()

	kafkaContainer, err := kafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate kafka container: %v", err)
		}
	})

	brokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers, "broker address should not be empty")
	return brokers[0]
}

func createTopic(t *testing.T, brokerAddr, topic string) {
	conn, err := kafkaGo.Dial("tcp", brokerAddr)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	controllerConn, err := kafkaGo.Dial("tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	require.NoError(t, err)
	defer controllerConn.Close()

	err = controllerConn.CreateTopics(kafkaGo.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	if err != nil {
		t.Logf("topic creation error (may already exist): %v", err)
	}
}

func TestPoller_ConsumesFromKafka(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker := setupKafka(t)
	createTopic(t, broker, DefaultTopic)

	clearer := &mockClearer{}
	p := NewPoller(Config{Brokers: []string{broker}, GroupID: "storefront-test"}, clearer, nil)
	defer p.Close()

	w := &kafkaGo.Writer{
		Addr:                   kafkaGo.TCP(broker),
		Topic:                  DefaultTopic,
		Balancer:               &kafkaGo.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	payload, err := json.Marshal(map[string]any{
		"checkout_id":  "chId",
		"session_id":   "123",
		"completed_at": time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, w.WriteMessages(ctx, kafkaGo.Message{Key: []byte("chId"), Value: payload}))
	require.NoError(t, w.Close())

	go func() { _ = p.Run(ctx) }()

	require.Eventually(t, func() bool {
		cleared := clearer.getCleared()
		return len(cleared) == 1 && cleared[0] == "123"
	}, 15*time.Second, 500*time.Millisecond)
}
