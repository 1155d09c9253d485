package notify

import (
	"context"
	"encoding/json"

	"github.com/streadway/amqp"
)

// Publisher pushes notification events onto an AMQP topic exchange so other
// services (mailers, dashboards) can consume them.
type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

func NewPublisher(amqpURL, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	return &Publisher{conn: conn, channel: ch, exchange: exchange}, nil
}

func (p *Publisher) QuizSubmitted(_ context.Context, userID, quizTitle string) error {
	return p.publish("quiz.submitted", map[string]any{
		"user_id": userID,
		"quiz":    quizTitle,
	})
}

func (p *Publisher) QuizGraded(_ context.Context, userID, quizTitle string, score int) error {
	return p.publish("quiz.graded", map[string]any{
		"user_id": userID,
		"quiz":    quizTitle,
		"score":   score,
	})
}

func (p *Publisher) publish(routingKey string, payload any) error {
	body, err := json.Marshal(map[string]any{"type": routingKey, "payload": payload})
	if err != nil {
		return err
	}
	return p.channel.Publish(p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}

func (p *Publisher) Close() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
