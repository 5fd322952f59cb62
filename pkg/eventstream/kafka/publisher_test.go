package kafka_test

import (
	"context"
	"encoding/json"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/papercomputeco/skillgate/pkg/eventstream"
	"github.com/papercomputeco/skillgate/pkg/eventstream/kafka"
	"github.com/papercomputeco/skillgate/pkg/principal"
	"github.com/papercomputeco/skillgate/pkg/registry"
)

type fakeWriter struct {
	messages []kafkago.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

var _ = Describe("Publisher", func() {
	var (
		ctx    context.Context
		writer *fakeWriter
		pub    *kafka.Publisher
		event  *eventstream.SkillRegisteredEvent
	)

	BeforeEach(func() {
		ctx = context.Background()
		writer = &fakeWriter{}
		pub = kafka.NewPublisherWithWriter(writer)
		event = eventstream.NewSkillRegisteredEvent(
			principal.Principal{UserID: "alice"},
			registry.Skill{ID: "sk-1", Name: "weather"},
			[]string{"skills/weather/MANIFEST"},
		)
	})

	It("validates its configuration", func() {
		_, err := kafka.NewPublisher(kafka.Config{Topic: "t"})
		Expect(err).To(MatchError(ContainSubstring("brokers are required")))

		_, err = kafka.NewPublisher(kafka.Config{Brokers: " , "})
		Expect(err).To(MatchError(ContainSubstring("brokers are required")))

		_, err = kafka.NewPublisher(kafka.Config{Brokers: "localhost:9092"})
		Expect(err).To(MatchError(ContainSubstring("topic is required")))
	})

	It("writes a keyed JSON message", func() {
		Expect(pub.PublishSkillRegistered(ctx, event)).To(Succeed())
		Expect(writer.messages).To(HaveLen(1))

		msg := writer.messages[0]
		Expect(string(msg.Key)).To(Equal("alice/weather"))
		Expect(msg.Headers).To(ContainElement(kafkago.Header{Key: "event_type", Value: []byte("skill.registered")}))

		var got eventstream.SkillRegisteredEvent
		Expect(json.Unmarshal(msg.Value, &got)).To(Succeed())
		Expect(got.EventID).To(Equal(event.EventID))
		Expect(got.Skill.ID).To(Equal("sk-1"))
	})

	It("rejects nil events", func() {
		Expect(pub.PublishSkillRegistered(ctx, nil)).To(MatchError(eventstream.ErrNilEvent))
		Expect(writer.messages).To(BeEmpty())
	})

	It("wraps writer errors", func() {
		writer.err = errors.New("leader not available")
		err := pub.PublishSkillRegistered(ctx, event)
		Expect(err).To(MatchError(ContainSubstring("publishing skill.registered: leader not available")))
	})

	It("closes the writer", func() {
		Expect(pub.Close()).To(Succeed())
		Expect(writer.closed).To(BeTrue())
	})
})
