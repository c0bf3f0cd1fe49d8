package notifiers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sns"
)

type fakeSNSClient struct {
	input *sns.PublishInput
	err   error
}

func (f *fakeSNSClient) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{}, nil
}

func TestSNSNotifierSend(t *testing.T) {
	client := &fakeSNSClient{}
	sink := &snsNotifier{
		id:       "topic",
		typ:      TypeSNS,
		topicARN: "arn:aws:sns:eu-west-1:123:imports",
		client:   client,
		log:      ensureLogger(nil),
	}

	evt := NewArticleFailed(articleFixture(), errors.New("boom"))
	if err := sink.Send(context.Background(), evt); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if client.input == nil {
		t.Fatalf("nothing published")
	}
	if got := *client.input.TopicArn; got != sink.topicARN {
		t.Fatalf("topic arn = %q", got)
	}

	var sent Event
	if err := json.Unmarshal([]byte(*client.input.Message), &sent); err != nil {
		t.Fatalf("unmarshal message: %v", err)
	}
	if sent.Kind != KindArticleFailed || sent.Article == nil || sent.Article.Error != "boom" {
		t.Fatalf("payload not carried: %+v", sent)
	}
}

func TestSNSNotifierSendError(t *testing.T) {
	client := &fakeSNSClient{err: errors.New("denied")}
	sink := &snsNotifier{
		id:       "topic",
		typ:      TypeSNS,
		topicARN: "arn:aws:sns:eu-west-1:123:imports",
		client:   client,
		log:      ensureLogger(nil),
	}

	if err := sink.Send(context.Background(), NewRunStarted("pocket.csv", 1)); err == nil {
		t.Fatalf("expected error from failing client")
	}
}

func TestSNSNotifierMissingConfig(t *testing.T) {
	_, err := newSNSNotifier(context.Background(), NotifierConfig{ID: "topic", Type: TypeSNS}, nil)
	if err == nil {
		t.Fatalf("expected error for missing sns config")
	}
}
