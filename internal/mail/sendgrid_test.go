package mail

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/sendgrid/rest"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

type fakeClient struct {
	sent     []*sgmail.SGMailV3
	response *rest.Response
	err      error
}

func (f *fakeClient) Send(email *sgmail.SGMailV3) (*rest.Response, error) {
	f.sent = append(f.sent, email)
	return f.response, f.err
}

func configured() Config {
	return Config{
		APIKey:         "sg-key",
		SenderEmail:    "alerts@example.com",
		SenderName:     "Lookout",
		RecipientEmail: "team@example.com",
	}
}

func TestSendDigestDeliversHTML(t *testing.T) {
	t.Parallel()

	client := &fakeClient{response: &rest.Response{StatusCode: 202}}
	sender := NewSender(configured(), zerolog.Nop())
	sender.client = client

	if err := sender.SendDigest("Digest subject", "<html>body</html>"); err != nil {
		t.Fatalf("SendDigest() error = %v", err)
	}
	if len(client.sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(client.sent))
	}

	msg := client.sent[0]
	if msg.Subject != "Digest subject" {
		t.Fatalf("subject = %q", msg.Subject)
	}
	if msg.From.Address != "alerts@example.com" || msg.From.Name != "Lookout" {
		t.Fatalf("from = %+v", msg.From)
	}
}

func TestSendDigestRejectsErrorStatus(t *testing.T) {
	t.Parallel()

	client := &fakeClient{response: &rest.Response{StatusCode: 401, Body: "unauthorized"}}
	sender := NewSender(configured(), zerolog.Nop())
	sender.client = client

	if err := sender.SendDigest("s", "b"); err == nil {
		t.Fatal("SendDigest() error = nil, want status failure")
	}
}

func TestSendDigestPropagatesTransportError(t *testing.T) {
	t.Parallel()

	client := &fakeClient{err: errors.New("dial tcp: timeout")}
	sender := NewSender(configured(), zerolog.Nop())
	sender.client = client

	if err := sender.SendDigest("s", "b"); err == nil {
		t.Fatal("SendDigest() error = nil, want transport failure")
	}
}

func TestSendDigestSkipsWhenUnconfigured(t *testing.T) {
	t.Parallel()

	sender := NewSender(Config{}, zerolog.Nop())
	if sender.Enabled() {
		t.Fatal("Enabled() = true for empty config")
	}
	if err := sender.SendDigest("s", "b"); err != nil {
		t.Fatalf("SendDigest() error = %v, want silent skip", err)
	}
}
