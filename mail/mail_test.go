package mail

import (
	"errors"
	"strings"
	"testing"

	"github.com/use-agent/leadforge/models"
)

type recordingSender struct {
	sent    []Message
	failFor string
}

func (s *recordingSender) Send(msg Message) error {
	if msg.To == s.failFor {
		return errors.New("relay rejected recipient")
	}
	s.sent = append(s.sent, msg)
	return nil
}

func TestBulkSend(t *testing.T) {
	sender := &recordingSender{failFor: "bounce@dead.net"}
	bulk := NewBulk(sender, 0, nil)

	res := bulk.Send(models.SendEmailRequest{
		From:    "sales@leadforge.io",
		Subject: "Hello",
		Body:    "Hi {{name}}, quick question.",
		Leads: []map[string]string{
			{"Email": "j@smithco.com", "Name": "Jordan Smith"},
			{"Phone": "5125550134"}, // no email, skipped
			{"email address": "bounce@dead.net", "first name": "Pat"},
		},
	})

	if res.Total != 3 || res.Sent != 1 || res.Skipped != 2 {
		t.Fatalf("result = %+v, want total 3 sent 1 skipped 2", res)
	}
	if len(sender.sent) != 1 || sender.sent[0].To != "j@smithco.com" {
		t.Fatalf("unexpected deliveries: %+v", sender.sent)
	}
	if !strings.Contains(sender.sent[0].Body, "Hi Jordan Smith,") {
		t.Errorf("name placeholder not substituted: %q", sender.sent[0].Body)
	}
}

func TestBuildMIMEWithAttachment(t *testing.T) {
	raw := string(buildMIME("sales@leadforge.io", Message{
		To:      "j@smithco.com",
		Subject: "Leads",
		Body:    "attached",
		Attachments: []models.Attachment{
			{Filename: "leads.csv", ContentType: "text/csv", Data: []byte("Name,Phone\n")},
		},
	}))

	for _, want := range []string{
		"multipart/mixed",
		`filename="leads.csv"`,
		"Content-Transfer-Encoding: base64",
		"To: j@smithco.com",
	} {
		if !strings.Contains(raw, want) {
			t.Errorf("MIME output missing %q", want)
		}
	}
}
