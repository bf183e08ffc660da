package imapsync

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-message"
)

const multipartRaw = `Content-Type: multipart/alternative; boundary="xyz"

--xyz
Content-Type: text/plain

This is the plain text version.

--xyz
Content-Type: text/html

<b>This is the HTML version.</b>

--xyz--`

func TestNormalize_AppliesOffsetOnce(t *testing.T) {
	t.Parallel()

	sent := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	section := &imap.BodySectionName{}
	msg := &imap.Message{
		Envelope: &imap.Envelope{
			Subject: "Hello",
			From:    []*imap.Address{{MailboxName: "alice", HostName: "example.com"}},
			Date:    sent,
		},
	}

	email := Normalize(msg, section, "work")

	want := sent.Add(5*time.Hour + 30*time.Minute)
	if !email.Date.Equal(want) {
		t.Errorf("expected date %v, got %v", want, email.Date)
	}
	if email.Subject != "Hello" {
		t.Errorf("unexpected subject: %q", email.Subject)
	}
	if email.Sender != "alice@example.com" {
		t.Errorf("unexpected sender: %q", email.Sender)
	}
	if email.Folder != "INBOX" {
		t.Errorf("unexpected folder: %q", email.Folder)
	}
	if email.Account != "work" {
		t.Errorf("unexpected account: %q", email.Account)
	}
	if email.Category != "" {
		t.Errorf("category must be unset after normalization, got %q", email.Category)
	}
}

func TestNormalize_SentinelsForMissingEnvelope(t *testing.T) {
	t.Parallel()

	section := &imap.BodySectionName{}
	email := Normalize(&imap.Message{}, section, "work")

	if email.Subject != "(no subject)" {
		t.Errorf("unexpected subject sentinel: %q", email.Subject)
	}
	if email.Sender != "(unknown sender)" {
		t.Errorf("unexpected sender sentinel: %q", email.Sender)
	}
	if email.Body != "" {
		t.Errorf("expected empty body, got %q", email.Body)
	}
	if email.Date.IsZero() {
		t.Error("expected a defaulted date")
	}
}

func TestNormalize_KeepsOnlyPlainTextPart(t *testing.T) {
	t.Parallel()

	section := &imap.BodySectionName{}
	msg := &imap.Message{
		Envelope: &imap.Envelope{Subject: "Multi"},
		Body: map[*imap.BodySectionName]imap.Literal{
			section: bytes.NewBufferString(multipartRaw),
		},
	}

	email := Normalize(msg, section, "work")

	if email.Body != "This is the plain text version.\n" {
		t.Errorf("unexpected body: %q", email.Body)
	}
	if strings.Contains(email.Body, "HTML") {
		t.Errorf("HTML part leaked into body: %q", email.Body)
	}
}

func TestNormalize_ParseFailureYieldsEmptyBody(t *testing.T) {
	t.Parallel()

	section := &imap.BodySectionName{}
	msg := &imap.Message{
		Body: map[*imap.BodySectionName]imap.Literal{
			section: bytes.NewBufferString("not a valid header line\r\n\r\nbroken"),
		},
	}

	email := Normalize(msg, section, "work")

	if email.Body != "" {
		t.Errorf("expected empty body on parse failure, got %q", email.Body)
	}
}

func TestExtractBodies_TextAndHTML(t *testing.T) {
	t.Parallel()

	entity, err := message.Read(strings.NewReader(multipartRaw))
	if err != nil {
		t.Fatalf("failed to parse message: %v", err)
	}

	text, html := extractBodies(entity)

	if text != "This is the plain text version.\n" {
		t.Errorf("unexpected text body: %q", text)
	}
	if html != "<b>This is the HTML version.</b>\n" {
		t.Errorf("unexpected HTML body: %q", html)
	}
}

func TestCollectionName(t *testing.T) {
	t.Parallel()

	if got := CollectionName("alice@example.com"); got != "emails_alice@example.com" {
		t.Errorf("unexpected collection name: %q", got)
	}
}
