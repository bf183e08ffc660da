package imapsync

import (
	"io"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-message"

	"github.com/adityaparmar/onebox/internal/core"
)

const (
	noSubject     = "(no subject)"
	unknownSender = "(unknown sender)"
	inboxFolder   = "INBOX"
)

// CollectionName derives the search collection for an account.
func CollectionName(account string) string {
	return "emails_" + account
}

// Normalize converts a fetched IMAP message into the canonical record.
// Missing envelope fields fall back to sentinel values, the body keeps
// only the plain-text part, and the fixed time offset is applied to the
// envelope date exactly once. The category is left unset.
func Normalize(msg *imap.Message, section *imap.BodySectionName, account string) *core.Email {
	subject := noSubject
	sender := unknownSender
	date := time.Now()

	if msg.Envelope != nil {
		if msg.Envelope.Subject != "" {
			subject = msg.Envelope.Subject
		}
		if len(msg.Envelope.From) > 0 && msg.Envelope.From[0] != nil {
			sender = msg.Envelope.From[0].Address()
		}
		if !msg.Envelope.Date.IsZero() {
			date = msg.Envelope.Date
		}
	}

	body := ""
	if r := msg.GetBody(section); r != nil {
		body = extractTextBody(r)
	}

	return &core.Email{
		Subject: subject,
		Sender:  sender,
		Body:    body,
		Date:    date.Add(core.TimeOffset),
		Folder:  inboxFolder,
		Account: account,
	}
}

// extractTextBody parses the raw message and returns its plain-text
// part. HTML parts are discarded and any parse failure yields an empty
// body.
func extractTextBody(r io.Reader) string {
	entity, err := message.Read(r)
	if err != nil {
		return ""
	}
	text, _ := extractBodies(entity)
	return text
}

// extractBodies walks a MIME entity and collects the text and HTML
// bodies from multipart/alternative or single-part messages.
func extractBodies(entity *message.Entity) (string, string) {
	var text, html string

	mediaType, _, _ := entity.Header.ContentType()

	if strings.HasPrefix(mediaType, "multipart/") {
		mr := entity.MultipartReader()

		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				break // skip faulty parts
			}

			partMediaType, _, _ := part.Header.ContentType()
			disposition, _, _ := part.Header.ContentDisposition()
			if disposition == "attachment" {
				continue
			}

			body, err := io.ReadAll(part.Body)
			if err != nil {
				continue
			}

			switch partMediaType {
			case "text/plain":
				text = string(body)
			case "text/html":
				html = string(body)
			}
		}
	} else {
		body, err := io.ReadAll(entity.Body)
		if err != nil {
			return "", ""
		}

		switch mediaType {
		case "text/html":
			html = string(body)
		default:
			// Untyped single-part messages are treated as plain text.
			text = string(body)
		}
	}

	return text, html
}
