package whatsapp

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/PabloGalante/taborra-agent/internal/textutil"
)

var (
	ErrMissingSignature = errors.New("missing webhook signature")
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// SignatureHeader carries the HMAC of the raw request body.
const SignatureHeader = "X-Hub-Signature-256"

// InboundMessage is one user message extracted from a webhook payload.
type InboundMessage struct {
	ID    string
	Phone string
	Name  string
	Text  string
}

type webhookPayload struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Contacts []struct {
					Profile struct {
						Name string `json:"name"`
					} `json:"profile"`
				} `json:"contacts"`
				Messages []struct {
					ID   string `json:"id"`
					From string `json:"from"`
					Type string `json:"type"`
					Text struct {
						Body string `json:"body"`
					} `json:"text"`
					Interactive struct {
						Type        string `json:"type"`
						ButtonReply struct {
							ID    string `json:"id"`
							Title string `json:"title"`
						} `json:"button_reply"`
					} `json:"interactive"`
				} `json:"messages"`
				Statuses []json.RawMessage `json:"statuses"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// ParseWebhook extracts the first user message of a payload. ok is false for
// payloads carrying no usable message (status callbacks, media, empty text).
func ParseWebhook(body []byte) (msg InboundMessage, ok bool, err error) {
	var p webhookPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return InboundMessage{}, false, fmt.Errorf("decode webhook payload: %w", err)
	}
	if len(p.Entry) == 0 || len(p.Entry[0].Changes) == 0 {
		return InboundMessage{}, false, nil
	}

	value := p.Entry[0].Changes[0].Value
	if len(value.Statuses) > 0 || len(value.Messages) == 0 {
		return InboundMessage{}, false, nil
	}

	m := value.Messages[0]
	msg.ID = m.ID
	msg.Phone = textutil.NormalizePhone(m.From)
	switch m.Type {
	case "text":
		msg.Text = m.Text.Body
	case "interactive":
		if m.Interactive.Type == "button_reply" {
			msg.Text = m.Interactive.ButtonReply.Title
		}
	}

	msg.Name = "Usuario"
	if len(value.Contacts) > 0 && value.Contacts[0].Profile.Name != "" {
		msg.Name = value.Contacts[0].Profile.Name
	}

	if msg.ID == "" || msg.Phone == "" || strings.TrimSpace(msg.Text) == "" {
		return InboundMessage{}, false, nil
	}
	return msg, true, nil
}

// VerifySubscription answers the GET handshake. It returns the challenge to
// echo and whether the request is valid.
func VerifySubscription(mode, token, challenge, verifyToken string) (string, bool) {
	if mode != "subscribe" || challenge == "" || verifyToken == "" {
		return "", false
	}
	if !hmac.Equal([]byte(token), []byte(verifyToken)) {
		return "", false
	}
	return challenge, true
}

// VerifySignature checks the "sha256=<hex>" header against the app secret.
func VerifySignature(appSecret, signature string, body []byte) error {
	if signature == "" {
		return ErrMissingSignature
	}

	mac := hmac.New(sha256.New, []byte(appSecret))
	_, _ = mac.Write(body)
	expected := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidSignature
	}
	return nil
}
