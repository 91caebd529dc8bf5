package domain

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	// MailSubject is the fixed subject of every forecast email.
	MailSubject = "Meteo forecast"
	// MailEncoding tells the dispatch service how Mail.Text is encoded.
	MailEncoding = "base64"
)

// MailRequest is the JSON envelope accepted by the mail dispatch service.
type MailRequest struct {
	Mail Mail `json:"mail"`
}

// Mail is a single outgoing message.
type Mail struct {
	From     string   `json:"from" validate:"required"`
	To       []string `json:"to" validate:"required,min=1,dive,required"`
	Subject  string   `json:"subject" validate:"required"`
	Text     string   `json:"text" validate:"required,base64"`
	Encoding string   `json:"encoding" validate:"required,eq=base64"`
}

var validate = validator.New()

// ParseRecipients splits a comma-separated recipient list, trimming each
// entry and dropping the ones left empty. Order is preserved.
func ParseRecipients(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// EncodeReport base64-encodes the rendered report for transport.
func EncodeReport(report string) string {
	return base64.StdEncoding.EncodeToString([]byte(report))
}

// NewMailRequest assembles the dispatch envelope for an already encoded body.
func NewMailRequest(from string, to []string, encodedText string) MailRequest {
	return MailRequest{
		Mail: Mail{
			From:     from,
			To:       to,
			Subject:  MailSubject,
			Text:     encodedText,
			Encoding: MailEncoding,
		},
	}
}

// MarshalMailRequest validates the envelope and serializes it to JSON.
// Failures are wrapped in ErrSerialization.
func MarshalMailRequest(req MailRequest) ([]byte, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: invalid mail request: %v", ErrSerialization, err)
	}
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal mail request: %v", ErrSerialization, err)
	}
	return data, nil
}
