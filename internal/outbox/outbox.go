// Package outbox implements the send action for a drafted proposal. Delivery
// itself belongs to the host; the package decides whether a draft may go out.
package outbox

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/joseph-ayodele/rfp-desk/constants"
	"github.com/joseph-ayodele/rfp-desk/internal/common"
	"github.com/joseph-ayodele/rfp-desk/internal/integrity"
)

// Request is what the send action consumes.
type Request struct {
	ContactEmail string
	ClientName   string
	Draft        string
	Index        int
}

// Message is a composed outgoing email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Receipt reports the outcome of a send.
type Receipt struct {
	Status     constants.SendStatus
	Assessment integrity.Assessment
	// Reference is whatever the mailer returned (a mailto URL, a message id).
	Reference string
}

// Mailer hands a message to the host environment.
type Mailer interface {
	Deliver(ctx context.Context, msg Message) (string, error)
}

// MailtoMailer builds a mailto: URL and passes it to Open, if set.
type MailtoMailer struct {
	Open func(ctx context.Context, link string) error
}

func (m MailtoMailer) Deliver(ctx context.Context, msg Message) (string, error) {
	link := MailtoURL(msg)
	if m.Open != nil {
		if err := m.Open(ctx, link); err != nil {
			return "", fmt.Errorf("open mailto link: %w", err)
		}
	}
	return link, nil
}

// MailtoURL encodes msg as a mailto: link. Spaces are encoded as %20.
func MailtoURL(msg Message) string {
	return "mailto:" + msg.To +
		"?subject=" + encodeComponent(msg.Subject) +
		"&body=" + encodeComponent(msg.Body)
}

func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Subject returns the proposal subject line for a client.
func Subject(client string) string {
	return "Proposal for " + strings.TrimSpace(client)
}

type Sender struct {
	mailer Mailer
	log    *slog.Logger
}

func NewSender(m Mailer, logger *slog.Logger) *Sender {
	if m == nil {
		m = MailtoMailer{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sender{mailer: m, log: logger}
}

// Send delivers the draft unless the integrity index blocks it, in which case
// the receipt carries review_required and the error wraps common.ErrReviewRequired.
func (s *Sender) Send(ctx context.Context, req Request) (Receipt, error) {
	if err := common.NewValidator().
		Field("contact_email", req.ContactEmail, common.Required, common.Email).
		Field("draft", req.Draft, common.Required).
		Field("index", req.Index, common.IntRange(0, 100)).
		Err(); err != nil {
		return Receipt{}, err
	}

	a := integrity.Assess(req.Index)
	receipt := Receipt{Assessment: a}
	if !a.SendAllowed {
		receipt.Status = constants.SendStatusReviewRequired
		s.log.Warn("outbox.send.blocked", "index", a.Index, "band", a.Band, "to", req.ContactEmail)
		return receipt, fmt.Errorf("integrity index %d below %d: %w", a.Index, constants.IntegritySendThreshold, common.ErrReviewRequired)
	}

	ref, err := s.mailer.Deliver(ctx, Message{
		To:      strings.TrimSpace(req.ContactEmail),
		Subject: Subject(req.ClientName),
		Body:    req.Draft,
	})
	if err != nil {
		s.log.Error("outbox.send.failed", "to", req.ContactEmail, "error", err)
		return receipt, fmt.Errorf("deliver proposal: %w", err)
	}
	receipt.Status = constants.SendStatusSent
	receipt.Reference = ref
	s.log.Info("outbox.send.ok", "to", req.ContactEmail, "index", a.Index, "band", a.Band)
	return receipt, nil
}
