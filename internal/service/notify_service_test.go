package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parknest/internal/entities"
)

type recordingSender struct {
	sent   []*mail.SGMailV3
	status int
	err    error
}

func (r *recordingSender) Send(email *mail.SGMailV3) (int, string, error) {
	r.sent = append(r.sent, email)
	return r.status, "", r.err
}

func newTestEmailNotifier(sender emailSender) *EmailNotifier {
	n := NewEmailNotifier("key", "hello@parknest.app", "ParkNest")
	n.sender = sender
	n.dispatch = func(fn func()) { fn() }
	return n
}

func TestEmailNotifier_ListingCreated(t *testing.T) {
	sender := &recordingSender{status: 202}
	n := newTestEmailNotifier(sender)

	listing := entities.Listing{Title: "Driveway", Address: "123 Main St", Price: "8", CreatedAt: time.Now()}
	require.NoError(t, n.ListingCreated(context.Background(), "a@b.com", listing))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, `Your parking space "Driveway" is listed`, sender.sent[0].Subject)
	assert.Equal(t, "hello@parknest.app", sender.sent[0].From.Address)
	require.Len(t, sender.sent[0].Personalizations, 1)
	assert.Equal(t, "a@b.com", sender.sent[0].Personalizations[0].To[0].Address)
}

func TestEmailNotifier_SendFailuresAreSwallowed(t *testing.T) {
	sender := &recordingSender{err: errors.New("timeout")}
	n := newTestEmailNotifier(sender)

	assert.NoError(t, n.Welcome(context.Background(), "a@b.com", "Ana", entities.UserTypeOwner))
	assert.Len(t, sender.sent, 1)
	assert.Equal(t, "Welcome to ParkNest", sender.sent[0].Subject)
}

func TestNewNotifier_FallsBackToNop(t *testing.T) {
	assert.IsType(t, NopNotifier{}, NewNotifier("", "hello@parknest.app", "ParkNest"))
	assert.IsType(t, &EmailNotifier{}, NewNotifier("key", "hello@parknest.app", "ParkNest"))
}

func TestEmailNotifier_EscapesListingHTML(t *testing.T) {
	sender := &recordingSender{status: 202}
	n := newTestEmailNotifier(sender)

	listing := entities.Listing{Title: "<b>Driveway</b>", Address: "123 Main St", Price: "8"}
	require.NoError(t, n.ListingCreated(context.Background(), "a@b.com", listing))

	require.Len(t, sender.sent, 1)
	require.Len(t, sender.sent[0].Content, 2)
	html := sender.sent[0].Content[1]
	assert.Equal(t, "text/html", html.Type)
	assert.Contains(t, html.Value, "&lt;b&gt;Driveway&lt;/b&gt;")
	assert.Contains(t, html.Value, "Price per hour: $8")
}
