package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"parknest/internal/entities"
)

// Notifier tells users about things that happened to their profile.
type Notifier interface {
	Welcome(ctx context.Context, email, name string, userType entities.UserType) error
	ListingCreated(ctx context.Context, email string, listing entities.Listing) error
}

// NopNotifier drops every notification.
type NopNotifier struct{}

func (NopNotifier) Welcome(context.Context, string, string, entities.UserType) error { return nil }

func (NopNotifier) ListingCreated(context.Context, string, entities.Listing) error { return nil }

type emailSender interface {
	Send(email *mail.SGMailV3) (statusCode int, body string, err error)
}

type sendGridSender struct {
	client *sendgrid.Client
}

func (s sendGridSender) Send(email *mail.SGMailV3) (int, string, error) {
	resp, err := s.client.Send(email)
	if err != nil {
		return 0, "", err
	}
	return resp.StatusCode, resp.Body, nil
}

var (
	welcomeHTML = template.Must(template.New("welcome").Parse(
		`<p>Hello {{.Name}},</p><p>Your ParkNest account is ready. You can now {{.Role}}.</p><p>The ParkNest team</p>`))
	listingHTML = template.Must(template.New("listing").Parse(
		`<p>Your parking space has been listed successfully!</p>` +
			`<ul><li>Title: {{.Title}}</li><li>Address: {{.Address}}</li><li>Price per hour: ${{.Price}}</li></ul>`))
)

func renderHTML(tmpl *template.Template, data any) string {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		log.Printf("Error rendering %s e-mail: %v", tmpl.Name(), err)
	}
	return buf.String()
}

// EmailNotifier sends notifications through SendGrid. Sending happens in the
// background; failures are only logged.
type EmailNotifier struct {
	sender   emailSender
	from     *mail.Email
	dispatch func(func())
}

func NewEmailNotifier(apiKey, fromEmail, fromName string) *EmailNotifier {
	return &EmailNotifier{
		sender:   sendGridSender{client: sendgrid.NewSendClient(apiKey)},
		from:     mail.NewEmail(fromName, fromEmail),
		dispatch: func(fn func()) { go fn() },
	}
}

// NewNotifier returns an EmailNotifier when SendGrid is configured and a
// NopNotifier otherwise.
func NewNotifier(apiKey, fromEmail, fromName string) Notifier {
	if apiKey == "" || fromEmail == "" {
		log.Println("WARNING: SENDGRID_API_KEY or SENDGRID_FROM_EMAIL not set. E-mails will not be sent.")
		return NopNotifier{}
	}
	return NewEmailNotifier(apiKey, fromEmail, fromName)
}

func (n *EmailNotifier) Welcome(_ context.Context, email, name string, userType entities.UserType) error {
	role := "find parking near your destination"
	if userType == entities.UserTypeOwner {
		role = "list your parking space and start earning"
	}
	subject := "Welcome to ParkNest"
	plain := fmt.Sprintf("Hello %s,\n\nYour ParkNest account is ready. You can now %s.\n\nThe ParkNest team", name, role)
	html := renderHTML(welcomeHTML, struct{ Name, Role string }{name, role})
	n.send(email, name, subject, plain, html)
	return nil
}

func (n *EmailNotifier) ListingCreated(_ context.Context, email string, listing entities.Listing) error {
	subject := fmt.Sprintf("Your parking space %q is listed", listing.Title)
	plain := fmt.Sprintf(
		"Your parking space has been listed successfully!\n\n"+
			"Title: %s\n"+
			"Address: %s\n"+
			"Price per hour: $%s\n"+
			"Listed at: %s\n",
		listing.Title, listing.Address, listing.Price, listing.CreatedAt.Format("02 Jan 2006 15:04 MST"),
	)
	html := renderHTML(listingHTML, listing)
	n.send(email, "", subject, plain, html)
	return nil
}

func (n *EmailNotifier) send(toEmail, toName, subject, plain, html string) {
	message := mail.NewSingleEmail(n.from, subject, mail.NewEmail(toName, toEmail), plain, html)
	n.dispatch(func() {
		status, body, err := n.sender.Send(message)
		if err != nil {
			log.Printf("Error sending e-mail to %s via SendGrid: %v", toEmail, err)
			return
		}
		if status < 200 || status >= 300 {
			log.Printf("SendGrid returned status %d for %s: %s", status, toEmail, body)
			return
		}
		log.Printf("E-mail sent to %s (subject: %s)", toEmail, subject)
	})
}
