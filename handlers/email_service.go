package handlers

import (
	"bytes"
	"log"
	"os"
	"strconv"
	"text/template"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"
	"gorm.io/gorm"
	"p9e.in/flytta/config"
	"p9e.in/flytta/models"
)

// EmailService sends templated HTML mail over SMTP. All marketplace mail is
// fire-and-forget: settlement never waits on or fails with delivery.
type EmailService struct {
	db   *gorm.DB
	host string
	port int
	user string
	pass string
	from string
}

func NewEmailService() *EmailService {
	port := 587
	if p, err := strconv.Atoi(os.Getenv("SMTP_PORT")); err == nil && p > 0 {
		port = p
	}
	return &EmailService{
		db:   config.DB,
		host: os.Getenv("SMTP_HOST"),
		port: port,
		user: os.Getenv("SMTP_USER"),
		pass: os.Getenv("SMTP_PASSWORD"),
		from: os.Getenv("SMTP_FROM"),
	}
}

// SendEmail delivers one message synchronously.
func (es *EmailService) SendEmail(to, subject, htmlBody string, attachments []string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", es.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)
	for _, path := range attachments {
		m.Attach(path)
	}

	d := gomail.NewDialer(es.host, es.port, es.user, es.pass)
	return d.DialAndSend(m)
}

// SendAsync delivers in the background and logs failures.
func (es *EmailService) SendAsync(to, subject, htmlBody string, attachments []string) {
	if es.host == "" {
		log.Printf("⚠️  SMTP not configured, skipping mail to %s (%s)", to, subject)
		return
	}
	go func() {
		if err := es.SendEmail(to, subject, htmlBody, attachments); err != nil {
			log.Printf("❌ Failed to send mail to %s (%s): %v", to, subject, err)
		}
	}()
}

// SendToUserAsync resolves the recipient's address first.
func (es *EmailService) SendToUserAsync(userID uuid.UUID, subject, htmlBody string) {
	var user models.User
	if err := es.db.First(&user, "id = ?", userID).Error; err != nil {
		log.Printf("⚠️  Cannot mail user %s: %v", userID, err)
		return
	}
	es.SendAsync(user.Email, subject, htmlBody, nil)
}

// renderEmail executes one of the templates below.
func renderEmail(tmplStr string, data interface{}) string {
	tmpl, err := template.New("email").Parse(tmplStr)
	if err != nil {
		log.Printf("❌ Bad email template: %v", err)
		return ""
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		log.Printf("❌ Failed to render email template: %v", err)
		return ""
	}
	return buf.String()
}

const bidApprovedTemplate = `
<h2>Congratulations, your bid won!</h2>
<p>Your bid for the move from <b>{{.Quotation.PickupAddress}}</b> to <b>{{.Quotation.DeliveryAddress}}</b> was accepted.</p>
<ul>
	<li>Final customer price: {{.Pricing.FinalPrice}} SEK</li>
	<li>Move date: {{.Quotation.MoveDate.Format "2006-01-02"}}</li>
</ul>
<p>The customer's contact details are available in your dashboard once the initial payment is registered.</p>
`

const bidRejectedTemplate = `
<h2>Your bid was not selected</h2>
<p>Another supplier was chosen for the move from <b>{{.Quotation.PickupAddress}}</b> to <b>{{.Quotation.DeliveryAddress}}</b>.</p>
<p>Thank you for bidding. New quotations are published continuously.</p>
`

const quotationAwardedTemplate = `
<h2>Your moving order is confirmed</h2>
<p>We have selected a mover for your move from <b>{{.Quotation.PickupAddress}}</b> to <b>{{.Quotation.DeliveryAddress}}</b>.</p>
<ul>
	<li>Final price: {{.Pricing.FinalPrice}} SEK</li>
	{{if .Pricing.RutDeduction.IsPositive}}<li>Included RUT deduction: {{.Pricing.RutDeduction}} SEK</li>{{end}}
	{{if .Pricing.InsuranceFee.IsPositive}}<li>Extra insurance: {{.Pricing.InsuranceFee}} SEK</li>{{end}}
	<li>Initial payment (20%): {{.Pricing.InitialPayment}} SEK</li>
	<li>Remaining payment: {{.Pricing.RemainingPayment}} SEK</li>
</ul>
<p>Your invoice is attached.</p>
`

func bidApprovedEmail(out *SettlementOutcome) string {
	return renderEmail(bidApprovedTemplate, out)
}

func bidRejectedEmail(out *SettlementOutcome) string {
	return renderEmail(bidRejectedTemplate, out)
}

func quotationAwardedEmail(out *SettlementOutcome) string {
	return renderEmail(quotationAwardedTemplate, out)
}
