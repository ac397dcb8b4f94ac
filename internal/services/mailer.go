package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"storefront/internal/models"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer envoie les e-mails transactionnels
type Mailer interface {
	SendOrderConfirmation(ctx context.Context, order models.Order) error
}

type SMTPMailer struct {
	cfg SMTPConfig
	log zerolog.Logger
}

func NewSMTPMailer(cfg SMTPConfig, log zerolog.Logger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, log: log}
}

func (m *SMTPMailer) SendOrderConfirmation(ctx context.Context, order models.Order) error {
	body, err := RenderOrderConfirmation(order)
	if err != nil {
		return err
	}

	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return err
	}
	if err := msg.To(order.Email); err != nil {
		return err
	}
	msg.Subject(fmt.Sprintf("Confirmation de votre commande %s", shortID(order.ID)))
	msg.SetBodyString(mail.TypeTextHTML, body)

	if order.DeliveryMethod == models.DeliveryPickup {
		png, err := PickupQRCode(order)
		if err != nil {
			return err
		}
		if err := msg.AttachReader("retrait.png", bytes.NewReader(png)); err != nil {
			return err
		}
	}

	client, err := mail.NewClient(m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	m.log.Info().Str("order_id", order.ID).Str("to", order.Email).Msg("📤 Envoi de l'e-mail de confirmation")
	return client.DialAndSendWithContext(ctx, msg)
}

// NopMailer journalise au lieu d'envoyer (SMTP_HOST vide)
type NopMailer struct {
	log zerolog.Logger
}

func NewNopMailer(log zerolog.Logger) *NopMailer {
	return &NopMailer{log: log}
}

func (m *NopMailer) SendOrderConfirmation(ctx context.Context, order models.Order) error {
	m.log.Info().Str("order_id", order.ID).Str("to", order.Email).Msg("📧 SMTP non configuré, e-mail ignoré")
	return nil
}

var orderConfirmationTmpl = template.Must(template.New("order").Funcs(template.FuncMap{
	"price": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"line":  func(item models.OrderItem) float64 { return item.Price * float64(item.Quantity) },
}).Parse(`<!DOCTYPE html>
<html lang="fr">
<head><meta charset="UTF-8"><title>Confirmation de commande</title></head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
  <div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
    <h2>Merci {{.FirstName}}, votre commande est enregistrée</h2>
    <p>Commande n° {{.ID}}</p>
    <table style="width: 100%; border-collapse: collapse;">
      <thead><tr><th>Produit</th><th>Quantité</th><th>Prix</th><th>Total</th></tr></thead>
      <tbody>
      {{range .Items}}<tr>
        <td>{{.Name}}{{if .Size}} ({{.Size}}){{end}}{{if .Color}} {{.Color}}{{end}}</td>
        <td>{{.Quantity}}</td>
        <td>{{price .Price}}</td>
        <td>{{price (line .)}}</td>
      </tr>{{end}}
      </tbody>
      <tfoot><tr><td colspan="3" style="text-align: right; font-weight: bold;">Total :</td><td><strong>{{price .Total}}</strong></td></tr></tfoot>
    </table>
    {{if eq .DeliveryMethod "pickup"}}<p>Retrait en magasin : présentez le QR code joint.</p>{{else}}<p>Livraison à : {{.Address}}</p>{{end}}
    <p>Paiement : {{if eq .PaymentMethod "card"}}carte bancaire{{else}}espèces{{end}}</p>
  </div>
</body>
</html>`))

func RenderOrderConfirmation(order models.Order) (string, error) {
	var buf bytes.Buffer
	if err := orderConfirmationTmpl.Execute(&buf, order); err != nil {
		return "", fmt.Errorf("rendu e-mail commande: %w", err)
	}
	return buf.String(), nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
