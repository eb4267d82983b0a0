package services

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/threepillars/storefront/internal/models"
	"github.com/threepillars/storefront/pkg/logger"
	"gorm.io/gorm"
)

type EmailService struct {
	db *gorm.DB
}

type EmailConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
	UseTLS   bool
}

func NewEmailService(db *gorm.DB) *EmailService {
	return &EmailService{db: db}
}

func (s *EmailService) GetConfig() *EmailConfig {
	config := &EmailConfig{}

	var configs []models.SystemConfig
	s.db.Where("`group` = ?", "email").Find(&configs)

	for _, c := range configs {
		switch c.Key {
		case "email_enabled":
			config.Enabled = c.Value == "true"
		case "email_host":
			config.Host = c.Value
		case "email_port":
			if port, err := strconv.Atoi(c.Value); err == nil {
				config.Port = port
			}
		case "email_username":
			config.Username = c.Value
		case "email_password":
			config.Password = c.Value
		case "email_from":
			config.From = c.Value
		case "email_use_tls":
			config.UseTLS = c.Value == "true"
		}
	}

	if config.Port == 0 {
		config.Port = 587
	}

	return config
}

// SendOrderConfirmation mails the customer after a successful payment.
// A disabled or unconfigured mailer is not an error.
func (s *EmailService) SendOrderConfirmation(order *models.Order, company *models.Company) error {
	config := s.GetConfig()
	if !config.Enabled || config.Host == "" {
		return nil
	}
	if order.CustomerEmail == "" {
		return nil
	}

	subject := fmt.Sprintf("[%s] Order %s confirmed", company.Name, order.Number)
	body := s.buildOrderEmailBody(order, company)

	return s.sendEmail(config, []string{order.CustomerEmail}, subject, body)
}

func (s *EmailService) buildOrderEmailBody(order *models.Order, company *models.Company) string {
	var sb strings.Builder

	sb.WriteString("<html><body style=\"font-family: Arial, sans-serif;\">")
	sb.WriteString(fmt.Sprintf("<h2>Thank you for your order, %s!</h2>", order.CustomerName))
	sb.WriteString(fmt.Sprintf("<p>Your order <strong>%s</strong> has been paid and is being prepared.</p>", order.Number))

	sb.WriteString("<table style=\"border-collapse: collapse; margin-bottom: 20px;\">")
	rows := []struct{ label, value string }{
		{"Order", order.Number},
		{"Shipping", order.ShippingMethod},
		{"Subtotal", "R " + order.Subtotal.StringFixed(2)},
		{"VAT (15%)", "R " + order.VAT.StringFixed(2)},
		{"Shipping Fee", "R " + order.Shipping.StringFixed(2)},
		{"Total", "R " + order.Total.StringFixed(2)},
	}
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("<tr><td style=\"padding: 8px; border: 1px solid #ddd; font-weight: bold;\">%s</td><td style=\"padding: 8px; border: 1px solid #ddd;\">%s</td></tr>", r.label, r.value))
	}
	sb.WriteString("</table>")

	if order.PudoLockerCode != "" {
		sb.WriteString(fmt.Sprintf("<p>Pudo locker: <strong>%s</strong></p>", order.PudoLockerCode))
	}
	if order.TrackingNumber != "" {
		sb.WriteString(fmt.Sprintf("<p>Tracking number: <strong>%s</strong></p>", order.TrackingNumber))
	}

	sb.WriteString(fmt.Sprintf("<hr><p style=\"color: #888; font-size: 12px;\">%s</p>", company.Name))
	sb.WriteString("</body></html>")

	return sb.String()
}

func (s *EmailService) sendEmail(config *EmailConfig, to []string, subject, body string) error {
	from := config.From
	if from == "" {
		from = config.Username
	}

	headers := make(map[string]string)
	headers["From"] = from
	headers["To"] = strings.Join(to, ",")
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"

	var message strings.Builder
	for k, v := range headers {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	message.WriteString("\r\n")
	message.WriteString(body)

	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)

	var auth smtp.Auth
	if config.Username != "" && config.Password != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}

	var err error
	if config.UseTLS {
		err = s.sendEmailTLS(config, addr, auth, from, to, message.String())
	} else {
		err = smtp.SendMail(addr, auth, from, to, []byte(message.String()))
	}

	if err != nil {
		logger.Infof("[Email] Failed to send email: %v", err)
		return err
	}

	logger.Infof("[Email] Sent order confirmation to %v", to)
	return nil
}

func (s *EmailService) sendEmailTLS(config *EmailConfig, addr string, auth smtp.Auth, from string, to []string, message string) error {
	tlsConfig := &tls.Config{
		ServerName: config.Host,
	}

	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, config.Host)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	if err := client.Mail(from); err != nil {
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}

	_, err = w.Write([]byte(message))
	if err != nil {
		return err
	}

	return w.Close()
}
