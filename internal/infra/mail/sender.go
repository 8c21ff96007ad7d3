package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/smtp"
	"strconv"

	"gopkg.in/gomail.v2"
)

// implicitTLSPort is the SMTPS port; every other port upgrades with STARTTLS
// when the relay offers it.
const implicitTLSPort = 465

// SMTPSender delivers messages over SMTP. Each Send is one session bound to
// its context: cancellation or deadline closes the connection.
type SMTPSender struct {
	From string

	host     string
	port     int
	user     string
	password string
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{
		From:     cfg.From,
		host:     cfg.Host,
		port:     cfg.Port,
		user:     cfg.User,
		password: cfg.Password,
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg *Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m, err := s.Build(msg)
	if err != nil {
		return err
	}

	if err := s.deliver(ctx, m); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = errors.Join(ctxErr, err)
		}
		return fmt.Errorf("smtp send failed: %w", err)
	}
	return nil
}

func (s *SMTPSender) deliver(ctx context.Context, m *gomail.Message) error {
	var d net.Dialer
	raw, err := d.DialContext(ctx, "tcp", net.JoinHostPort(s.host, strconv.Itoa(s.port)))
	if err != nil {
		return err
	}
	defer raw.Close()

	stop := context.AfterFunc(ctx, func() { raw.Close() })
	defer stop()

	conn := raw
	tlsConfig := &tls.Config{ServerName: s.host}
	if s.port == implicitTLSPort {
		conn = tls.Client(raw, tlsConfig)
	}

	c, err := smtp.NewClient(conn, s.host)
	if err != nil {
		return err
	}
	defer c.Close()

	if s.port != implicitTLSPort {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(tlsConfig); err != nil {
				return err
			}
		}
	}

	if s.user != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(smtp.PlainAuth("", s.user, s.password, s.host)); err != nil {
				return err
			}
		}
	}

	// gomail derives the envelope from the From, To and Cc headers.
	send := gomail.SendFunc(func(from string, to []string, body io.WriterTo) error {
		if err := c.Mail(from); err != nil {
			return err
		}
		for _, rcpt := range to {
			if err := c.Rcpt(rcpt); err != nil {
				return err
			}
		}
		w, err := c.Data()
		if err != nil {
			return err
		}
		if _, err := body.WriteTo(w); err != nil {
			w.Close()
			return err
		}
		return w.Close()
	})
	if err := gomail.Send(send, m); err != nil {
		return err
	}
	return c.Quit()
}

// Build converts msg into a gomail message without sending it.
func (s *SMTPSender) Build(msg *Message) (*gomail.Message, error) {
	if msg == nil || len(msg.To) == 0 {
		return nil, errors.New("message has no recipient")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", msg.To...)
	if len(msg.Cc) > 0 {
		m.SetHeader("Cc", msg.Cc...)
	}
	if msg.ReplyTo != "" {
		m.SetHeader("Reply-To", msg.ReplyTo)
	}
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTMLBody)

	for _, a := range msg.Attachments {
		settings := []gomail.FileSetting{gomail.SetCopyFunc(copyBytes(a.Data))}
		if a.Inline {
			cid := a.ContentID
			if cid == "" {
				cid = a.Filename
			}
			settings = append(settings, gomail.SetHeader(map[string][]string{
				"Content-ID": {"<" + cid + ">"},
			}))
			m.Embed(a.Filename, settings...)
			continue
		}
		m.Attach(a.Filename, settings...)
	}

	return m, nil
}

func copyBytes(data []byte) func(io.Writer) error {
	return func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	}
}
