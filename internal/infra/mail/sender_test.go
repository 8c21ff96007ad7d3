package mail

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMTPSender_Build(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "localhost", Port: 2525, From: "events@example.com"})

	m, err := s.Build(&Message{
		To:       []string{"asha@example.com"},
		Cc:       []string{"sales@example.com", "ops@example.com"},
		ReplyTo:  "sales@example.com",
		Subject:  "Thank You for Your Interest in Looms Solutions",
		HTMLBody: "<p>Hello</p>",
		Attachments: []Attachment{
			{Filename: "logo.jpeg", Data: []byte("jpeg-bytes"), Inline: true, ContentID: "brand-logo"},
			{Filename: "looms.pdf", Data: []byte("%PDF-1.4")},
		},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()

	assert.Contains(t, raw, "From: events@example.com")
	assert.Contains(t, raw, "To: asha@example.com")
	assert.Contains(t, raw, "Cc: sales@example.com, ops@example.com")
	assert.Contains(t, raw, "Reply-To: sales@example.com")
	assert.Contains(t, raw, "Subject: Thank You for Your Interest in Looms Solutions")
	assert.Contains(t, raw, "Content-ID: <brand-logo>")
	assert.Contains(t, raw, "Content-Disposition: attachment")
	assert.Contains(t, raw, "looms.pdf")
	assert.Contains(t, raw, "multipart/related")
}

func TestSMTPSender_BuildWithoutRecipient(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{From: "events@example.com"})

	_, err := s.Build(&Message{Subject: "x"})
	assert.EqualError(t, err, "message has no recipient")
}

func TestSMTPSender_SendHonoursCancelledContext(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "127.0.0.1", Port: 1, From: "events@example.com"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Send(ctx, &Message{To: []string{"asha@example.com"}})
	assert.ErrorIs(t, err, context.Canceled)
}

// listenRelay serves one connection with handle and returns the port.
func listenRelay(t *testing.T, handle func(net.Conn)) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		handle(conn)
	}()
	return ln.Addr().(*net.TCPAddr).Port
}

func TestSMTPSender_SendGivesUpOnStalledRelay(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	// Accepts and never greets.
	port := listenRelay(t, func(net.Conn) { <-release })
	s := NewSMTPSender(SMTPConfig{Host: "127.0.0.1", Port: port, From: "events@example.com"})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := s.Send(ctx, &Message{To: []string{"asha@example.com"}, Subject: "Hi", HTMLBody: "<p>Hi</p>"})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestSMTPSender_SendDeliversEnvelopeAndBody(t *testing.T) {
	type session struct {
		from  string
		rcpts []string
		data  string
	}
	done := make(chan session, 1)

	port := listenRelay(t, func(conn net.Conn) {
		var got session
		r := bufio.NewReader(conn)
		reply := func(line string) { fmt.Fprintf(conn, "%s\r\n", line) }

		reply("220 relay.test ESMTP")
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			line = strings.TrimRight(line, "\r\n")
			switch {
			case strings.HasPrefix(line, "EHLO"):
				reply("250 relay.test")
			case strings.HasPrefix(line, "MAIL FROM:"):
				got.from = strings.TrimPrefix(line, "MAIL FROM:")
				reply("250 OK")
			case strings.HasPrefix(line, "RCPT TO:"):
				got.rcpts = append(got.rcpts, strings.TrimPrefix(line, "RCPT TO:"))
				reply("250 OK")
			case line == "DATA":
				reply("354 go ahead")
				var body strings.Builder
				for {
					l, err := r.ReadString('\n')
					if err != nil {
						return
					}
					if l == ".\r\n" {
						break
					}
					body.WriteString(l)
				}
				got.data = body.String()
				reply("250 queued")
			case line == "QUIT":
				reply("221 bye")
				done <- got
				return
			default:
				reply("502 unrecognised")
			}
		}
	})

	s := NewSMTPSender(SMTPConfig{Host: "127.0.0.1", Port: port, From: "events@example.com"})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := s.Send(ctx, &Message{
		To:       []string{"asha@example.com"},
		Cc:       []string{"sales@example.com"},
		Subject:  "Thank You",
		HTMLBody: "<p>Hello</p>",
	})
	require.NoError(t, err)

	select {
	case got := <-done:
		assert.Equal(t, "<events@example.com>", got.from)
		assert.Equal(t, []string{"<asha@example.com>", "<sales@example.com>"}, got.rcpts)
		assert.Contains(t, got.data, "Subject: Thank You")
		assert.Contains(t, got.data, "<p>Hello</p>")
	case <-time.After(time.Second):
		t.Fatal("relay never saw QUIT")
	}
}

func TestRenderFollowUp(t *testing.T) {
	body, err := RenderFollowUp(FollowUpEmailData{
		VisitorName:    "Asha <script>",
		ExhibitionName: "TexFair 2026",
		ProductNames:   "Looms, Dyes",
		LogoCID:        "brand-logo",
		Signature:      Signature{Name: "Ravi", Phone: "+91 90000 00000"},
	})
	require.NoError(t, err)

	assert.Contains(t, body, "Dear Asha &lt;script&gt;,")
	assert.Contains(t, body, "TexFair 2026")
	assert.Contains(t, body, "Looms, Dyes")
	assert.Contains(t, body, `src="cid:brand-logo"`)
	assert.Contains(t, body, "Mobile: &#43;91 90000 00000")
	assert.NotContains(t, body, "Web:")
}

func TestRenderFollowUp_WithoutLogo(t *testing.T) {
	body, err := RenderFollowUp(FollowUpEmailData{VisitorName: "Asha", ProductNames: "our solutions"})
	require.NoError(t, err)
	assert.NotContains(t, body, "cid:")
}
