package email_test

import (
	"bufio"
	"context"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cernol/formintake/pkg/email"
)

// fakeSMTP accepts one message and records the DATA section.
type fakeSMTP struct {
	ln   net.Listener
	mu   sync.Mutex
	data strings.Builder
	rcpt []string
	done chan struct{}
}

func startFakeSMTP(t *testing.T) *fakeSMTP {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	f := &fakeSMTP{ln: ln, done: make(chan struct{})}
	go f.serve()
	t.Cleanup(func() { _ = ln.Close() })
	return f
}

func (f *fakeSMTP) serve() {
	defer close(f.done)
	conn, err := f.ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	r := bufio.NewReader(conn)
	reply := func(s string) { _, _ = conn.Write([]byte(s + "\r\n")) }
	reply("220 localhost ESMTP")
	inData := false
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		if inData {
			if line == ".\r\n" {
				inData = false
				reply("250 OK queued")
				continue
			}
			f.mu.Lock()
			f.data.WriteString(line)
			f.mu.Unlock()
			continue
		}
		cmd := strings.ToUpper(strings.TrimSpace(line))
		switch {
		case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
			reply("250 localhost")
		case strings.HasPrefix(cmd, "MAIL FROM"):
			reply("250 OK")
		case strings.HasPrefix(cmd, "RCPT TO"):
			f.mu.Lock()
			f.rcpt = append(f.rcpt, strings.TrimSpace(line))
			f.mu.Unlock()
			reply("250 OK")
		case cmd == "DATA":
			inData = true
			reply("354 go ahead")
		case cmd == "QUIT":
			reply("221 bye")
			return
		default:
			reply("250 OK")
		}
	}
}

func TestSMTPSender(t *testing.T) {
	t.Parallel()

	t.Run("config errors", func(t *testing.T) {
		t.Parallel()
		_, err := email.NewSMTPSender(email.Config{From: "a@b.co"})
		assert.ErrorIs(t, err, email.ErrInvalidConfig)
	})

	t.Run("delivers message", func(t *testing.T) {
		t.Parallel()
		f := startFakeSMTP(t)
		host, port, err := net.SplitHostPort(f.ln.Addr().String())
		require.NoError(t, err)
		p, _ := strconv.Atoi(port)

		s, err := email.NewSMTPSender(email.Config{SMTPHost: host, SMTPPort: p, From: "noreply@cernol.example", FromName: "Cernol Chemicals"})
		require.NoError(t, err)

		id, err := s.Send(context.Background(), validMessage())
		require.NoError(t, err)
		<-f.done

		assert.True(t, strings.HasSuffix(id, "@cernol.example>"))
		f.mu.Lock()
		defer f.mu.Unlock()
		assert.Len(t, f.rcpt, 1)
		data := f.data.String()
		assert.Contains(t, data, "Subject: Hello")
		assert.Contains(t, data, "Reply-To: admin@example.com")
		assert.Contains(t, data, "Message-ID: "+id)
		assert.Contains(t, data, `From: "Cernol Chemicals" <noreply@cernol.example>`)
	})

	t.Run("unreachable relay", func(t *testing.T) {
		t.Parallel()
		s, err := email.NewSMTPSender(email.Config{SMTPHost: "127.0.0.1", SMTPPort: 1, From: "a@b.co"})
		require.NoError(t, err)
		_, err = s.Send(context.Background(), validMessage())
		assert.ErrorIs(t, err, email.ErrFailedToSendEmail)
	})
}
