package smtp

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"

	"github.com/dmitrymomot/mailrelay/pkg/mailer"
)

type fakePool struct {
	dials    atomic.Int32
	closes   atomic.Int32
	sends    atomic.Int32
	inFlight atomic.Int32
	peak     atomic.Int32
	dialErr  error
	sendErr  func(n int32) error
	delay    time.Duration
}

type fakeClient struct {
	pool *fakePool
}

func (p *fakePool) factory() (client, error) {
	return &fakeClient{pool: p}, nil
}

func (c *fakeClient) DialWithContext(context.Context) error {
	if c.pool.dialErr != nil {
		return c.pool.dialErr
	}
	c.pool.dials.Add(1)
	return nil
}

func (c *fakeClient) Send(...*mail.Msg) error {
	n := c.pool.inFlight.Add(1)
	defer c.pool.inFlight.Add(-1)
	for {
		p := c.pool.peak.Load()
		if n <= p || c.pool.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if c.pool.delay > 0 {
		time.Sleep(c.pool.delay)
	}
	count := c.pool.sends.Add(1)
	if c.pool.sendErr != nil {
		return c.pool.sendErr(count)
	}
	return nil
}

func (c *fakeClient) Close() error {
	c.pool.closes.Add(1)
	return nil
}

func newTestTransport(t *testing.T, cfg Config, pool *fakePool) *Transport {
	t.Helper()
	if cfg.Host == "" {
		cfg.Host = "smtp.example.com"
	}
	tr, err := New(cfg)
	require.NoError(t, err)
	tr.newClient = pool.factory
	return tr
}

func testEmail() *mailer.Email {
	return &mailer.Email{
		From:    "noreply@example.com",
		To:      []string{"ann@example.com"},
		Subject: "Hello",
		Text:    "plain",
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := New(Config{})
	require.ErrorIs(t, err, ErrMissingHost)

	tr, err := New(Config{Host: "smtp.example.com"})
	require.NoError(t, err)
	assert.Equal(t, 587, tr.cfg.Port)
	assert.Equal(t, 5, tr.cfg.MaxConnections)
	assert.Equal(t, 100, tr.cfg.MaxMessages)
	assert.Equal(t, 5, cap(tr.slots))
}

func TestTransport_Send(t *testing.T) {
	t.Parallel()

	t.Run("returns a message id in angle brackets", func(t *testing.T) {
		t.Parallel()

		tr := newTestTransport(t, Config{}, &fakePool{})
		id, err := tr.Send(context.Background(), testEmail())
		require.NoError(t, err)
		assert.Regexp(t, `^<[0-9a-f-]{36}@example\.com>$`, id)
	})

	t.Run("reuses a connection until the message limit", func(t *testing.T) {
		t.Parallel()

		pool := &fakePool{}
		tr := newTestTransport(t, Config{MaxConnections: 1, MaxMessages: 3}, pool)

		for range 7 {
			_, err := tr.Send(context.Background(), testEmail())
			require.NoError(t, err)
		}

		assert.Equal(t, int32(3), pool.dials.Load())
		assert.Equal(t, int32(2), pool.closes.Load())
		assert.Equal(t, int32(7), pool.sends.Load())
	})

	t.Run("drops the connection after a send error", func(t *testing.T) {
		t.Parallel()

		pool := &fakePool{sendErr: func(n int32) error {
			if n == 1 {
				return errors.New("421 service not available")
			}
			return nil
		}}
		tr := newTestTransport(t, Config{MaxConnections: 1}, pool)

		_, err := tr.Send(context.Background(), testEmail())
		require.EqualError(t, err, "421 service not available")

		_, err = tr.Send(context.Background(), testEmail())
		require.NoError(t, err)
		assert.Equal(t, int32(2), pool.dials.Load())
	})

	t.Run("caps concurrent connections", func(t *testing.T) {
		t.Parallel()

		pool := &fakePool{delay: 5 * time.Millisecond}
		tr := newTestTransport(t, Config{MaxConnections: 2}, pool)

		var wg sync.WaitGroup
		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := tr.Send(context.Background(), testEmail())
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		assert.LessOrEqual(t, pool.peak.Load(), int32(2))
		assert.LessOrEqual(t, pool.dials.Load(), int32(2))
	})

	t.Run("dial failure", func(t *testing.T) {
		t.Parallel()

		pool := &fakePool{dialErr: errors.New("connection refused")}
		tr := newTestTransport(t, Config{}, pool)

		_, err := tr.Send(context.Background(), testEmail())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("rate limiter honours cancellation", func(t *testing.T) {
		t.Parallel()

		tr := newTestTransport(t, Config{RateLimit: 1}, &fakePool{})
		_, err := tr.Send(context.Background(), testEmail())
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = tr.Send(ctx, testEmail())
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("requires a sender", func(t *testing.T) {
		t.Parallel()

		tr := newTestTransport(t, Config{}, &fakePool{})
		email := testEmail()
		email.From = ""
		_, err := tr.Send(context.Background(), email)
		require.ErrorIs(t, err, ErrNoSender)
	})

	t.Run("closed transport", func(t *testing.T) {
		t.Parallel()

		pool := &fakePool{}
		tr := newTestTransport(t, Config{MaxConnections: 2}, pool)
		_, err := tr.Send(context.Background(), testEmail())
		require.NoError(t, err)

		require.NoError(t, tr.Close(context.Background()))
		assert.Equal(t, int32(1), pool.closes.Load())

		_, err = tr.Send(context.Background(), testEmail())
		require.ErrorIs(t, err, ErrClosed)
	})
}

func TestTransport_Verify(t *testing.T) {
	t.Parallel()

	pool := &fakePool{}
	tr := newTestTransport(t, Config{}, pool)
	require.NoError(t, tr.Verify(context.Background()))
	assert.Equal(t, int32(1), pool.dials.Load())
	assert.Equal(t, int32(1), pool.closes.Load())

	failing := newTestTransport(t, Config{}, &fakePool{dialErr: errors.New("535 authentication failed")})
	require.EqualError(t, failing.Verify(context.Background()), "535 authentication failed")
}

func TestTransport_BuildMessage(t *testing.T) {
	t.Parallel()

	tr := newTestTransport(t, Config{}, &fakePool{})
	email := &mailer.Email{
		From:    "Shop <orders@shop.example>",
		To:      []string{"ann@example.com", "bob@example.com"},
		CC:      []string{"cc@example.com"},
		Subject: "Receipt",
		Text:    "plain body",
		HTML:    "<p>html body</p>",
		Headers: map[string]string{"X-Campaign": "spring"},
		Attachments: []mailer.Attachment{
			{Filename: "receipt.txt", Content: []byte("total: 10")},
		},
	}

	msg, id, err := tr.buildMessage(email)
	require.NoError(t, err)
	assert.Contains(t, id, "@shop.example>")

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)

	raw := buf.String()
	assert.Contains(t, raw, "Subject: Receipt")
	assert.Contains(t, raw, "Message-ID: "+id)
	assert.Contains(t, raw, "X-Campaign: spring")
	assert.Contains(t, raw, "multipart/alternative")
	assert.Contains(t, raw, `filename="receipt.txt"`)
}

func TestMessageIDDomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from, host, want string
	}{
		{"a@x.io", "smtp.y.io", "x.io"},
		{"Ann <a@x.io>", "smtp.y.io", "x.io"},
		{"nobody", "smtp.y.io", "smtp.y.io"},
		{"", "", "localhost"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, messageIDDomain(tt.from, tt.host))
	}
}
