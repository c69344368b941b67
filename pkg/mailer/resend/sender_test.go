package resend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailrelay/pkg/mailer"
)

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := New(Config{})
	require.ErrorIs(t, err, ErrMissingAPIKey)

	s, err := New(Config{APIKey: "re_test"})
	require.NoError(t, err)

	var _ mailer.Sender = s
	_, verifies := any(s).(mailer.Verifier)
	assert.False(t, verifies)
}

func TestSender_From(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cfg      Config
		override string
		want     string
	}{
		{name: "override wins", cfg: Config{SenderEmail: "a@x.io"}, override: "b@x.io", want: "b@x.io"},
		{name: "name and email", cfg: Config{SenderEmail: "a@x.io", SenderName: "Shop"}, want: "Shop <a@x.io>"},
		{name: "email only", cfg: Config{SenderEmail: "a@x.io"}, want: "a@x.io"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tt.cfg.APIKey = "re_test"
			s, err := New(tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.from(tt.override))
		})
	}
}

func TestConvertAttachments(t *testing.T) {
	t.Parallel()

	got := convertAttachments([]mailer.Attachment{
		{Filename: "a.pdf", ContentType: "application/pdf", Content: []byte("%PDF")},
	})
	require.Len(t, got, 1)
	assert.Equal(t, "a.pdf", got[0].Filename)
	assert.Equal(t, "application/pdf", got[0].ContentType)
	assert.Equal(t, []byte("%PDF"), got[0].Content)
}
