package mailer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailrelay/pkg/mailer"
)

func TestTemplateStore_Builtin(t *testing.T) {
	t.Parallel()

	store, err := mailer.NewTemplateStore()
	require.NoError(t, err)

	t.Run("lists the three templates", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, map[string]string{
			"welcome":            "Welcome email template",
			"reset-password":     "Password reset template",
			"order-confirmation": "Order confirmation template",
		}, store.Available())
		assert.Equal(t, []string{"order-confirmation", "reset-password", "welcome"}, store.IDs())
	})

	t.Run("unknown id", func(t *testing.T) {
		t.Parallel()
		_, err := store.Lookup("nope")
		require.ErrorIs(t, err, mailer.ErrTemplateNotFound)
	})

	t.Run("welcome renders without leftover markers", func(t *testing.T) {
		t.Parallel()
		tmpl, err := store.Lookup(mailer.TemplateWelcome)
		require.NoError(t, err)

		vars := mailer.Variables{"name": "Ann"}
		assert.Equal(t, "Welcome Ann!", mailer.Render(tmpl.Subject, vars))

		html := mailer.Render(tmpl.HTML, vars)
		assert.Contains(t, html, "Welcome Ann! 🎉")
		assert.NotContains(t, html, "{{")

		text := mailer.Render(tmpl.Text, vars)
		assert.Equal(t, "Welcome Ann! Thank you for joining us! We're excited to have you on board.", text)
	})

	t.Run("reset password link", func(t *testing.T) {
		t.Parallel()
		tmpl, err := store.Lookup(mailer.TemplateResetPassword)
		require.NoError(t, err)

		vars := mailer.Variables{"resetLink": "https://x.io/r?t=1"}
		assert.Equal(t, "Reset Your Password", tmpl.Subject)
		assert.Contains(t, mailer.Render(tmpl.HTML, vars), `href="https://x.io/r?t=1"`)
		assert.Contains(t, tmpl.HTML, "24 hours")
	})

	t.Run("order confirmation keeps the dollar sign", func(t *testing.T) {
		t.Parallel()
		tmpl, err := store.Lookup(mailer.TemplateOrderConfirmation)
		require.NoError(t, err)

		vars := mailer.Variables{
			"customerName": "Bob",
			"orderNumber":  "ORD-7",
			"totalAmount":  "42.50",
			"deliveryDate": "Friday",
		}
		assert.Equal(t, "Order Confirmation - ORD-7", mailer.Render(tmpl.Subject, vars))
		assert.Equal(t,
			"Hi Bob, your order ORD-7 has been confirmed. Total: $42.50. Estimated delivery: Friday",
			mailer.Render(tmpl.Text, vars),
		)
	})
}

func TestParseTemplateStore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{name: "valid", doc: "templates:\n  - id: a\n    subject: s\n    text: t\n"},
		{name: "empty catalogue", doc: "templates: []\n"},
		{name: "missing id", doc: "templates:\n  - subject: s\n", wantErr: true},
		{name: "duplicate id", doc: "templates:\n  - id: a\n  - id: a\n", wantErr: true},
		{name: "malformed yaml", doc: "templates: [", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := mailer.ParseTemplateStore([]byte(tt.doc))
			if tt.wantErr {
				require.ErrorIs(t, err, mailer.ErrInvalidTemplates)
				return
			}
			require.NoError(t, err)
		})
	}
}
