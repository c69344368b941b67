// Package smtp implements mailer.Sender over a pooled SMTP connection set
// built on github.com/wneessen/go-mail.
//
// The pool keeps at most Config.MaxConnections sessions open. A session is
// closed and re-dialed after Config.MaxMessages deliveries or after any
// delivery error. Deliveries across all sessions are throttled to
// Config.RateLimit messages per second.
//
//	t, err := smtp.New(smtp.Config{
//		Host:     "smtp.example.com",
//		Port:     587,
//		Username: "user",
//		Password: "secret",
//	}, smtp.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	defer t.Close(context.Background())
package smtp
