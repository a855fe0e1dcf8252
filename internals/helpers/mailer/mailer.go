package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"html"
	"strings"
	"time"

	mail "github.com/go-mail/mail/v2"

	"kemahasiswaan_backend/internals/configs"
)

// SubmissionNotice: ringkasan pendaftaran baru untuk staf.
type SubmissionNotice struct {
	To           string
	FormID       string
	FormName     string
	SubmissionID string
	UserID       string
	SubmittedAt  time.Time
}

type Notifier interface {
	NotifySubmission(ctx context.Context, n SubmissionNotice) error
}

// NopNotifier dipakai bila SMTP belum dikonfigurasi.
type NopNotifier struct{}

func (NopNotifier) NotifySubmission(context.Context, SubmissionNotice) error { return nil }

type SMTPNotifier struct {
	Host          string
	Port          int
	User          string
	Pass          string
	From          string // mis. "Kemahasiswaan <no-reply@kampus.ac.id>"
	SkipTLSVerify bool
}

// NewFromEnv: SMTP_HOST/SMTP_FROM kosong → NopNotifier.
func NewFromEnv() Notifier {
	host := configs.GetEnv("SMTP_HOST")
	from := configs.GetEnv("SMTP_FROM")
	if host == "" || from == "" {
		configs.SLog.Info("📭 SMTP belum diset, notifikasi email nonaktif")
		return NopNotifier{}
	}
	return &SMTPNotifier{
		Host:          host,
		Port:          configs.GetEnvInt("SMTP_PORT", 587),
		User:          configs.GetEnv("SMTP_USER"),
		Pass:          configs.GetEnv("SMTP_PASS"),
		From:          from,
		SkipTLSVerify: configs.GetEnv("SMTP_SKIP_TLS_VERIFY") == "1",
	}
}

func (s *SMTPNotifier) NotifySubmission(ctx context.Context, n SubmissionNotice) error {
	if strings.TrimSpace(n.To) == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := BuildSubmissionMessage(s.From, n)

	d := mail.NewDialer(s.Host, s.Port, s.User, s.Pass)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	d.TLSConfig = &tls.Config{
		ServerName:         s.Host,
		InsecureSkipVerify: s.SkipTLSVerify,
	}
	d.Timeout = 10 * time.Second
	return d.DialAndSend(m)
}

func BuildSubmissionMessage(from string, n SubmissionNotice) *mail.Message {
	m := mail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", n.To)
	m.SetHeader("Subject", fmt.Sprintf("[Beasiswa] Pendaftaran baru %s - %s", n.SubmissionID, n.FormName))
	m.SetBody("text/html", fmt.Sprintf(
		`<p>Pendaftaran baru masuk.</p>
<ul>
<li>Form: %s (%s)</li>
<li>Submission: %s</li>
<li>User: %s</li>
<li>Waktu: %s</li>
</ul>`,
		html.EscapeString(n.FormName), html.EscapeString(n.FormID),
		html.EscapeString(n.SubmissionID), html.EscapeString(n.UserID),
		n.SubmittedAt.Format("02 Jan 2006 15:04"),
	))
	return m
}
