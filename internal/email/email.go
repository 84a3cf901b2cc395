// Package email renders idea reports as HTML and delivers them over Gmail
// SMTP using an app password.
package email

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/smtp"
	"time"

	"ideaforge/internal/core"
)

// ErrNotConfigured is returned when SMTP credentials or the recipient are
// missing.
var ErrNotConfigured = errors.New("email delivery is not configured")

// Config carries SMTP delivery settings.
type Config struct {
	SMTPHost    string
	SMTPPort    int
	Username    string
	AppPassword string
	Recipient   string
	FromName    string
}

// SendFunc performs the actual SMTP delivery. Swappable in tests.
type SendFunc func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error

// Sender renders and delivers reports.
type Sender struct {
	cfg  Config
	send SendFunc
}

// NewSender creates a sender using net/smtp for delivery.
func NewSender(cfg Config) *Sender {
	return &Sender{cfg: cfg, send: smtp.SendMail}
}

// NewSenderWithFunc creates a sender with a custom delivery function.
func NewSenderWithFunc(cfg Config, send SendFunc) *Sender {
	return &Sender{cfg: cfg, send: send}
}

// Configured reports whether credentials and a recipient are present.
func (s *Sender) Configured() bool {
	return s.cfg.Username != "" && s.cfg.AppPassword != "" && s.cfg.Recipient != ""
}

// SendIdeaReport renders the idea as an HTML card and emails it.
func (s *Sender) SendIdeaReport(idea core.VideoIdea) error {
	subject := fmt.Sprintf("New content idea: %s x %s", idea.TitanName, idea.Trend)
	body, err := renderIdeaHTML(idea)
	if err != nil {
		return err
	}
	return s.deliver(subject, body)
}

// SendHabitGuide renders a habit analysis plus its companion app concept and
// emails them as one guide.
func (s *Sender) SendHabitGuide(analysis core.HabitAnalysis, idea core.VibeCodingIdea) error {
	subject := fmt.Sprintf("Habit guide: %s", analysis.PersonName)
	body, err := renderHabitHTML(analysis, idea)
	if err != nil {
		return err
	}
	return s.deliver(subject, body)
}

func (s *Sender) deliver(subject, htmlBody string) error {
	if !s.Configured() {
		return ErrNotConfigured
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.AppPassword, s.cfg.SMTPHost)

	from := s.cfg.Username
	if s.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.cfg.FromName, s.cfg.Username)
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", s.cfg.Recipient)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	fmt.Fprintf(&msg, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	if err := s.send(addr, auth, s.cfg.Username, []string{s.cfg.Recipient}, msg.Bytes()); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

var ideaTemplate = template.Must(template.New("idea").Parse(`<!DOCTYPE html>
<html>
<body style="margin:0;padding:24px;background-color:#f8fafc;font-family:system-ui,-apple-system,'Segoe UI',Roboto,sans-serif;color:#1e293b;">
  <div style="max-width:600px;margin:0 auto;background:#ffffff;border:1px solid #e2e8f0;border-radius:8px;overflow:hidden;">
    <div style="background-color:#2563eb;color:#ffffff;padding:20px 24px;">
      <h1 style="margin:0;font-size:20px;">{{.TitanName}} &middot; {{.Methodology}}</h1>
      <p style="margin:8px 0 0;font-size:14px;opacity:0.9;">Trend: {{.Trend}}</p>
    </div>
    <div style="padding:24px;">
      <h2 style="font-size:16px;margin:0 0 8px;">Title candidates</h2>
      <ol style="margin:0 0 16px;padding-left:20px;">
        {{range .Titles}}<li style="margin-bottom:4px;">{{.}}</li>{{end}}
      </ol>
      <h2 style="font-size:16px;margin:0 0 8px;">Thumbnail</h2>
      <p style="margin:0 0 16px;font-weight:bold;">{{.ThumbnailText}}</p>
      <h2 style="font-size:16px;margin:0 0 8px;">Hook</h2>
      <p style="margin:0 0 16px;">{{.HookingPhrase}}</p>
      {{if .PaperCitation}}
      <h2 style="font-size:16px;margin:0 0 8px;">Evidence</h2>
      <p style="margin:0 0 16px;font-size:13px;color:#475569;">{{.PaperCitation}}</p>
      {{end}}
      {{if .RelatedBook}}
      <p style="margin:0 0 16px;font-size:13px;">Related book: {{.RelatedBook.Title}} — {{.RelatedBook.Author}}</p>
      {{end}}
      <h2 style="font-size:16px;margin:0 0 8px;">Tool concept (level {{.ToolConcept.Level}})</h2>
      <p style="margin:0 0 8px;"><strong>{{.ToolConcept.Name}}</strong> — {{.ToolConcept.Description}}</p>
      <ul style="margin:0;padding-left:20px;">
        {{range .ToolConcept.Features}}<li style="margin-bottom:4px;">{{.}}</li>{{end}}
      </ul>
    </div>
    <div style="padding:16px 24px;border-top:1px solid #e2e8f0;font-size:12px;color:#64748b;">
      Generated {{.GeneratedAt.Format "2006-01-02 15:04"}} by Ideaforge
    </div>
  </div>
</body>
</html>`))

func renderIdeaHTML(idea core.VideoIdea) (string, error) {
	var buf bytes.Buffer
	if err := ideaTemplate.Execute(&buf, idea); err != nil {
		return "", fmt.Errorf("failed to render idea report: %w", err)
	}
	return buf.String(), nil
}

type habitGuideData struct {
	Analysis core.HabitAnalysis
	Idea     core.VibeCodingIdea
}

var habitTemplate = template.Must(template.New("habit").Parse(`<!DOCTYPE html>
<html>
<body style="margin:0;padding:24px;background-color:#f0fdf4;font-family:system-ui,-apple-system,'Segoe UI',Roboto,sans-serif;color:#064e3b;">
  <div style="max-width:600px;margin:0 auto;background:#ffffff;border:1px solid #d1fae5;border-radius:8px;overflow:hidden;">
    <div style="background-color:#059669;color:#ffffff;padding:20px 24px;">
      <h1 style="margin:0;font-size:20px;">{{.Analysis.PersonName}}</h1>
      <p style="margin:8px 0 0;font-size:14px;opacity:0.9;">{{.Analysis.PersonTitle}}</p>
    </div>
    <div style="padding:24px;">
      <h2 style="font-size:16px;margin:0 0 8px;">Core message</h2>
      <p style="margin:0 0 16px;">{{.Analysis.CoreMessage}}</p>
      <p style="margin:0 0 16px;font-size:14px;color:#475569;">{{.Analysis.Description}}</p>
      <h2 style="font-size:16px;margin:0 0 8px;">Action guide</h2>
      <ol style="margin:0 0 16px;padding-left:20px;">
        {{range .Analysis.ActionGuide}}<li style="margin-bottom:4px;">{{.}}</li>{{end}}
      </ol>
      {{if .Analysis.Example}}
      <p style="margin:0 0 16px;font-size:13px;color:#475569;">{{.Analysis.Example}}</p>
      {{end}}
      <h2 style="font-size:16px;margin:0 0 8px;">Build it: {{.Idea.AppName}} (difficulty {{.Idea.DifficultyLevel}}/5)</h2>
      <p style="margin:0 0 8px;">{{.Idea.Description}}</p>
      <ul style="margin:0 0 16px;padding-left:20px;">
        {{range .Idea.Features}}<li style="margin-bottom:4px;">{{.}}</li>{{end}}
      </ul>
      <p style="margin:0;font-size:13px;color:#475569;">Stack: {{range $i, $t := .Idea.TechStack}}{{if $i}}, {{end}}{{$t}}{{end}}</p>
    </div>
  </div>
</body>
</html>`))

func renderHabitHTML(analysis core.HabitAnalysis, idea core.VibeCodingIdea) (string, error) {
	var buf bytes.Buffer
	if err := habitTemplate.Execute(&buf, habitGuideData{Analysis: analysis, Idea: idea}); err != nil {
		return "", fmt.Errorf("failed to render habit guide: %w", err)
	}
	return buf.String(), nil
}
