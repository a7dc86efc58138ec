package services

import (
	"bytes"
	"html/template"
	"strings"
	"time"

	"atw-marketplace/internal/config"

	"go.uber.org/zap"
)

const defaultRejectionReason = "Insufficient details provided"

var emailLayout = template.Must(template.New("layout").Parse(`<div style="font-family:Arial; background:#f4f4f4; padding:30px;">
  <table width="600" align="center" style="background:white; border-radius:10px;">
    <tr><td style="background:#111827; padding:20px; text-align:center;"><h2 style="color:white;">ATW HQ</h2></td></tr>
    <tr><td style="padding:30px 40px; color:#333;">{{template "content" .}}</td></tr>
    <tr><td style="background:#F3F4F6; padding:15px; text-align:center; color:#6B7280;">&copy; {{.Year}} ATW HQ. All rights reserved.</td></tr>
  </table>
</div>`))

var emailBodies = map[string]string{
	"verification": `<h3>Email Verification</h3>
<p>Hello {{.Name}},</p>
<p>Welcome to ATW HQ. Please verify your email below.</p>
<p style="text-align:center;"><a href="{{.Link}}" style="background:#10B981; color:white; padding:12px 28px; text-decoration:none; border-radius:6px;">Verify Email</a></p>`,
	"reset": `<h3>Password Reset</h3>
<p>Hello {{.Name}},</p>
<p>Click below to reset your password. The link expires in one hour.</p>
<p style="text-align:center;"><a href="{{.Link}}" style="background:#EF4444; color:white; padding:12px 28px; text-decoration:none; border-radius:6px;">Reset Password</a></p>`,
	"admin-alert": `<h3>New Agent Application</h3>
<p>Hello Admin,</p>
<p>A new agent <strong>{{.Name}}</strong> has applied and is pending approval.</p>
<p>Log in to your admin dashboard to review their application.</p>`,
	"approval": `<h3>Account Approved</h3>
<p>Hello {{.Name}},</p>
<p>Your ATW HQ agent account has been approved. You can now log in and start posting properties.</p>
<p style="text-align:center;"><a href="{{.Link}}" style="background:#3B82F6; color:white; padding:12px 28px; text-decoration:none; border-radius:6px;">Continue</a></p>`,
	"rejection": `<h3>Application Rejected</h3>
<p>Hello {{.Name}},</p>
<p>We are sorry, your agent application was not approved.</p>
<p><strong>Reason:</strong> {{.Reason}}</p>
<p>If you believe this was a mistake, you can contact support.</p>
<p style="text-align:center;"><a href="{{.Link}}" style="background:#6B7280; color:white; padding:12px 28px; text-decoration:none; border-radius:6px;">View Details</a></p>`,
}

var emailTemplates = buildEmailTemplates()

func buildEmailTemplates() map[string]*template.Template {
	out := make(map[string]*template.Template, len(emailBodies))
	for kind, body := range emailBodies {
		t := template.Must(emailLayout.Clone())
		template.Must(t.New("content").Parse(body))
		out[kind] = t
	}
	return out
}

type emailData struct {
	Name   string
	Link   string
	Reason string
	Year   int
}

// NotificationService renders transactional emails and hands them to the dispatcher
type NotificationService struct {
	dispatcher  EmailDispatcher
	frontendURL string
	adminEmail  string
	log         *zap.Logger
	now         func() time.Time
}

// NewNotificationService creates a new notification service
func NewNotificationService(dispatcher EmailDispatcher, cfg *config.Config, log *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher:  dispatcher,
		frontendURL: cfg.FrontendURL,
		adminEmail:  cfg.AdminEmail,
		log:         log.Named("notification"),
		now:         time.Now,
	}
}

// SendVerification queues the email verification link
func (s *NotificationService) SendVerification(to, name, token string) {
	s.send(to, "Verify your email", "verification", emailData{
		Name: displayName(name, to),
		Link: s.frontendURL + "/auth/verify/" + token,
	})
}

// SendPasswordReset queues the password reset link
func (s *NotificationService) SendPasswordReset(to, name, token string) {
	s.send(to, "Password Reset Request", "reset", emailData{
		Name: displayName(name, to),
		Link: s.frontendURL + "/auth/reset/" + token,
	})
}

// NotifyAdminNewApplication alerts the admin channel about a new agent application
func (s *NotificationService) NotifyAdminNewApplication(applicantName string) {
	if s.adminEmail == "" {
		s.log.Warn("ADMIN_EMAIL not set, admin alert skipped", zap.String("applicant", applicantName))
		return
	}
	s.send(s.adminEmail, "New Agent Application", "admin-alert", emailData{Name: applicantName})
}

// SendApproval tells the applicant their application was approved
func (s *NotificationService) SendApproval(to, name string) {
	s.send(to, "Application Approved", "approval", emailData{
		Name: displayName(name, to),
		Link: s.frontendURL + "/properties",
	})
}

// SendRejection tells the applicant their application was rejected
func (s *NotificationService) SendRejection(to, name, reason string) {
	if strings.TrimSpace(reason) == "" {
		reason = defaultRejectionReason
	}
	s.send(to, "Application Rejected", "rejection", emailData{
		Name:   displayName(name, to),
		Link:   s.frontendURL + "/agent/rejected",
		Reason: reason,
	})
}

func (s *NotificationService) send(to, subject, kind string, data emailData) {
	if to == "" {
		s.log.Warn("email without recipient dropped", zap.String("kind", kind))
		return
	}
	data.Year = s.now().Year()

	var buf bytes.Buffer
	if err := emailTemplates[kind].Execute(&buf, data); err != nil {
		s.log.Error("render email", zap.String("kind", kind), zap.Error(err))
		return
	}

	s.dispatcher.Enqueue(Email{To: to, Subject: subject, HTML: buf.String(), Kind: kind})
}

// displayName falls back to the local part of the address
func displayName(name, email string) string {
	if strings.TrimSpace(name) != "" {
		return name
	}
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return email
}
