// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/chainacademy/coursegate/internal/config"
	"github.com/chainacademy/coursegate/internal/models"
)

type NotificationService struct {
	db     *gorm.DB
	config *config.Config
}

type EmailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(db *gorm.DB, config *config.Config) *NotificationService {
	return &NotificationService{
		db:     db,
		config: config,
	}
}

// SendRequestSubmittedNotification tells the course owner a new access
// request is waiting for review.
func (s *NotificationService) SendRequestSubmittedNotification(request *models.AccessRequest, course *models.Course) error {
	owner, err := s.userByWallet(request.OwnerAddress)
	if err != nil {
		logrus.WithError(err).WithField("request_id", request.ID).
			Warn("Cannot notify owner of new access request")
		return err
	}

	tmpl := s.getEmailTemplate("request_submitted")
	data := map[string]interface{}{
		"Username":     owner.Username,
		"CourseTitle":  course.Title,
		"Requester":    request.RequesterAddress,
		"DurationDays": request.DurationDays,
		"Message":      request.Message,
		"ReviewURL":    fmt.Sprintf("%s/requests/received", s.config.Frontend.BaseURL),
	}

	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(owner, tmpl.Subject, body)
}

// SendRequestDecidedNotification tells the requester their request was
// approved or rejected.
func (s *NotificationService) SendRequestDecidedNotification(request *models.AccessRequest) error {
	requester, err := s.userByWallet(request.RequesterAddress)
	if err != nil {
		// Recipients of delegated access need not be registered; nothing to
		// send to in that case.
		logrus.WithField("request_id", request.ID).
			Debug("Requester has no registered account, skipping notification")
		return nil
	}

	templateName := "request_rejected"
	if request.Status == models.RequestStatusApproved {
		templateName = "request_approved"
	}

	tmpl := s.getEmailTemplate(templateName)
	data := map[string]interface{}{
		"Username":     requester.Username,
		"DurationDays": request.DurationDays,
		"CoursesURL":   fmt.Sprintf("%s/my-access", s.config.Frontend.BaseURL),
	}

	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(requester, tmpl.Subject, body)
}

func (s *NotificationService) userByWallet(walletAddress string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("LOWER(wallet_address) = ?", walletAddress).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *NotificationService) sendEmail(to *models.User, subject, body string) error {
	if to.Email == nil || *to.Email == "" {
		logrus.WithField("user_id", to.ID).Debug("User has no email on file, skipping notification")
		return nil
	}

	if s.config.Email.SMTPHost == "" {
		// Email not configured, just log
		logrus.WithFields(logrus.Fields{
			"to":      *to.Email,
			"subject": subject,
		}).Info("Email delivery not configured, logging instead")
		return nil
	}

	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		*to.Email, subject, body))

	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{*to.Email}, msg)
}

func (s *NotificationService) renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *NotificationService) getEmailTemplate(templateType string) EmailTemplate {
	templates := map[string]EmailTemplate{
		"request_submitted": {
			Subject: "New access request for your course",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Hi {{.Username}},</h2>
	<p>{{.Requester}} requested {{.DurationDays}}-day access to <strong>{{.CourseTitle}}</strong>.</p>
	{{if .Message}}<blockquote>{{.Message}}</blockquote>{{end}}
	<p><a href="{{.ReviewURL}}">Review the request</a></p>
</body>
</html>`,
		},
		"request_approved": {
			Subject: "Your access request was approved",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Hi {{.Username}},</h2>
	<p>Your access request was approved. You now have {{.DurationDays}} days of access.</p>
	<p><a href="{{.CoursesURL}}">Go to your courses</a></p>
</body>
</html>`,
		},
		"request_rejected": {
			Subject: "Your access request was declined",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Hi {{.Username}},</h2>
	<p>Your access request was declined by the course owner.</p>
</body>
</html>`,
		},
	}

	if tmpl, ok := templates[templateType]; ok {
		return tmpl
	}
	return EmailTemplate{Subject: "CourseGate notification", Body: "{{.Username}}"}
}
