package services

import (
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestNotificationRendering(t *testing.T) {
	d := &recordingDispatcher{}
	cfg := testConfig()
	n := NewNotificationService(d, cfg, zap.NewNop())
	n.now = func() time.Time { return time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC) }

	n.SendPasswordReset("bob@x.com", "", "abc123")
	n.SendVerification("", "Nobody", "tok")

	sent := d.sent()
	if len(sent) != 1 {
		t.Fatalf("emails without a recipient must be dropped, got %d", len(sent))
	}
	e := sent[0]
	if e.Kind != "reset" || e.Subject != "Password Reset Request" {
		t.Fatalf("unexpected email %+v", e)
	}
	for _, want := range []string{"Hello bob,", "http://front.test/auth/reset/abc123", "2031"} {
		if !strings.Contains(e.HTML, want) {
			t.Errorf("email body missing %q", want)
		}
	}
}

func TestNotificationEscapesNames(t *testing.T) {
	d := &recordingDispatcher{}
	n := NewNotificationService(d, testConfig(), zap.NewNop())
	n.NotifyAdminNewApplication("<script>x</script>")
	if html := d.sent()[0].HTML; strings.Contains(html, "<script>") {
		t.Fatal("applicant name must be escaped")
	}
}

func TestAdminAlertSkippedWithoutAddress(t *testing.T) {
	d := &recordingDispatcher{}
	cfg := testConfig()
	cfg.AdminEmail = ""
	NewNotificationService(d, cfg, zap.NewNop()).NotifyAdminNewApplication("Ada")
	if len(d.sent()) != 0 {
		t.Fatal("no admin alert expected without ADMIN_EMAIL")
	}
}
