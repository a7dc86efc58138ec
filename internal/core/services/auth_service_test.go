package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"atw-marketplace/internal/core/domain"
	"atw-marketplace/internal/pkg/jwt"
)

func TestRegister_VerifyLoginProfileScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	user, err := f.auth.Register(ctx, RegisterInput{Name: "A", Email: "a@x.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.IsVerified {
		t.Fatal("new account must be unverified")
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("expected default role user, got %s", user.Role)
	}

	emails := f.dispatcher.byKind("verification")
	if len(emails) != 1 || emails[0].To != "a@x.com" {
		t.Fatalf("expected one verification email, got %+v", f.dispatcher.sent())
	}
	stored, _ := f.store.Users().GetByID(ctx, user.ID)
	if stored.VerificationToken == nil || len(*stored.VerificationToken) != 40 {
		t.Fatalf("expected 20-byte hex token, got %v", stored.VerificationToken)
	}
	if !strings.Contains(emails[0].HTML, "http://front.test/auth/verify/"+*stored.VerificationToken) {
		t.Fatal("verification email must embed the token link")
	}
	if stored.Password == "secret1" {
		t.Fatal("password stored in plaintext")
	}

	if err := f.auth.VerifyEmail(ctx, *stored.VerificationToken); err != nil {
		t.Fatalf("verify: %v", err)
	}

	res, err := f.auth.Login(ctx, LoginInput{Email: "a@x.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := jwt.ValidateAccessToken(res.Token, f.cfg.JWT.Secret)
	if err != nil || claims.UserID != user.ID {
		t.Fatalf("token does not identify the user: %v %+v", err, claims)
	}
	if !res.User.IsVerified {
		t.Fatal("expected verified user in login result")
	}

	profile, err := f.auth.Profile(ctx, claims.UserID)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	raw, _ := json.Marshal(profile)
	for _, field := range []string{"password", "verificationToken", "resetPasswordToken", "phone", "avatar"} {
		if strings.Contains(string(raw), `"`+field+`"`) {
			t.Fatalf("profile must not contain %q: %s", field, raw)
		}
	}
}

func TestRegister_DuplicateEmailIgnoresCase(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if _, err := f.auth.Register(ctx, RegisterInput{Name: "A", Email: "a@x.com", Password: "secret1"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err := f.auth.Register(ctx, RegisterInput{Name: "A2", Email: "  A@X.COM ", Password: "secret1"})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	cases := map[string]RegisterInput{
		"missing name":     {Email: "a@x.com", Password: "secret1"},
		"missing email":    {Name: "A", Password: "secret1"},
		"missing password": {Name: "A", Email: "a@x.com"},
		"short password":   {Name: "A", Email: "a@x.com", Password: "123"},
		"admin role":       {Name: "A", Email: "a@x.com", Password: "secret1", Role: domain.RoleAdmin},
		"unknown role":     {Name: "A", Email: "a@x.com", Password: "secret1", Role: "root"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := f.auth.Register(ctx, in); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
	if n, _ := f.store.Users().Count(ctx); n != 0 {
		t.Fatalf("nothing should be persisted, got %d users", n)
	}
}

func TestLogin_InvalidCredentialsShareMessage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.verifiedUser(t, "A", "a@x.com", domain.RoleUser)

	_, errUnknown := f.auth.Login(ctx, LoginInput{Email: "nobody@x.com", Password: "secret1"})
	_, errWrong := f.auth.Login(ctx, LoginInput{Email: "a@x.com", Password: "wrong-pass"})

	for _, err := range []error{errUnknown, errWrong} {
		if !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("expected unauthorized, got %v", err)
		}
	}
	if domain.PublicMessage(errUnknown) != domain.PublicMessage(errWrong) {
		t.Fatal("unknown email and wrong password must look identical")
	}

	if _, err := f.auth.Login(ctx, LoginInput{Email: "a@x.com"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for missing password, got %v", err)
	}
}

func TestLogin_VerificationGatePolicy(t *testing.T) {
	ctx := context.Background()

	t.Run("enabled", func(t *testing.T) {
		f := newFixture(t)
		if _, err := f.auth.Register(ctx, RegisterInput{Name: "A", Email: "a@x.com", Password: "secret1"}); err != nil {
			t.Fatal(err)
		}
		_, err := f.auth.Login(ctx, LoginInput{Email: "a@x.com", Password: "secret1"})
		if !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("expected forbidden, got %v", err)
		}
		// wrong password on an unverified account does not reveal its status
		_, err = f.auth.Login(ctx, LoginInput{Email: "a@x.com", Password: "nope-nope"})
		if !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("expected unauthorized, got %v", err)
		}
	})

	t.Run("disabled", func(t *testing.T) {
		cfg := testConfig()
		cfg.Auth.RequireEmailVerification = false
		f := newFixtureWithConfig(t, cfg)
		if _, err := f.auth.Register(ctx, RegisterInput{Name: "A", Email: "a@x.com", Password: "secret1"}); err != nil {
			t.Fatal(err)
		}
		if _, err := f.auth.Login(ctx, LoginInput{Email: "a@x.com", Password: "secret1"}); err != nil {
			t.Fatalf("expected login to succeed, got %v", err)
		}
	})
}

func TestVerifyEmail_SingleUse(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	u, _ := f.auth.Register(ctx, RegisterInput{Name: "A", Email: "a@x.com", Password: "secret1"})
	stored, _ := f.store.Users().GetByID(ctx, u.ID)
	tok := *stored.VerificationToken

	if err := f.auth.VerifyEmail(ctx, tok); err != nil {
		t.Fatalf("first verify: %v", err)
	}
	if err := f.auth.VerifyEmail(ctx, tok); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected reuse to fail with validation error, got %v", err)
	}
	if err := f.auth.VerifyEmail(ctx, ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected empty token to fail, got %v", err)
	}

	stored, _ = f.store.Users().GetByID(ctx, u.ID)
	if !stored.IsVerified || stored.VerificationToken != nil {
		t.Fatalf("expected verified with cleared token, got %+v", stored)
	}
}

func TestForgotAndResetPassword(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.verifiedUser(t, "A", "a@x.com", domain.RoleUser)

	if err := f.auth.ForgotPassword(ctx, "nobody@x.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := f.auth.ForgotPassword(ctx, ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	issued := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	f.auth.now = func() time.Time { return issued }
	if err := f.auth.ForgotPassword(ctx, "A@x.com"); err != nil {
		t.Fatalf("forgot: %v", err)
	}
	stored, _ := f.store.Users().GetByID(ctx, id)
	if stored.ResetPasswordToken == nil || stored.ResetPasswordExpires == nil {
		t.Fatal("expected reset token and expiry to be persisted")
	}
	if !stored.ResetPasswordExpires.Equal(issued.Add(time.Hour)) {
		t.Fatalf("expected expiry one hour after issuance, got %v", stored.ResetPasswordExpires)
	}
	if len(f.dispatcher.byKind("reset")) != 1 {
		t.Fatal("expected one reset email")
	}
	tok := *stored.ResetPasswordToken

	// exactly at expiry the token is no longer valid
	f.auth.now = func() time.Time { return issued.Add(time.Hour) }
	if err := f.auth.ResetPassword(ctx, tok, "newpass1"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected expired token to fail, got %v", err)
	}

	f.auth.now = func() time.Time { return issued.Add(59 * time.Minute) }
	if err := f.auth.ResetPassword(ctx, "bogus", "newpass1"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected unknown token to fail, got %v", err)
	}
	if err := f.auth.ResetPassword(ctx, tok, "newpass1"); err != nil {
		t.Fatalf("reset: %v", err)
	}

	stored, _ = f.store.Users().GetByID(ctx, id)
	if stored.ResetPasswordToken != nil || stored.ResetPasswordExpires != nil {
		t.Fatal("reset token and expiry must be cleared")
	}
	if _, err := f.auth.Login(ctx, LoginInput{Email: "a@x.com", Password: "newpass1"}); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	if _, err := f.auth.Login(ctx, LoginInput{Email: "a@x.com", Password: "secret1"}); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("old password must stop working, got %v", err)
	}
}

func TestResetPassword_ExpiredEvenWithCorrectInput(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.verifiedUser(t, "A", "a@x.com", domain.RoleUser)

	tok := "deadbeef"
	past := time.Now().Add(-time.Second)
	stored, _ := f.store.Users().GetByID(ctx, id)
	stored.ResetPasswordToken, stored.ResetPasswordExpires = &tok, &past
	_ = f.store.Users().Update(ctx, stored)

	if err := f.auth.ResetPassword(ctx, tok, "newpass1"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestProfile_RequiresIdentity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if _, err := f.auth.Profile(ctx, 0); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if _, err := f.auth.Profile(ctx, 42); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for vanished user, got %v", err)
	}
}
