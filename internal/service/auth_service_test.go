package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"stabtrack/stability-app/internal/repository/memory"
)

func newAuthFixture() AuthService {
	store := memory.NewStore()
	return NewAuthService(store.Users(), "test-secret", time.Hour)
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newAuthFixture()

	user, err := svc.Register(ctx, "Lab Operator", "operator@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.ID.IsZero() {
		t.Error("registered user has no ID")
	}
	if user.PasswordHash == "correct horse battery" {
		t.Error("password stored in plain text")
	}

	token, loggedIn, err := svc.Login(ctx, "operator@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" {
		t.Error("login returned an empty token")
	}
	if loggedIn.ID != user.ID {
		t.Errorf("login returned user %s, want %s", loggedIn.ID.Hex(), user.ID.Hex())
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := newAuthFixture()

	if _, err := svc.Register(ctx, "First", "same@example.com", "password-one"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, err := svc.Register(ctx, "Second", "same@example.com", "password-two")
	if !errors.Is(err, ErrUserAlreadyExists) {
		t.Errorf("got %v, want ErrUserAlreadyExists", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	svc := newAuthFixture()

	if _, err := svc.Register(ctx, "Op", "op@example.com", "right-password"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, _, err := svc.Login(ctx, "op@example.com", "wrong-password"); !errors.Is(err, ErrAuthenticationFailed) {
		t.Errorf("wrong password: got %v, want ErrAuthenticationFailed", err)
	}
	if _, _, err := svc.Login(ctx, "nobody@example.com", "right-password"); !errors.Is(err, ErrAuthenticationFailed) {
		t.Errorf("unknown email: got %v, want ErrAuthenticationFailed", err)
	}
}
