package service

import (
	"context"
	"errors"
	"testing"

	"github.com/burhani/shop-system/internal/model"
	"github.com/burhani/shop-system/internal/repository"
)

func TestHashPasswordDeterministic(t *testing.T) {
	a := hashPassword("user@example.com", "pass")
	b := hashPassword("user@example.com", "pass")
	c := hashPassword("user@example.com", "other")

	if string(a) != string(b) {
		t.Fatalf("hashPassword must be deterministic, got %x and %x", a, b)
	}
	if string(a) == string(c) {
		t.Fatalf("different passwords must produce different hashes")
	}
}

func TestRegisterUser_PropagatesDuplicateError(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	email := "user@example.com"
	if _, err := svc.RegisterUser(context.Background(), &email, nil, "User", "password1"); err != nil {
		t.Fatalf("first RegisterUser error: %v", err)
	}

	_, err := svc.RegisterUser(context.Background(), &email, nil, "User", "password2")
	if !errors.Is(err, repository.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthenticateUser_ByEmailAndPhone(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	email := "user@example.com"
	phone := "9876543210"
	id, err := svc.RegisterUser(context.Background(), &email, &phone, "User", "password1")
	if err != nil {
		t.Fatalf("RegisterUser error: %v", err)
	}

	u, err := svc.AuthenticateUser(context.Background(), email, "password1")
	if err != nil {
		t.Fatalf("authenticate by email error: %v", err)
	}
	if u.ID != id {
		t.Fatalf("user id = %d, want %d", u.ID, id)
	}

	if _, err := svc.AuthenticateUser(context.Background(), phone, "password1"); err != nil {
		t.Fatalf("authenticate by phone error: %v", err)
	}
}

func TestAuthenticateUser_InvalidCredentials(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	email := "user@example.com"
	if _, err := svc.RegisterUser(context.Background(), &email, nil, "User", "correct-pass"); err != nil {
		t.Fatalf("RegisterUser error: %v", err)
	}

	_, err := svc.AuthenticateUser(context.Background(), email, "wrong-pass")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	_, err = svc.AuthenticateUser(context.Background(), "unknown@example.com", "correct-pass")
	if !errors.Is(err, repository.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestGetOrder_OwnershipChecks(t *testing.T) {
	repo := newStockedRepo()
	svc := newTestService(repo)

	email := "owner@example.com"
	ownerID, err := svc.RegisterUser(context.Background(), &email, nil, "Owner", "password1")
	if err != nil {
		t.Fatalf("RegisterUser error: %v", err)
	}

	order, err := svc.PlaceOrder(context.Background(), []CartLine{
		{ProductID: 1, Quantity: 1},
	}, testCustomer(), model.PaymentMethodCOD, &ownerID)
	if err != nil {
		t.Fatalf("PlaceOrder error: %v", err)
	}

	if _, err := svc.GetOrder(context.Background(), order.ID, &ownerID); err != nil {
		t.Fatalf("owner access error: %v", err)
	}

	other := "other@example.com"
	otherID, err := svc.RegisterUser(context.Background(), &other, nil, "Other", "password1")
	if err != nil {
		t.Fatalf("RegisterUser error: %v", err)
	}
	if _, err := svc.GetOrder(context.Background(), order.ID, &otherID); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied for foreign order, got %v", err)
	}

	if _, err := svc.GetOrder(context.Background(), order.ID, nil); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied for anonymous access, got %v", err)
	}
}

func TestAuthorizeAdmin(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	email := "customer@example.com"
	customerID, err := svc.RegisterUser(context.Background(), &email, nil, "Customer", "password1")
	if err != nil {
		t.Fatalf("RegisterUser error: %v", err)
	}

	if err := svc.AuthorizeAdmin(context.Background(), customerID); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied for customer, got %v", err)
	}
	if err := svc.AuthorizeAdmin(context.Background(), 999); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied for unknown user, got %v", err)
	}

	repo.mu.Lock()
	repo.users[customerID].Role = model.RoleAdmin
	repo.mu.Unlock()

	if err := svc.AuthorizeAdmin(context.Background(), customerID); err != nil {
		t.Fatalf("admin authorization error: %v", err)
	}
}
