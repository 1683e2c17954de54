package session

import (
	"context"
	"fmt"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/validation"
)

// Login authenticates against the API, caches the result and records the
// remember-me choice.
func Login(ctx context.Context, auth *clients.AuthClient, s *Session, in clients.LoginRequest, remember bool) (clients.AuthResult, error) {
	if err := validation.Struct(in); err != nil {
		return clients.AuthResult{}, err
	}
	res, err := auth.Login(ctx, in)
	if err != nil {
		return clients.AuthResult{}, err
	}
	if err := s.Save(ctx, res); err != nil {
		return clients.AuthResult{}, fmt.Errorf("cache login: %w", err)
	}
	if err := s.Remember(ctx, in.Email, remember); err != nil {
		return clients.AuthResult{}, fmt.Errorf("remember me: %w", err)
	}
	return res, nil
}

func Register(ctx context.Context, auth *clients.AuthClient, s *Session, in clients.RegisterRequest) (clients.AuthResult, error) {
	if err := validation.Struct(in); err != nil {
		return clients.AuthResult{}, err
	}
	res, err := auth.Register(ctx, in)
	if err != nil {
		return clients.AuthResult{}, err
	}
	if err := s.Save(ctx, res); err != nil {
		return clients.AuthResult{}, fmt.Errorf("cache registration: %w", err)
	}
	return res, nil
}
