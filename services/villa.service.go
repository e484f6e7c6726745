package services

import (
	"context"

	"villa-booking-server/domain"
)

type VillaService interface {
	GetVilla(ctx context.Context) (*domain.Villa, error)
	UpdateVilla(ctx context.Context, villa *domain.Villa) (*domain.Villa, error)
	AddSlideImage(ctx context.Context, ref string) (*domain.Villa, error)
	RemoveSlideImage(ctx context.Context, ref string) (*domain.Villa, error)
	SetBackgroundImage(ctx context.Context, ref string) (*domain.Villa, error)
	SetPromptPayQR(ctx context.Context, ref string) (*domain.Villa, error)
}
