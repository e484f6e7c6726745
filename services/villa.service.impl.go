package services

import (
	"context"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"villa-booking-server/domain"
)

type VillaServiceImpl struct {
	villas domain.VillaStore
	Tracer trace.Tracer
}

func NewVillaServiceImpl(villas domain.VillaStore, tracer trace.Tracer) *VillaServiceImpl {
	return &VillaServiceImpl{
		villas: villas,
		Tracer: tracer,
	}
}

func (s *VillaServiceImpl) GetVilla(ctx context.Context) (*domain.Villa, error) {
	ctx, span := s.Tracer.Start(ctx, "VillaService.GetVilla")
	defer span.End()

	villa, err := s.villas.GetActiveVilla(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return villa, nil
}

func (s *VillaServiceImpl) UpdateVilla(ctx context.Context, villa *domain.Villa) (*domain.Villa, error) {
	ctx, span := s.Tracer.Start(ctx, "VillaService.UpdateVilla")
	defer span.End()

	current, err := s.villas.GetActiveVilla(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// Only the single active villa document is editable. Identity and image
	// references are managed through their own endpoints.
	villa.ID = current.ID
	villa.IsActive = true
	villa.CreatedAt = current.CreatedAt
	if villa.BackgroundImage == "" {
		villa.BackgroundImage = current.BackgroundImage
	}
	if villa.SlideImages == nil {
		villa.SlideImages = current.SlideImages
	}
	if villa.PromptPay == nil {
		villa.PromptPay = current.PromptPay
	}

	if err := villa.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	updated, err := s.villas.UpdateVilla(ctx, villa)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return updated, nil
}

func (s *VillaServiceImpl) AddSlideImage(ctx context.Context, ref string) (*domain.Villa, error) {
	return s.mutate(ctx, "VillaService.AddSlideImage", func(v *domain.Villa) {
		v.SlideImages = append(v.SlideImages, ref)
	})
}

func (s *VillaServiceImpl) RemoveSlideImage(ctx context.Context, ref string) (*domain.Villa, error) {
	return s.mutate(ctx, "VillaService.RemoveSlideImage", func(v *domain.Villa) {
		kept := v.SlideImages[:0]
		for _, img := range v.SlideImages {
			if img != ref {
				kept = append(kept, img)
			}
		}
		v.SlideImages = kept
	})
}

func (s *VillaServiceImpl) SetBackgroundImage(ctx context.Context, ref string) (*domain.Villa, error) {
	return s.mutate(ctx, "VillaService.SetBackgroundImage", func(v *domain.Villa) {
		v.BackgroundImage = ref
	})
}

func (s *VillaServiceImpl) SetPromptPayQR(ctx context.Context, ref string) (*domain.Villa, error) {
	return s.mutate(ctx, "VillaService.SetPromptPayQR", func(v *domain.Villa) {
		v.PromptPay = &domain.PromptPayDetails{QRImage: ref}
	})
}

func (s *VillaServiceImpl) mutate(ctx context.Context, spanName string, apply func(*domain.Villa)) (*domain.Villa, error) {
	ctx, span := s.Tracer.Start(ctx, spanName)
	defer span.End()

	villa, err := s.villas.GetActiveVilla(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	apply(villa)
	updated, err := s.villas.UpdateVilla(ctx, villa)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return updated, nil
}
