package service

import (
	"context"

	"github.com/stemsi/tagihan-dashboard/internal/model"
)

// MajorService serves the major reference list.
type MajorService struct {
	source SnapshotSource
}

// NewMajorService creates a new MajorService.
func NewMajorService(source SnapshotSource) *MajorService {
	return &MajorService{source: source}
}

// List retrieves all majors.
func (s *MajorService) List(ctx context.Context) ([]model.Major, error) {
	snap, err := s.source.Current(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Majors, nil
}
