package service

import (
	"context"

	"github.com/stemsi/tagihan-dashboard/internal/model"
)

// ClassService serves the class reference list.
type ClassService struct {
	source SnapshotSource
}

// NewClassService creates a new ClassService.
func NewClassService(source SnapshotSource) *ClassService {
	return &ClassService{source: source}
}

// List retrieves all classes.
func (s *ClassService) List(ctx context.Context) ([]model.Class, error) {
	snap, err := s.source.Current(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Classes, nil
}
