package service

import (
	"context"

	"aesthetica/internal/models"
	"aesthetica/internal/repository"
)

type AuditService struct {
	repo *repository.AuditLogRepository
}

func NewAuditService(repo *repository.AuditLogRepository) *AuditService {
	return &AuditService{repo: repo}
}

func (s *AuditService) List(ctx context.Context, f repository.AuditLogFilter) ([]models.AuditLog, int64, error) {
	list, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, 0, storeErr("list audit logs", err)
	}
	return list, total, nil
}
