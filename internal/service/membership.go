package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/BuzzLyutic/teamup-api/internal/model"
	"github.com/BuzzLyutic/teamup-api/internal/repo"
)

// MembershipService — единственная точка входа для изменения членства:
// занять роль и убрать участника вместе с каскадом по подзадачам.
type MembershipService struct {
	repo repo.RoleRepository
}

func NewMembershipService(repo repo.RoleRepository) *MembershipService {
	return &MembershipService{repo: repo}
}

func (s *MembershipService) ListRoles(ctx context.Context, taskID uuid.UUID) ([]model.RoleInfo, error) {
	return s.repo.List(ctx, taskID)
}

func (s *MembershipService) ClaimRole(ctx context.Context, roleID, userID uuid.UUID) (model.Role, error) {
	if userID == uuid.Nil {
		return model.Role{}, ErrValidation
	}
	return s.repo.Claim(ctx, roleID, userID)
}

// RemoveMember освобождает роли участника и снимает его со всех
// подзадач задачи одной атомарной операцией
func (s *MembershipService) RemoveMember(ctx context.Context, roleID uuid.UUID) (uuid.UUID, error) {
	return s.repo.RemoveMember(ctx, roleID)
}

func (s *MembershipService) ListMine(ctx context.Context, userID uuid.UUID) ([]model.MyRole, error) {
	if userID == uuid.Nil {
		return nil, ErrValidation
	}
	return s.repo.ListMine(ctx, userID)
}
