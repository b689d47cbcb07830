package service

import (
	"context"
	"fmt"
	"time"

	"daycaremoments/internal/provider/notify"
	"daycaremoments/internal/repository"
	"daycaremoments/internal/security"
	"daycaremoments/internal/validation"
)

const roomTokenTTL = 15 * time.Minute

// VoiceService places daily-summary phone calls to parents and issues room
// tokens for live voice sessions.
type VoiceService struct {
	analytics *AnalyticsService
	childRepo *repository.ChildRepository
	userRepo  *repository.UserRepository
	notifier  notify.Notifier
	tokens    *security.TokenIssuer
	enabled   bool
}

func NewVoiceService(analytics *AnalyticsService, childRepo *repository.ChildRepository, userRepo *repository.UserRepository, notifier notify.Notifier, tokens *security.TokenIssuer, enabled bool) *VoiceService {
	return &VoiceService{
		analytics: analytics,
		childRepo: childRepo,
		userRepo:  userRepo,
		notifier:  notifier,
		tokens:    tokens,
		enabled:   enabled,
	}
}

// CallDailySummary phones the child's parent and reads today's summary.
// requesterID follows the chat convention: a parent's own ID, or empty for
// staff and admins, who may call about any child in the organization.
func (s *VoiceService) CallDailySummary(ctx context.Context, childID, orgID, requesterID string) error {
	if !s.enabled {
		return ErrFeatureDisabled
	}

	child, err := s.childRepo.GetByID(childID, orgID)
	if err != nil {
		return fmt.Errorf("failed to get child: %w", err)
	}
	if child == nil {
		return validation.ValidationError{Field: "child_id", Message: "child not found"}
	}
	if requesterID != "" && child.ParentID != requesterID {
		return validation.ValidationError{Field: "child_id", Message: "child not found"}
	}

	parent, err := s.userRepo.GetByID(child.ParentID)
	if err != nil {
		return fmt.Errorf("failed to get parent: %w", err)
	}
	if parent == nil {
		return fmt.Errorf("parent not found")
	}
	if parent.Phone == "" {
		return validation.ValidationError{Field: "phone", Message: "parent has no phone number on file"}
	}

	summary, err := s.analytics.DailySummary(ctx, childID, orgID)
	if err != nil {
		return fmt.Errorf("failed to build summary: %w", err)
	}

	script := fmt.Sprintf("Hello %s. Here is the daily update for %s. %s Goodbye.", parent.Name, child.Name, summary)
	if err := s.notifier.Send(ctx, notify.ChannelVoice, parent.Phone, notify.Payload{Body: script}); err != nil {
		return fmt.Errorf("failed to place call: %w", err)
	}
	return nil
}

// RoomToken issues a short-lived token granting the parent access to a live
// voice room about their child.
func (s *VoiceService) RoomToken(parentID, childID, orgID string) (string, error) {
	if !s.enabled {
		return "", ErrFeatureDisabled
	}

	child, err := s.childRepo.GetByID(childID, orgID)
	if err != nil {
		return "", fmt.Errorf("failed to get child: %w", err)
	}
	if child == nil || child.ParentID != parentID {
		return "", validation.ValidationError{Field: "child_id", Message: "child not found"}
	}

	token, err := s.tokens.IssueRoomToken(parentID, childID, roomTokenTTL)
	if err != nil {
		return "", fmt.Errorf("failed to issue room token: %w", err)
	}
	return token, nil
}
