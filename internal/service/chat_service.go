package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"daycaremoments/internal/models"
	"daycaremoments/internal/pricing"
	"daycaremoments/internal/provider/llm"
	"daycaremoments/internal/repository"
	"daycaremoments/internal/validation"
)

var (
	// ErrChatQuotaReached means the organization used today's AI queries.
	ErrChatQuotaReached = errors.New("daily AI chat limit reached for the current plan")
	// ErrFeatureDisabled means the feature is turned off by configuration.
	ErrFeatureDisabled = errors.New("feature is disabled")
)

// ChatService answers parent questions about their child's day, grounded in
// the activity log and photo history.
type ChatService struct {
	llm          llm.Client
	childRepo    *repository.ChildRepository
	activityRepo *repository.ActivityRepository
	photoRepo    *repository.PhotoRepository
	orgRepo      *repository.OrganizationRepository
	enabled      bool

	// Per-org daily query counter, reset when the day changes. In-memory is
	// acceptable for a single-node deployment; the count restarts on reboot.
	mu     sync.Mutex
	counts map[string]int
	day    string
}

func NewChatService(llmClient llm.Client, childRepo *repository.ChildRepository, activityRepo *repository.ActivityRepository, photoRepo *repository.PhotoRepository, orgRepo *repository.OrganizationRepository, enabled bool) *ChatService {
	return &ChatService{
		llm:          llmClient,
		childRepo:    childRepo,
		activityRepo: activityRepo,
		photoRepo:    photoRepo,
		orgRepo:      orgRepo,
		enabled:      enabled,
		counts:       make(map[string]int),
	}
}

// Chat answers a single question about the given child.
func (s *ChatService) Chat(ctx context.Context, childID, orgID, parentID, question string) (string, error) {
	messages, err := s.prepare(ctx, childID, orgID, parentID, question)
	if err != nil {
		return "", err
	}
	reply, err := s.llm.Chat(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("chat failed: %w", err)
	}
	s.consumeQuota(orgID)
	return strings.TrimSpace(reply), nil
}

// StreamChat answers a question, delivering the reply in chunks.
func (s *ChatService) StreamChat(ctx context.Context, childID, orgID, parentID, question string, onChunk func(delta string) error) error {
	messages, err := s.prepare(ctx, childID, orgID, parentID, question)
	if err != nil {
		return err
	}
	if err := s.llm.StreamChat(ctx, messages, onChunk); err != nil {
		return fmt.Errorf("chat failed: %w", err)
	}
	s.consumeQuota(orgID)
	return nil
}

// prepare validates access, enforces the daily quota, and builds the
// conversation with a tenant-scoped system prompt.
func (s *ChatService) prepare(ctx context.Context, childID, orgID, parentID, question string) ([]llm.Message, error) {
	if !s.enabled {
		return nil, ErrFeatureDisabled
	}
	if strings.TrimSpace(question) == "" {
		return nil, validation.ValidationError{Field: "question", Message: "question is required"}
	}

	child, err := s.childRepo.GetByID(childID, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}
	if child == nil {
		return nil, validation.ValidationError{Field: "child_id", Message: "child not found"}
	}
	if parentID != "" && child.ParentID != parentID {
		return nil, validation.ValidationError{Field: "child_id", Message: "child not found"}
	}

	if err := s.checkQuota(orgID); err != nil {
		return nil, err
	}

	systemPrompt, err := s.buildContext(child, orgID)
	if err != nil {
		return nil, err
	}

	return []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: question},
	}, nil
}

func (s *ChatService) buildContext(child *models.Child, orgID string) (string, error) {
	activities, err := s.activityRepo.GetByChild(child.ID, orgID, 10)
	if err != nil {
		return "", fmt.Errorf("failed to get activities: %w", err)
	}

	weekAgo := time.Now().AddDate(0, 0, -7)
	photoCount, err := s.photoRepo.CountByChildSince(child.ID, orgID, weekAgo)
	if err != nil {
		return "", fmt.Errorf("failed to count photos: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are a friendly daycare assistant answering a parent's questions about their child %s.\n", child.Name)
	fmt.Fprintf(&b, "Only use the information below. If you do not know, say so.\n\n")
	fmt.Fprintf(&b, "Photos shared this week: %d\n", photoCount)
	if len(activities) == 0 {
		b.WriteString("No activities have been logged recently.\n")
	} else {
		b.WriteString("Recent activities (newest first):\n")
		for _, a := range activities {
			fmt.Fprintf(&b, "- %s: %s for %d minutes", a.StartedAt.Format("Mon 15:04"), a.Type, a.DurationMinutes)
			if a.Mood != "" {
				fmt.Fprintf(&b, ", mood %s", a.Mood)
			}
			if a.Notes != "" {
				fmt.Fprintf(&b, " (%s)", a.Notes)
			}
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

func (s *ChatService) checkQuota(orgID string) error {
	org, err := s.orgRepo.GetByID(orgID)
	if err != nil {
		return fmt.Errorf("failed to get organization: %w", err)
	}
	if org == nil {
		return fmt.Errorf("organization not found")
	}
	tier, err := pricing.Get(org.PricingTier)
	if err != nil {
		tier, _ = pricing.Get(pricing.DefaultTier)
	}
	if tier.AIQueriesPerDay == pricing.Unlimited {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rollDayLocked()
	if !pricing.WithinQuota(s.counts[orgID], tier.AIQueriesPerDay) {
		return ErrChatQuotaReached
	}
	return nil
}

// consumeQuota records one answered query. Charged only after the LLM call
// succeeds; a failed call costs nothing.
func (s *ChatService) consumeQuota(orgID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rollDayLocked()
	s.counts[orgID]++
}

func (s *ChatService) rollDayLocked() {
	today := time.Now().Format("2006-01-02")
	if s.day != today {
		s.day = today
		s.counts = make(map[string]int)
	}
}
