package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"daycaremoments/internal/facerec"
	"daycaremoments/internal/models"
	"daycaremoments/internal/pricing"
	"daycaremoments/internal/provider/notify"
	"daycaremoments/internal/repository"
	"daycaremoments/internal/security"
	"daycaremoments/internal/validation"
)

// ErrChildQuotaReached means the organization's tier does not allow more
// children.
var ErrChildQuotaReached = errors.New("child limit reached for the current plan")

// EnrollmentService enrolls children and links their parent accounts.
type EnrollmentService struct {
	childRepo *repository.ChildRepository
	userRepo  *repository.UserRepository
	orgRepo   *repository.OrganizationRepository
	encoder   facerec.Encoder
	notifier  notify.Notifier
	baseURL   string
}

// EnrollResult reports what Enroll created. Warning carries a non-fatal
// problem (typically a failed notification) the caller should surface.
type EnrollResult struct {
	Child        *models.Child
	Parent       *models.User
	ParentIsNew  bool
	TempPassword string
	Warning      string
}

func NewEnrollmentService(childRepo *repository.ChildRepository, userRepo *repository.UserRepository, orgRepo *repository.OrganizationRepository, encoder facerec.Encoder, notifier notify.Notifier, baseURL string) *EnrollmentService {
	return &EnrollmentService{
		childRepo: childRepo,
		userRepo:  userRepo,
		orgRepo:   orgRepo,
		encoder:   encoder,
		notifier:  notifier,
		baseURL:   baseURL,
	}
}

// Enroll creates a child record, links or creates the parent account, and
// sends the parent a welcome email. A failed email downgrades to a warning;
// the enrollment itself still succeeds.
func (s *EnrollmentService) Enroll(ctx context.Context, childName string, dateOfBirth time.Time, parentEmail, parentName, parentPhone, orgID string, referencePhoto []byte) (*EnrollResult, error) {
	if err := validation.ValidateName(childName); err != nil {
		return nil, err
	}
	if err := validation.ValidateEmail(parentEmail); err != nil {
		return nil, err
	}
	if err := validation.ValidatePhone(parentPhone); err != nil {
		return nil, err
	}

	org, err := s.orgRepo.GetByID(orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	if org == nil {
		return nil, fmt.Errorf("organization not found")
	}
	tier, err := pricing.Get(org.PricingTier)
	if err != nil {
		tier, _ = pricing.Get(pricing.DefaultTier)
	}

	children, err := s.childRepo.GetByOrganization(orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to count children: %w", err)
	}
	if !pricing.WithinQuota(len(children), tier.MaxChildren) {
		return nil, ErrChildQuotaReached
	}

	result := &EnrollResult{}

	parent, err := s.userRepo.GetByEmail(parentEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to check parent account: %w", err)
	}
	if parent != nil {
		if parent.OrganizationID != orgID {
			return nil, validation.ValidationError{Field: "parent_email", Message: "email belongs to another daycare"}
		}
	} else {
		if err := validation.ValidateName(parentName); err != nil {
			return nil, err
		}
		tempPassword, err := security.GenerateTempPassword(12)
		if err != nil {
			return nil, fmt.Errorf("failed to generate password: %w", err)
		}
		passwordHash, err := security.HashPassword(tempPassword)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		parent, err = s.userRepo.Create(parentEmail, passwordHash, parentName, parentPhone, models.RoleParent, orgID)
		if err != nil {
			return nil, fmt.Errorf("failed to create parent account: %w", err)
		}
		result.ParentIsNew = true
		result.TempPassword = tempPassword
	}
	result.Parent = parent

	child, err := s.childRepo.Create(childName, dateOfBirth, orgID, parent.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create child: %w", err)
	}
	result.Child = child

	if len(referencePhoto) > 0 && s.encoder != nil {
		if err := s.addReferenceEncoding(ctx, child.ID, orgID, referencePhoto); err != nil {
			result.Warning = fmt.Sprintf("face enrollment failed: %v", err)
		}
	}

	if err := s.sendWelcomeEmail(ctx, parent, child, result.TempPassword); err != nil {
		log.Printf("Warning: failed to send enrollment email to %s: %v", parent.Email, err)
		if result.Warning == "" {
			result.Warning = fmt.Sprintf("enrollment email failed: %v", err)
		}
	}

	return result, nil
}

// AddReferencePhoto records additional face encodings for an enrolled child.
func (s *EnrollmentService) AddReferencePhoto(ctx context.Context, childID, orgID string, photo []byte) error {
	child, err := s.childRepo.GetByID(childID, orgID)
	if err != nil {
		return fmt.Errorf("failed to get child: %w", err)
	}
	if child == nil {
		return fmt.Errorf("child not found")
	}
	return s.addReferenceEncoding(ctx, childID, orgID, photo)
}

func (s *EnrollmentService) addReferenceEncoding(ctx context.Context, childID, orgID string, photo []byte) error {
	encodings, err := s.encoder.Encode(ctx, photo)
	if err != nil {
		if errors.Is(err, facerec.ErrNoFace) {
			return validation.ValidationError{Field: "photo", Message: "no face detected in the reference photo"}
		}
		return fmt.Errorf("face encoding failed: %w", err)
	}
	// Reference photos should show one child. Use the first face found.
	if err := s.childRepo.AddFaceEncoding(childID, orgID, encodings[0]); err != nil {
		return fmt.Errorf("failed to store face encoding: %w", err)
	}
	return nil
}

func (s *EnrollmentService) sendWelcomeEmail(ctx context.Context, parent *models.User, child *models.Child, tempPassword string) error {
	body := fmt.Sprintf("Hi %s,\n\n%s is now enrolled. Log in at %s to see photos and daily updates.\n", parent.Name, child.Name, s.baseURL)
	if tempPassword != "" {
		body += fmt.Sprintf("\nYour temporary password is: %s\nPlease change it after your first login.\n", tempPassword)
	}
	return s.notifier.Send(ctx, notify.ChannelEmail, parent.Email, notify.Payload{
		Subject: fmt.Sprintf("%s is enrolled", child.Name),
		Body:    body,
	})
}
