package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"daycaremoments/internal/classifier"
	"daycaremoments/internal/facerec"
	"daycaremoments/internal/models"
	"daycaremoments/internal/pricing"
	"daycaremoments/internal/provider/llm"
	"daycaremoments/internal/provider/notify"
	"daycaremoments/internal/provider/storage"
	"daycaremoments/internal/repository"
	"daycaremoments/internal/validation"
)

var (
	ErrPhotoTooLarge     = errors.New("photo exceeds the size limit")
	ErrPhotoQuotaReached = errors.New("monthly photo limit reached for the current plan")
	ErrPhotoNotFound     = errors.New("photo not found")
)

// PhotoService runs the upload pipeline and moderation flow.
type PhotoService struct {
	photoRepo     *repository.PhotoRepository
	childRepo     *repository.ChildRepository
	orgRepo       *repository.OrganizationRepository
	userRepo      *repository.UserRepository
	store         storage.Store
	encoder       facerec.Encoder
	llm           llm.Client
	notifier      notify.Notifier
	faceTolerance float64
	maxFileSize   int64
	enableFaceRec bool
	retentionDays int
}

// PhotoServiceConfig wires the pipeline dependencies.
type PhotoServiceConfig struct {
	PhotoRepo     *repository.PhotoRepository
	ChildRepo     *repository.ChildRepository
	OrgRepo       *repository.OrganizationRepository
	UserRepo      *repository.UserRepository
	Store         storage.Store
	Encoder       facerec.Encoder
	LLM           llm.Client
	Notifier      notify.Notifier
	FaceTolerance float64
	MaxFileSize   int64
	EnableFaceRec bool
	RetentionDays int
}

func NewPhotoService(cfg PhotoServiceConfig) *PhotoService {
	tolerance := cfg.FaceTolerance
	if tolerance <= 0 {
		tolerance = facerec.DefaultTolerance
	}
	return &PhotoService{
		photoRepo:     cfg.PhotoRepo,
		childRepo:     cfg.ChildRepo,
		orgRepo:       cfg.OrgRepo,
		userRepo:      cfg.UserRepo,
		store:         cfg.Store,
		encoder:       cfg.Encoder,
		llm:           cfg.LLM,
		notifier:      cfg.Notifier,
		faceTolerance: tolerance,
		maxFileSize:   cfg.MaxFileSize,
		enableFaceRec: cfg.EnableFaceRec,
		retentionDays: cfg.RetentionDays,
	}
}

// UploadRequest carries one photo through the pipeline.
type UploadRequest struct {
	Data        []byte
	Filename    string
	ContentType string
	Caption     string
	ChildID     string // optional; face matching fills it in when empty
	CapturedAt  time.Time
	UploadedBy  string
	OrgID       string
}

// UploadResult is the stored photo plus any non-fatal pipeline warnings.
type UploadResult struct {
	Photo    *models.Photo
	Warnings []string
}

// Upload validates and stores a photo, auto-tags it, and inserts it pending
// staff approval. Face matching and the LLM description are best-effort:
// their failures become warnings, never upload failures.
func (s *PhotoService) Upload(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	if len(req.Data) == 0 {
		return nil, validation.ValidationError{Field: "photo", Message: "photo is required"}
	}
	if s.maxFileSize > 0 && int64(len(req.Data)) > s.maxFileSize {
		return nil, ErrPhotoTooLarge
	}
	if err := validation.ValidateImageContentType(req.ContentType); err != nil {
		return nil, err
	}

	if err := s.checkPhotoQuota(req.OrgID); err != nil {
		return nil, err
	}

	// Validate the tagged child before the blob goes anywhere, so a bad
	// child_id never leaves an orphaned object in storage.
	childID := req.ChildID
	if childID != "" {
		child, err := s.childRepo.GetByID(childID, req.OrgID)
		if err != nil {
			return nil, fmt.Errorf("failed to get child: %w", err)
		}
		if child == nil {
			return nil, validation.ValidationError{Field: "child_id", Message: "child not found"}
		}
	}

	result := &UploadResult{}

	key := storageKey(req.OrgID, req.Filename)
	if err := s.store.Upload(ctx, key, req.ContentType, bytes.NewReader(req.Data)); err != nil {
		return nil, fmt.Errorf("failed to store photo: %w", err)
	}

	// Face matching only ever tags children of the same organization, so a
	// matched ID needs no second lookup.
	if childID == "" && s.enableFaceRec && s.encoder != nil {
		matched, err := s.matchChild(ctx, req.OrgID, req.Data)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("face matching failed: %v", err))
		} else {
			childID = matched
		}
	}

	capturedAt := req.CapturedAt
	if capturedAt.IsZero() {
		capturedAt = time.Now()
	}

	text := req.Caption + " " + req.Filename
	activityType := classifier.Activity(text)
	mood := classifier.Mood(text)

	description, err := s.describePhoto(ctx, req.Caption, activityType, mood)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("description generation failed: %v", err))
		// Keyword classification stands in for the LLM, refined by time of
		// day when the caption gave no signal.
		if req.Caption == "" {
			if byTime, ok := classifier.TimeOfDayActivity(capturedAt); ok {
				activityType = byTime
			}
		}
		description = fmt.Sprintf("A %s moment during %s time.", mood, activityType)
	}

	url, err := s.store.URL(ctx, key)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("could not build photo URL: %v", err))
	}

	photo, err := s.photoRepo.Create(&models.Photo{
		StoragePath:    key,
		URL:            url,
		Filename:       req.Filename,
		Caption:        req.Caption,
		Status:         models.PhotoPending,
		ActivityType:   activityType,
		Mood:           mood,
		AIDescription:  description,
		ChildID:        childID,
		UploadedBy:     req.UploadedBy,
		OrganizationID: req.OrgID,
		CapturedAt:     capturedAt,
	})
	if err != nil {
		// Roll the blob back so storage does not accumulate orphans.
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			log.Printf("Warning: failed to delete orphaned photo %s: %v", key, delErr)
		}
		return nil, fmt.Errorf("failed to save photo: %w", err)
	}

	result.Photo = photo
	return result, nil
}

// Approve marks a photo approved and notifies the child's parent. A failed
// notification is a warning, not an approval failure.
func (s *PhotoService) Approve(ctx context.Context, photoID, orgID string) (warning string, err error) {
	photo, err := s.photoRepo.GetByID(photoID, orgID)
	if err != nil {
		return "", fmt.Errorf("failed to get photo: %w", err)
	}
	if photo == nil {
		return "", ErrPhotoNotFound
	}

	if err := s.photoRepo.UpdateStatus(photoID, orgID, models.PhotoApproved); err != nil {
		return "", fmt.Errorf("failed to approve photo: %w", err)
	}

	if photo.ChildID == "" || s.notifier == nil {
		return "", nil
	}
	if err := s.notifyParent(ctx, photo, orgID); err != nil {
		log.Printf("Warning: failed to notify parent for photo %s: %v", photoID, err)
		return fmt.Sprintf("parent notification failed: %v", err), nil
	}
	return "", nil
}

// Reject marks a photo rejected and removes its blob from storage.
func (s *PhotoService) Reject(ctx context.Context, photoID, orgID string) error {
	photo, err := s.photoRepo.GetByID(photoID, orgID)
	if err != nil {
		return fmt.Errorf("failed to get photo: %w", err)
	}
	if photo == nil {
		return ErrPhotoNotFound
	}

	if err := s.photoRepo.UpdateStatus(photoID, orgID, models.PhotoRejected); err != nil {
		return fmt.Errorf("failed to reject photo: %w", err)
	}
	if err := s.store.Delete(ctx, photo.StoragePath); err != nil {
		log.Printf("Warning: failed to delete rejected photo %s: %v", photo.StoragePath, err)
	}
	return nil
}

// Pending lists photos awaiting moderation.
func (s *PhotoService) Pending(orgID string) ([]models.Photo, error) {
	return s.photoRepo.GetByStatus(orgID, models.PhotoPending)
}

// GalleryForParent lists approved photos of the parent's own children only.
func (s *PhotoService) GalleryForParent(parentID, orgID string) ([]models.Photo, error) {
	children, err := s.childRepo.GetByParent(parentID, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to get children: %w", err)
	}
	if len(children) == 0 {
		return nil, nil
	}
	childIDs := make([]string, len(children))
	for i, c := range children {
		childIDs[i] = c.ID
	}
	return s.photoRepo.GetApprovedByChildren(orgID, childIDs)
}

// SweepExpired deletes photos older than the retention window, blob first.
// Returns how many photos were removed.
func (s *PhotoService) SweepExpired(ctx context.Context) (int, error) {
	if s.retentionDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)

	photos, err := s.photoRepo.GetOlderThan(cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to list expired photos: %w", err)
	}

	deleted := 0
	for _, photo := range photos {
		if err := s.store.Delete(ctx, photo.StoragePath); err != nil {
			log.Printf("Warning: failed to delete expired blob %s: %v", photo.StoragePath, err)
			continue
		}
		if err := s.photoRepo.Delete(photo.ID); err != nil {
			log.Printf("Warning: failed to delete expired photo row %s: %v", photo.ID, err)
			continue
		}
		deleted++
	}
	return deleted, nil
}

func (s *PhotoService) checkPhotoQuota(orgID string) error {
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
	if tier.PhotosPerMonth == pricing.Unlimited {
		return nil
	}

	// Rolling 30-day window rather than calendar months.
	since := time.Now().AddDate(0, -1, 0)
	count, err := s.photoRepo.CountByOrganizationSince(orgID, since)
	if err != nil {
		return fmt.Errorf("failed to count photos: %w", err)
	}
	if !pricing.WithinQuota(count, tier.PhotosPerMonth) {
		return ErrPhotoQuotaReached
	}
	return nil
}

// matchChild encodes the photo and matches the first detected face against
// the tenant's enrolled children.
func (s *PhotoService) matchChild(ctx context.Context, orgID string, data []byte) (string, error) {
	encodings, err := s.encoder.Encode(ctx, data)
	if err != nil {
		if errors.Is(err, facerec.ErrNoFace) {
			return "", nil
		}
		return "", err
	}

	children, err := s.childRepo.GetByOrganization(orgID)
	if err != nil {
		return "", fmt.Errorf("failed to get children: %w", err)
	}
	var candidates []facerec.Candidate
	for _, child := range children {
		for _, enc := range child.FaceEncodings {
			candidates = append(candidates, facerec.Candidate{ID: child.ID, Encoding: enc})
		}
	}
	if len(candidates) == 0 {
		return "", nil
	}

	for _, encoding := range encodings {
		if id, ok := facerec.Match(encoding, candidates, s.faceTolerance); ok {
			return id, nil
		}
	}
	return "", nil
}

func (s *PhotoService) describePhoto(ctx context.Context, caption, activityType, mood string) (string, error) {
	if s.llm == nil {
		return "", errors.New("llm not configured")
	}
	prompt := fmt.Sprintf("Write one warm sentence for a parent describing a daycare photo. Activity: %s. Mood: %s.", activityType, mood)
	if caption != "" {
		prompt += fmt.Sprintf(" Staff caption: %q.", caption)
	}
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: "You write short, warm photo descriptions for parents of daycare children. One sentence, no emojis."},
		{Role: llm.RoleUser, Content: prompt},
	}
	reply, err := s.llm.Chat(ctx, messages)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

func (s *PhotoService) notifyParent(ctx context.Context, photo *models.Photo, orgID string) error {
	child, err := s.childRepo.GetByID(photo.ChildID, orgID)
	if err != nil {
		return fmt.Errorf("failed to get child: %w", err)
	}
	if child == nil {
		return errors.New("child not found")
	}
	parent, err := s.userRepo.GetByID(child.ParentID)
	if err != nil {
		return fmt.Errorf("failed to get parent: %w", err)
	}
	if parent == nil {
		return errors.New("parent not found")
	}
	return s.notifier.Send(ctx, notify.ChannelEmail, parent.Email, notify.Payload{
		Subject: fmt.Sprintf("New photo of %s", child.Name),
		Body:    fmt.Sprintf("Hi %s,\n\nA new photo of %s was just shared: %s\n", parent.Name, child.Name, photo.AIDescription),
	})
}

// storageKey builds a tenant-scoped object key with a fresh UUID, keeping
// the original extension.
func storageKey(orgID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = ".jpg"
	}
	return fmt.Sprintf("%s/photos/%s%s", orgID, uuid.New().String(), ext)
}
