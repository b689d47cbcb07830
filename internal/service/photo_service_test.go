package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"daycaremoments/internal/facerec"
	"daycaremoments/internal/models"
)

func uploadRequest(orgID, staffID string) UploadRequest {
	return UploadRequest{
		Data:        []byte("fake jpeg bytes"),
		Filename:    "playing-blocks.jpg",
		ContentType: "image/jpeg",
		Caption:     "building a tower with blocks",
		UploadedBy:  staffID,
		OrgID:       orgID,
	}
}

func TestUploadPipeline(t *testing.T) {
	e := newEnv(t)
	parent := e.addParent(t, "parent@example.com")
	child := e.addChild(t, "Mia", parent.ID)
	svc := e.photoService(t)
	ctx := context.Background()

	// Enroll a face and have the encoder "see" the same one.
	encoding := make([]float64, 128)
	encoding[0] = 0.5
	if err := e.children.AddFaceEncoding(child.ID, e.org.ID, encoding); err != nil {
		t.Fatalf("AddFaceEncoding: %v", err)
	}
	e.encoder.encodings = []facerec.Encoding{encoding}

	result, err := svc.Upload(ctx, uploadRequest(e.org.ID, parent.ID))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	photo := result.Photo

	if photo.Status != models.PhotoPending {
		t.Errorf("status = %q, want pending", photo.Status)
	}
	if photo.ChildID != child.ID {
		t.Errorf("child = %q, want face-matched %q", photo.ChildID, child.ID)
	}
	if photo.ActivityType != "play" {
		t.Errorf("activity = %q, want play", photo.ActivityType)
	}
	if photo.AIDescription != "A lovely day." {
		t.Errorf("description = %q", photo.AIDescription)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("warnings = %v, want none", result.Warnings)
	}

	// Blob landed in storage.
	rc, err := e.store.Download(ctx, photo.StoragePath)
	if err != nil {
		t.Fatalf("blob missing: %v", err)
	}
	rc.Close()
}

func TestUploadLLMFailureFallsBackToClassifier(t *testing.T) {
	e := newEnv(t)
	parent := e.addParent(t, "parent@example.com")
	e.addChild(t, "Mia", parent.ID)
	e.llm.err = errBackendDown
	svc := e.photoService(t)

	result, err := svc.Upload(context.Background(), uploadRequest(e.org.ID, parent.ID))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if len(result.Warnings) == 0 {
		t.Error("expected a warning about the failed description")
	}
	if !strings.Contains(result.Photo.AIDescription, "play") {
		t.Errorf("fallback description = %q, want classifier text", result.Photo.AIDescription)
	}
}

func TestUploadTimeOfDayFallback(t *testing.T) {
	e := newEnv(t)
	parent := e.addParent(t, "parent@example.com")
	e.addChild(t, "Mia", parent.ID)
	e.llm.err = errBackendDown
	svc := e.photoService(t)

	req := uploadRequest(e.org.ID, parent.ID)
	req.Caption = ""
	req.Filename = "IMG_0001.jpg"
	req.CapturedAt = time.Date(2025, 6, 2, 12, 15, 0, 0, time.UTC)

	result, err := svc.Upload(context.Background(), req)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if result.Photo.ActivityType != "meal" {
		t.Errorf("activity = %q, want meal from noon capture time", result.Photo.ActivityType)
	}
}

func TestUploadValidation(t *testing.T) {
	e := newEnv(t)
	parent := e.addParent(t, "parent@example.com")
	svc := e.photoService(t)
	ctx := context.Background()

	t.Run("empty data", func(t *testing.T) {
		req := uploadRequest(e.org.ID, parent.ID)
		req.Data = nil
		if _, err := svc.Upload(ctx, req); err == nil {
			t.Error("Upload accepted empty data")
		}
	})

	t.Run("oversized", func(t *testing.T) {
		req := uploadRequest(e.org.ID, parent.ID)
		req.Data = make([]byte, 2<<20)
		if _, err := svc.Upload(ctx, req); !errors.Is(err, ErrPhotoTooLarge) {
			t.Errorf("error = %v, want ErrPhotoTooLarge", err)
		}
	})

	t.Run("bad content type", func(t *testing.T) {
		req := uploadRequest(e.org.ID, parent.ID)
		req.ContentType = "application/pdf"
		if _, err := svc.Upload(ctx, req); err == nil {
			t.Error("Upload accepted a PDF")
		}
	})

	t.Run("unknown child", func(t *testing.T) {
		req := uploadRequest(e.org.ID, parent.ID)
		req.ChildID = "no-such-child"
		if _, err := svc.Upload(ctx, req); err == nil {
			t.Error("Upload accepted an unknown child")
		}
		keys, err := e.store.List(ctx, e.org.ID)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(keys) != 0 {
			t.Errorf("rejected upload left %d objects in storage", len(keys))
		}
	})
}

func TestApproveNotifiesParent(t *testing.T) {
	e := newEnv(t)
	parent := e.addParent(t, "parent@example.com")
	child := e.addChild(t, "Mia", parent.ID)
	svc := e.photoService(t)
	ctx := context.Background()

	req := uploadRequest(e.org.ID, parent.ID)
	req.ChildID = child.ID
	result, err := svc.Upload(ctx, req)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	warning, err := svc.Approve(ctx, result.Photo.ID, e.org.ID)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if warning != "" {
		t.Errorf("warning = %q, want none", warning)
	}

	photo, err := e.photos.GetByID(result.Photo.ID, e.org.ID)
	if err != nil || photo == nil {
		t.Fatalf("photo lookup failed: %v", err)
	}
	if photo.Status != models.PhotoApproved {
		t.Errorf("status = %q, want approved", photo.Status)
	}

	if len(e.notifier.sends) != 1 || e.notifier.sends[0].recipient != parent.Email {
		t.Errorf("sends = %+v, want one email to the parent", e.notifier.sends)
	}
}

func TestApproveNotificationFailureIsWarning(t *testing.T) {
	e := newEnv(t)
	parent := e.addParent(t, "parent@example.com")
	child := e.addChild(t, "Mia", parent.ID)
	svc := e.photoService(t)
	ctx := context.Background()

	req := uploadRequest(e.org.ID, parent.ID)
	req.ChildID = child.ID
	result, err := svc.Upload(ctx, req)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	e.notifier.err = errBackendDown
	warning, err := svc.Approve(ctx, result.Photo.ID, e.org.ID)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if warning == "" {
		t.Error("expected a warning for the failed notification")
	}

	photo, _ := e.photos.GetByID(result.Photo.ID, e.org.ID)
	if photo.Status != models.PhotoApproved {
		t.Error("approval rolled back on notification failure")
	}
}

func TestRejectDeletesBlob(t *testing.T) {
	e := newEnv(t)
	parent := e.addParent(t, "parent@example.com")
	svc := e.photoService(t)
	ctx := context.Background()

	result, err := svc.Upload(ctx, uploadRequest(e.org.ID, parent.ID))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if err := svc.Reject(ctx, result.Photo.ID, e.org.ID); err != nil {
		t.Fatalf("Reject: %v", err)
	}

	photo, _ := e.photos.GetByID(result.Photo.ID, e.org.ID)
	if photo.Status != models.PhotoRejected {
		t.Errorf("status = %q, want rejected", photo.Status)
	}
	if _, err := e.store.Download(ctx, result.Photo.StoragePath); err == nil {
		t.Error("rejected blob still in storage")
	}
}

func TestGalleryForParentShowsOnlyApprovedOwnChildren(t *testing.T) {
	e := newEnv(t)
	parentA := e.addParent(t, "a@example.com")
	parentB := e.addParent(t, "b@example.com")
	childA := e.addChild(t, "Mia", parentA.ID)
	childB := e.addChild(t, "Leo", parentB.ID)
	svc := e.photoService(t)
	ctx := context.Background()

	upload := func(childID string) *models.Photo {
		req := uploadRequest(e.org.ID, parentA.ID)
		req.ChildID = childID
		result, err := svc.Upload(ctx, req)
		if err != nil {
			t.Fatalf("Upload: %v", err)
		}
		return result.Photo
	}

	approvedA := upload(childA.ID)
	pendingA := upload(childA.ID)
	approvedB := upload(childB.ID)
	if _, err := svc.Approve(ctx, approvedA.ID, e.org.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if _, err := svc.Approve(ctx, approvedB.ID, e.org.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	gallery, err := svc.GalleryForParent(parentA.ID, e.org.ID)
	if err != nil {
		t.Fatalf("GalleryForParent: %v", err)
	}
	if len(gallery) != 1 {
		t.Fatalf("gallery = %d photos, want 1", len(gallery))
	}
	if gallery[0].ID != approvedA.ID {
		t.Errorf("gallery[0] = %q, want %q", gallery[0].ID, approvedA.ID)
	}
	_ = pendingA
}

func TestPhotoQuotaEnforced(t *testing.T) {
	e := newEnv(t)
	parent := e.addParent(t, "parent@example.com")
	svc := e.photoService(t)
	ctx := context.Background()

	// Free tier: 100 photos per month. Seed the count directly.
	for i := 0; i < 100; i++ {
		_, err := e.photos.Create(&models.Photo{
			StoragePath:    "seed",
			Filename:       "seed.jpg",
			Status:         models.PhotoApproved,
			UploadedBy:     parent.ID,
			OrganizationID: e.org.ID,
		})
		if err != nil {
			t.Fatalf("seed photo %d: %v", i, err)
		}
	}

	if _, err := svc.Upload(ctx, uploadRequest(e.org.ID, parent.ID)); !errors.Is(err, ErrPhotoQuotaReached) {
		t.Errorf("error = %v, want ErrPhotoQuotaReached", err)
	}
}

func TestSweepExpired(t *testing.T) {
	e := newEnv(t)
	parent := e.addParent(t, "parent@example.com")
	svc := e.photoService(t)
	ctx := context.Background()

	result, err := svc.Upload(ctx, uploadRequest(e.org.ID, parent.ID))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	// Nothing old enough yet.
	deleted, err := svc.SweepExpired(ctx)
	if err != nil {
		t.Fatalf("SweepExpired: %v", err)
	}
	if deleted != 0 {
		t.Errorf("deleted = %d, want 0", deleted)
	}

	// Backdate a photo past the 90-day window, blob included.
	oldKey := e.org.ID + "/photos/old.jpg"
	if err := e.store.Upload(ctx, oldKey, "image/jpeg", strings.NewReader("old bytes")); err != nil {
		t.Fatalf("seed blob: %v", err)
	}
	old, err := e.photos.Create(&models.Photo{
		StoragePath:    oldKey,
		Filename:       "old.jpg",
		Status:         models.PhotoApproved,
		UploadedBy:     parent.ID,
		OrganizationID: e.org.ID,
		UploadedAt:     time.Now().AddDate(0, 0, -100),
	})
	if err != nil {
		t.Fatalf("seed photo: %v", err)
	}

	deleted, err = svc.SweepExpired(ctx)
	if err != nil {
		t.Fatalf("SweepExpired: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}
	if got, _ := e.photos.GetByID(old.ID, e.org.ID); got != nil {
		t.Error("expired photo row survived the sweep")
	}
	if got, _ := e.photos.GetByID(result.Photo.ID, e.org.ID); got == nil {
		t.Error("fresh photo was swept")
	}
	if _, err := e.store.Download(ctx, oldKey); err == nil {
		t.Error("expired blob still in storage")
	}
}
