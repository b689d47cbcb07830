package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"daycaremoments/internal/facerec"
	"daycaremoments/internal/models"
)

func newEnrollment(e *env) *EnrollmentService {
	return NewEnrollmentService(e.children, e.users, e.orgs, e.encoder, e.notifier, "http://localhost:8080")
}

var dob = time.Date(2021, 3, 14, 0, 0, 0, 0, time.UTC)

func TestEnrollCreatesChildAndParent(t *testing.T) {
	e := newEnv(t)
	svc := newEnrollment(e)

	result, err := svc.Enroll(context.Background(), "Mia Chen", dob, "parent@example.com", "Pat Chen", "+14155550123", e.org.ID, nil)
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}

	if !result.ParentIsNew {
		t.Error("ParentIsNew = false for a fresh email")
	}
	if result.TempPassword == "" {
		t.Error("no temporary password for a new parent")
	}
	if result.Parent.Role != models.RoleParent {
		t.Errorf("parent role = %q", result.Parent.Role)
	}
	if result.Child.ParentID != result.Parent.ID {
		t.Error("child not linked to parent")
	}
	if result.Warning != "" {
		t.Errorf("warning = %q, want none", result.Warning)
	}

	// Welcome email went out with the temp password.
	if len(e.notifier.sends) != 1 {
		t.Fatalf("sends = %d, want 1", len(e.notifier.sends))
	}
}

func TestEnrollLinksExistingParent(t *testing.T) {
	e := newEnv(t)
	parent := e.addParent(t, "parent@example.com")
	svc := newEnrollment(e)

	result, err := svc.Enroll(context.Background(), "Second Child", dob, parent.Email, "", "", e.org.ID, nil)
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if result.ParentIsNew {
		t.Error("ParentIsNew = true for an existing parent")
	}
	if result.TempPassword != "" {
		t.Error("temp password issued for an existing parent")
	}
	if result.Parent.ID != parent.ID {
		t.Errorf("parent = %q, want existing %q", result.Parent.ID, parent.ID)
	}
}

func TestEnrollStoresFaceEncoding(t *testing.T) {
	e := newEnv(t)
	encoding := make([]float64, 128)
	encoding[3] = 0.7
	e.encoder.encodings = []facerec.Encoding{encoding}
	svc := newEnrollment(e)

	result, err := svc.Enroll(context.Background(), "Mia Chen", dob, "parent@example.com", "Pat Chen", "", e.org.ID, []byte("reference photo"))
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}

	child, err := e.children.GetByID(result.Child.ID, e.org.ID)
	if err != nil || child == nil {
		t.Fatalf("child lookup failed: %v", err)
	}
	if len(child.FaceEncodings) != 1 {
		t.Fatalf("encodings = %d, want 1", len(child.FaceEncodings))
	}
	if child.FaceEncodings[0][3] != 0.7 {
		t.Errorf("stored encoding mismatch: %v", child.FaceEncodings[0][:4])
	}
}

func TestEnrollFaceFailureIsWarning(t *testing.T) {
	e := newEnv(t)
	// Default fakeEncoder reports no face.
	svc := newEnrollment(e)

	result, err := svc.Enroll(context.Background(), "Mia Chen", dob, "parent@example.com", "Pat Chen", "", e.org.ID, []byte("blurry photo"))
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if result.Warning == "" {
		t.Error("expected a warning when no face was detected")
	}
	if result.Child == nil {
		t.Error("enrollment failed outright on a face warning")
	}
}

func TestEnrollEmailFailureIsWarning(t *testing.T) {
	e := newEnv(t)
	e.notifier.err = errBackendDown
	svc := newEnrollment(e)

	result, err := svc.Enroll(context.Background(), "Mia Chen", dob, "parent@example.com", "Pat Chen", "", e.org.ID, nil)
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if result.Warning == "" {
		t.Error("expected a warning for the failed email")
	}
}

func TestEnrollQuota(t *testing.T) {
	e := newEnv(t)
	parent := e.addParent(t, "parent@example.com")
	svc := newEnrollment(e)

	// Free tier caps at 50 children.
	for i := 0; i < 50; i++ {
		e.addChild(t, "Child", parent.ID)
	}

	_, err := svc.Enroll(context.Background(), "One Too Many", dob, parent.Email, "", "", e.org.ID, nil)
	if !errors.Is(err, ErrChildQuotaReached) {
		t.Errorf("error = %v, want ErrChildQuotaReached", err)
	}
}

func TestEnrollRejectsCrossTenantParentEmail(t *testing.T) {
	e := newEnv(t)
	otherOrg, err := e.orgs.Create("Other Daycare", "other@example.com", "")
	if err != nil {
		t.Fatalf("create org: %v", err)
	}

	// Parent belongs to the other organization.
	if _, err := e.users.Create("parent@example.com", "hash", "Pat", "", models.RoleParent, otherOrg.ID); err != nil {
		t.Fatalf("create user: %v", err)
	}

	svc := newEnrollment(e)
	if _, err := svc.Enroll(context.Background(), "Mia Chen", dob, "parent@example.com", "Pat", "", e.org.ID, nil); err == nil {
		t.Error("enrollment accepted a parent from another tenant")
	}
}
