package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"daycaremoments/internal/database"
	"daycaremoments/internal/facerec"
	"daycaremoments/internal/models"
	"daycaremoments/internal/provider/llm"
	"daycaremoments/internal/provider/notify"
	"daycaremoments/internal/provider/storage"
	"daycaremoments/internal/repository"
	"daycaremoments/internal/security"
)

// newTestDB opens a throwaway SQLite database with the full schema applied.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to initialize test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

// env bundles the repositories, fakes, and services under test against one
// seeded organization.
type env struct {
	db       *database.DB
	orgs     *repository.OrganizationRepository
	users    *repository.UserRepository
	children *repository.ChildRepository
	photos   *repository.PhotoRepository
	acts     *repository.ActivityRepository

	org      *models.Organization
	store    *storage.LocalStore
	llm      *fakeLLM
	notifier *fakeNotifier
	encoder  *fakeEncoder
	tokens   *security.TokenIssuer
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db := newTestDB(t)
	e := &env{
		db:       db,
		orgs:     repository.NewOrganizationRepository(db),
		users:    repository.NewUserRepository(db),
		children: repository.NewChildRepository(db),
		photos:   repository.NewPhotoRepository(db),
		acts:     repository.NewActivityRepository(db),
		llm:      &fakeLLM{reply: "A lovely day."},
		notifier: &fakeNotifier{},
		encoder:  &fakeEncoder{},
		tokens:   security.NewTokenIssuer("test-secret", "daycaremoments"),
	}

	var err error
	e.org, err = e.orgs.Create("Sunny Days", "hello@sunnydays.example", "")
	if err != nil {
		t.Fatalf("failed to create org: %v", err)
	}

	e.store, err = storage.NewLocalStore(t.TempDir(), "http://localhost:8080")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	return e
}

func (e *env) addParent(t *testing.T, email string) *models.User {
	t.Helper()
	hash, err := security.HashPassword("parent-password")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	parent, err := e.users.Create(email, hash, "Pat Parent", "+14155550123", models.RoleParent, e.org.ID)
	if err != nil {
		t.Fatalf("failed to create parent: %v", err)
	}
	return parent
}

func (e *env) addChild(t *testing.T, name, parentID string) *models.Child {
	t.Helper()
	child, err := e.children.Create(name, time.Date(2021, 3, 14, 0, 0, 0, 0, time.UTC), e.org.ID, parentID)
	if err != nil {
		t.Fatalf("failed to create child: %v", err)
	}
	return child
}

func (e *env) photoService(t *testing.T) *PhotoService {
	t.Helper()
	return NewPhotoService(PhotoServiceConfig{
		PhotoRepo:     e.photos,
		ChildRepo:     e.children,
		OrgRepo:       e.orgs,
		UserRepo:      e.users,
		Store:         e.store,
		Encoder:       e.encoder,
		LLM:           e.llm,
		Notifier:      e.notifier,
		MaxFileSize:   1 << 20,
		EnableFaceRec: true,
		RetentionDays: 90,
	})
}

// fakeLLM returns a canned reply, or fails when err is set.
type fakeLLM struct {
	reply string
	err   error
	calls int
}

func (f *fakeLLM) Name() string { return "fake" }

func (f *fakeLLM) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeLLM) StreamChat(ctx context.Context, messages []llm.Message, onChunk func(string) error) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return onChunk(f.reply)
}

// fakeNotifier records every send.
type fakeNotifier struct {
	sends []sentNotification
	err   error
}

type sentNotification struct {
	channel   string
	recipient string
	payload   notify.Payload
}

func (f *fakeNotifier) Send(ctx context.Context, channel, recipient string, payload notify.Payload) error {
	if f.err != nil {
		return f.err
	}
	f.sends = append(f.sends, sentNotification{channel: channel, recipient: recipient, payload: payload})
	return nil
}

// fakeEncoder returns configured encodings, ErrNoFace by default.
type fakeEncoder struct {
	encodings []facerec.Encoding
	err       error
}

func (f *fakeEncoder) Encode(ctx context.Context, image []byte) ([]facerec.Encoding, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.encodings) == 0 {
		return nil, facerec.ErrNoFace
	}
	return f.encodings, nil
}

var errBackendDown = errors.New("backend down")
