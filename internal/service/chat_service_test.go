package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"daycaremoments/internal/models"
)

func newChat(e *env, enabled bool) *ChatService {
	return NewChatService(e.llm, e.children, e.acts, e.photos, e.orgs, enabled)
}

func TestChatAnswersWithContext(t *testing.T) {
	e := newEnv(t)
	parent := e.addParent(t, "parent@example.com")
	child := e.addChild(t, "Mia", parent.ID)
	chat := newChat(e, true)

	if _, err := e.acts.Create(&models.Activity{
		ChildID:         child.ID,
		OrganizationID:  e.org.ID,
		Type:            "meal",
		Mood:            "happy",
		Notes:           "ate all her pasta",
		StartedAt:       time.Now().Add(-2 * time.Hour),
		DurationMinutes: 30,
	}); err != nil {
		t.Fatalf("seed activity: %v", err)
	}

	reply, err := chat.Chat(context.Background(), child.ID, e.org.ID, parent.ID, "How was lunch?")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if reply != "A lovely day." {
		t.Errorf("reply = %q", reply)
	}
	if e.llm.calls != 1 {
		t.Errorf("llm calls = %d, want 1", e.llm.calls)
	}
}

func TestChatDisabled(t *testing.T) {
	e := newEnv(t)
	parent := e.addParent(t, "parent@example.com")
	child := e.addChild(t, "Mia", parent.ID)
	chat := newChat(e, false)

	_, err := chat.Chat(context.Background(), child.ID, e.org.ID, parent.ID, "hi")
	if !errors.Is(err, ErrFeatureDisabled) {
		t.Errorf("error = %v, want ErrFeatureDisabled", err)
	}
}

func TestChatRejectsOtherParentsChild(t *testing.T) {
	e := newEnv(t)
	parentA := e.addParent(t, "a@example.com")
	parentB := e.addParent(t, "b@example.com")
	child := e.addChild(t, "Mia", parentA.ID)
	chat := newChat(e, true)

	if _, err := chat.Chat(context.Background(), child.ID, e.org.ID, parentB.ID, "hi"); err == nil {
		t.Error("chat answered about another parent's child")
	}
}

func TestChatQuotaPerDay(t *testing.T) {
	e := newEnv(t)
	parent := e.addParent(t, "parent@example.com")
	child := e.addChild(t, "Mia", parent.ID)
	chat := newChat(e, true)
	ctx := context.Background()

	// Free tier allows 20 queries per day.
	for i := 0; i < 20; i++ {
		if _, err := chat.Chat(ctx, child.ID, e.org.ID, parent.ID, "hi"); err != nil {
			t.Fatalf("query %d: %v", i, err)
		}
	}
	if _, err := chat.Chat(ctx, child.ID, e.org.ID, parent.ID, "hi"); !errors.Is(err, ErrChatQuotaReached) {
		t.Errorf("error = %v, want ErrChatQuotaReached", err)
	}
}

func TestChatQuotaNotChargedOnLLMFailure(t *testing.T) {
	e := newEnv(t)
	parent := e.addParent(t, "parent@example.com")
	child := e.addChild(t, "Mia", parent.ID)
	chat := newChat(e, true)
	ctx := context.Background()

	// Failed third-party calls cost nothing against the daily quota.
	e.llm.err = errBackendDown
	for i := 0; i < 5; i++ {
		if _, err := chat.Chat(ctx, child.ID, e.org.ID, parent.ID, "hi"); err == nil {
			t.Fatalf("query %d succeeded with the backend down", i)
		}
	}
	e.llm.err = nil

	// The full free-tier budget of 20 is still available.
	for i := 0; i < 20; i++ {
		if _, err := chat.Chat(ctx, child.ID, e.org.ID, parent.ID, "hi"); err != nil {
			t.Fatalf("query %d: %v", i, err)
		}
	}
	if _, err := chat.Chat(ctx, child.ID, e.org.ID, parent.ID, "hi"); !errors.Is(err, ErrChatQuotaReached) {
		t.Errorf("error = %v, want ErrChatQuotaReached", err)
	}
}

func TestChatQuotaUnlimitedOnProfessional(t *testing.T) {
	e := newEnv(t)
	parent := e.addParent(t, "parent@example.com")
	child := e.addChild(t, "Mia", parent.ID)
	if err := e.orgs.UpdateTier(e.org.ID, "professional"); err != nil {
		t.Fatalf("UpdateTier: %v", err)
	}
	chat := newChat(e, true)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		if _, err := chat.Chat(ctx, child.ID, e.org.ID, parent.ID, "hi"); err != nil {
			t.Fatalf("query %d: %v", i, err)
		}
	}
}

func TestStreamChatDeliversChunks(t *testing.T) {
	e := newEnv(t)
	parent := e.addParent(t, "parent@example.com")
	child := e.addChild(t, "Mia", parent.ID)
	chat := newChat(e, true)

	var got strings.Builder
	err := chat.StreamChat(context.Background(), child.ID, e.org.ID, parent.ID, "hi", func(delta string) error {
		got.WriteString(delta)
		return nil
	})
	if err != nil {
		t.Fatalf("StreamChat: %v", err)
	}
	if got.String() != "A lovely day." {
		t.Errorf("streamed = %q", got.String())
	}
}

func TestChatValidatesQuestion(t *testing.T) {
	e := newEnv(t)
	parent := e.addParent(t, "parent@example.com")
	child := e.addChild(t, "Mia", parent.ID)
	chat := newChat(e, true)

	if _, err := chat.Chat(context.Background(), child.ID, e.org.ID, parent.ID, "   "); err == nil {
		t.Error("chat accepted a blank question")
	}
}
