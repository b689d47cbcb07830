// Package provider constructs the pluggable backends (LLM, photo storage,
// notifications) from configuration. Construction happens once at startup;
// an unknown provider name is an error then, never a silent fallback later.
package provider

import (
	"context"
	"fmt"

	"daycaremoments/internal/config"
	"daycaremoments/internal/provider/llm"
	"daycaremoments/internal/provider/notify"
	"daycaremoments/internal/provider/storage"
)

// Registry holds the constructed backends. Accessors always return the same
// instance for the lifetime of the process.
type Registry struct {
	llm      llm.Client
	store    storage.Store
	notifier notify.Notifier
}

// New builds every backend named in cfg. It fails fast on unknown provider
// names or broken credentials so misconfiguration surfaces at startup.
func New(ctx context.Context, cfg *config.Config) (*Registry, error) {
	llmClient, err := buildLLM(cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	notifier, err := buildNotifier(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &Registry{llm: llmClient, store: store, notifier: notifier}, nil
}

// LLM returns the chat completion backend.
func (r *Registry) LLM() llm.Client { return r.llm }

// Storage returns the photo blob backend.
func (r *Registry) Storage() storage.Store { return r.store }

// Notifier returns the notification dispatcher.
func (r *Registry) Notifier() notify.Notifier { return r.notifier }

func buildLLM(cfg *config.Config) (llm.Client, error) {
	switch cfg.LLMProvider {
	case "openai":
		return llm.NewOpenAIClient(cfg.OpenAIAPIKey), nil
	case "gemini":
		return llm.NewGeminiClient(cfg.GeminiAPIKey), nil
	case "claude":
		return llm.NewClaudeClient(cfg.ClaudeAPIKey), nil
	case "ollama":
		return llm.NewOllamaClient(cfg.OllamaURL, cfg.OllamaModel), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", cfg.LLMProvider)
	}
}

func buildStorage(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.StorageType {
	case "local":
		return storage.NewLocalStore(cfg.LocalStoragePath, cfg.BaseURL)
	case "s3":
		return storage.NewS3Store(ctx, cfg.AWSRegion, cfg.S3Bucket)
	case "r2":
		return storage.NewR2Store(ctx, cfg.R2AccountID, cfg.R2AccessKey, cfg.R2SecretKey, cfg.R2Bucket)
	case "drive":
		return storage.NewDriveStore(ctx, cfg.DriveCredentials, cfg.DriveFolderID)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.StorageType)
	}
}

func buildNotifier(ctx context.Context, cfg *config.Config) (notify.Notifier, error) {
	var email notify.EmailSender
	switch cfg.EmailProvider {
	case "ses":
		sender, err := notify.NewSESSender(ctx, cfg.AWSRegion, cfg.EmailFrom, cfg.EmailFromName)
		if err != nil {
			return nil, err
		}
		email = sender
	case "smtp":
		email = notify.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.EmailFrom, cfg.EmailFromName)
	default:
		return nil, fmt.Errorf("unknown email provider: %s", cfg.EmailProvider)
	}

	var sms notify.SMSSender
	var voice notify.VoiceCaller
	if cfg.EnableSMS || cfg.EnableVoiceCalls {
		twilio := notify.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber)
		if cfg.EnableSMS {
			sms = twilio
		}
		if cfg.EnableVoiceCalls {
			voice = twilio
		}
	}

	return notify.NewDispatcher(email, sms, voice), nil
}
