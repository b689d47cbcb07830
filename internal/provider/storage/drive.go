package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// DriveStore keeps objects in a Google Drive folder using a service account.
// Keys map to file names; the folder is flat, so slashes in keys are kept as
// part of the name.
type DriveStore struct {
	service  *drive.Service
	folderID string
}

// NewDriveStore creates a Drive-backed store. credentialsFile is a service
// account JSON key file.
func NewDriveStore(ctx context.Context, credentialsFile, folderID string) (*DriveStore, error) {
	service, err := drive.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(drive.DriveFileScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return &DriveStore{service: service, folderID: folderID}, nil
}

func (s *DriveStore) Name() string { return "drive" }

// findFile returns the Drive file ID for a key, or ErrNotFound.
func (s *DriveStore) findFile(ctx context.Context, key string) (string, error) {
	query := fmt.Sprintf("name = '%s' and '%s' in parents and trashed = false",
		strings.ReplaceAll(key, "'", `\'`), s.folderID)
	list, err := s.service.Files.List().
		Context(ctx).
		Q(query).
		Fields("files(id)").
		PageSize(1).
		Do()
	if err != nil {
		return "", fmt.Errorf("find drive file %s: %w", key, err)
	}
	if len(list.Files) == 0 {
		return "", ErrNotFound
	}
	return list.Files[0].Id, nil
}

func (s *DriveStore) Upload(ctx context.Context, key, contentType string, body io.Reader) error {
	meta := &drive.File{
		Name:    key,
		Parents: []string{s.folderID},
	}
	_, err := s.service.Files.Create(meta).
		Context(ctx).
		Media(body, googleapi.ContentType(contentType)).
		Do()
	if err != nil {
		return fmt.Errorf("upload drive file %s: %w", key, err)
	}
	return nil
}

func (s *DriveStore) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	fileID, err := s.findFile(ctx, key)
	if err != nil {
		return nil, err
	}
	resp, err := s.service.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("download drive file %s: %w", key, err)
	}
	return resp.Body, nil
}

func (s *DriveStore) Delete(ctx context.Context, key string) error {
	fileID, err := s.findFile(ctx, key)
	if err == ErrNotFound {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.service.Files.Delete(fileID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete drive file %s: %w", key, err)
	}
	return nil
}

func (s *DriveStore) List(ctx context.Context, prefix string) ([]string, error) {
	query := fmt.Sprintf("'%s' in parents and trashed = false", s.folderID)
	var keys []string
	pageToken := ""
	for {
		call := s.service.Files.List().
			Context(ctx).
			Q(query).
			Fields("nextPageToken, files(name)").
			PageSize(200)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		list, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("list drive files: %w", err)
		}
		for _, f := range list.Files {
			if strings.HasPrefix(f.Name, prefix) {
				keys = append(keys, f.Name)
			}
		}
		if list.NextPageToken == "" {
			return keys, nil
		}
		pageToken = list.NextPageToken
	}
}

// URL returns the Drive web content link for the object.
func (s *DriveStore) URL(ctx context.Context, key string) (string, error) {
	fileID, err := s.findFile(ctx, key)
	if err != nil {
		return "", err
	}
	file, err := s.service.Files.Get(fileID).Context(ctx).Fields("webContentLink").Do()
	if err != nil {
		return "", fmt.Errorf("get drive link %s: %w", key, err)
	}
	return file.WebContentLink, nil
}
