// Package drive lists and downloads the files of one Google Drive folder.
package drive

import (
	"context"
	"fmt"
	"io"
	"time"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"paperbase/internal/ingest"
)

type Client struct {
	svc      *drive.Service
	folderID string
	timeout  time.Duration
}

func NewClient(ctx context.Context, credentialsFile, folderID string, timeout time.Duration) (*Client, error) {
	svc, err := drive.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(drive.DriveReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("drive service: %w", err)
	}
	return &Client{svc: svc, folderID: folderID, timeout: timeout}, nil
}

// network bounds one Drive API round trip. A zero timeout disables the
// bound.
func (c *Client) network(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// List returns every non-trashed file directly under the folder.
func (c *Client) List(ctx context.Context) ([]ingest.RemoteFile, error) {
	query := fmt.Sprintf("'%s' in parents and trashed = false", c.folderID)

	var files []ingest.RemoteFile
	pageToken := ""
	for {
		pageCtx, cancel := c.network(ctx)
		call := c.svc.Files.List().
			Context(pageCtx).
			Q(query).
			Fields("nextPageToken, files(id, name, mimeType, modifiedTime)").
			PageSize(1000)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		res, err := call.Do()
		cancel()
		if err != nil {
			return nil, fmt.Errorf("drive list: %w", err)
		}

		for _, f := range res.Files {
			if f.MimeType == "application/vnd.google-apps.folder" {
				continue
			}
			modified, err := time.Parse(time.RFC3339, f.ModifiedTime)
			if err != nil {
				return nil, fmt.Errorf("drive file %s: bad modifiedTime %q: %w", f.Name, f.ModifiedTime, err)
			}
			files = append(files, ingest.RemoteFile{
				ID:           f.Id,
				Name:         f.Name,
				LastModified: modified,
			})
		}

		if res.NextPageToken == "" {
			return files, nil
		}
		pageToken = res.NextPageToken
	}
}

func (c *Client) Download(ctx context.Context, id string) ([]byte, error) {
	ctx, cancel := c.network(ctx)
	defer cancel()

	res, err := c.svc.Files.Get(id).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("drive download %s: %w", id, err)
	}
	defer res.Body.Close()
	return io.ReadAll(res.Body)
}
