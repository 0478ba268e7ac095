// internal/repository/drive/filehost.go
package drive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	xerrors "qarilive-service/internal/pkg/errors"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// ErrNotConfigured is returned by a host built without a Drive client.
var ErrNotConfigured = errors.New("file host is not configured")

const viewURLFormat = "https://drive.google.com/file/d/%s/view?usp=sharing"

type Config struct {
	FolderID           string
	ServiceAccountJSON string
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	Timeout            time.Duration
}

// Upload is one file handed to the host.
type Upload struct {
	Name     string
	MIMEType string
	Data     []byte
}

// StoredFile is where an upload ended up.
type StoredFile struct {
	FileID string
	URL    string
}

// FileHost stores proof images in one Drive folder and shares them with
// anyone holding the link.
type FileHost struct {
	svc      *gdrive.Service
	folderID string
	timeout  time.Duration
	logger   *zap.Logger
}

// New builds a Drive client from a service-account key or, failing that,
// an OAuth refresh token.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*FileHost, error) {
	if cfg.FolderID == "" {
		return nil, errors.New("drive folder id is not configured")
	}

	var opts []option.ClientOption
	switch {
	case cfg.ServiceAccountJSON != "":
		opts = append(opts,
			option.WithCredentialsJSON([]byte(cfg.ServiceAccountJSON)),
			option.WithScopes(gdrive.DriveScope),
		)
	case cfg.RefreshToken != "":
		oc := OAuthConfig(cfg.ClientID, cfg.ClientSecret, "")
		ts := oc.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})
		opts = append(opts, option.WithTokenSource(ts))
	default:
		return nil, errors.New("no drive credentials configured")
	}

	svc, err := gdrive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive client: %w", err)
	}
	return NewWithService(svc, cfg.FolderID, cfg.Timeout, logger), nil
}

func NewWithService(svc *gdrive.Service, folderID string, timeout time.Duration, logger *zap.Logger) *FileHost {
	return &FileHost{svc: svc, folderID: folderID, timeout: timeout, logger: logger}
}

// OAuthConfig is the installed-app client used both for refresh-token
// credentials and the consent flow that produces them.
func OAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  redirectURL,
		Scopes:       []string{gdrive.DriveFileScope},
	}
}

// Upload creates the file in the folder and then grants reader access to
// anyone. A failure in the second step leaves the file private in Drive.
func (h *FileHost) Upload(ctx context.Context, u Upload) (*StoredFile, error) {
	if h.svc == nil {
		return nil, ErrNotConfigured
	}
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	meta := &gdrive.File{
		Name:     u.Name,
		MimeType: u.MIMEType,
		Parents:  []string{h.folderID},
	}
	created, err := h.svc.Files.Create(meta).
		Media(bytes.NewReader(u.Data), googleapi.ContentType(u.MIMEType)).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return nil, upstream("upload proof", err)
	}
	if created.Id == "" {
		return nil, &xerrors.UpstreamError{Op: "upload proof", Status: 502, Body: "file host returned no file id"}
	}

	_, err = h.svc.Permissions.Create(created.Id, &gdrive.Permission{
		Role: "reader",
		Type: "anyone",
	}).Context(ctx).Do()
	if err != nil {
		h.logger.Error("failed to share uploaded proof", zap.String("file_id", created.Id), zap.Error(err))
		return nil, upstream("share proof", err)
	}

	return &StoredFile{
		FileID: created.Id,
		URL:    fmt.Sprintf(viewURLFormat, created.Id),
	}, nil
}

func upstream(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		body := gerr.Message
		if body == "" {
			body = gerr.Body
		}
		return &xerrors.UpstreamError{Op: op, Status: gerr.Code, Body: body}
	}
	return xerrors.FromContext(fmt.Errorf("%s: %w", op, err))
}
