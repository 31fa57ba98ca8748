// Package drive uploads detection reports to Google Drive.
package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/smartboa/sbsbs/internal/config"
	nuts "github.com/vaudience/go-nuts"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	reportNamePrefix = "SBSBS_Report_File"
	reportNameFormat = "2006_01_02_15:04:05"
	reportExtension  = ".csv"
	reportMimeType   = "text/csv"
	authState        = "sbsbs-drive"
)

// ReportName is the Drive file name for a report uploaded at t
func ReportName(t time.Time) string {
	return reportNamePrefix + t.Format(reportNameFormat) + reportExtension
}

// Result describes an uploaded report
type Result struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Uploader creates report files in Drive
type Uploader struct {
	files    *gdrive.FilesService
	folderID string
	now      func() time.Time
}

// NewUploader authorises with the stored OAuth token and returns an uploader
func NewUploader(ctx context.Context, cfg config.DriveConfig) (*Uploader, error) {
	oauthCfg, err := OAuthConfig(cfg)
	if err != nil {
		return nil, err
	}
	token, err := loadToken(cfg.TokenPath)
	if err != nil {
		return nil, fmt.Errorf("no drive token at %s, authorise at %s: %w",
			cfg.TokenPath, oauthCfg.AuthCodeURL(authState, oauth2.AccessTypeOffline), err)
	}

	svc, err := gdrive.NewService(ctx, option.WithHTTPClient(oauthCfg.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("unable to create drive client: %w", err)
	}
	nuts.L.Infof("[Drive] Uploader ready (folder %q)", cfg.FolderID)
	return NewUploaderWithService(svc, cfg.FolderID), nil
}

// NewUploaderWithService wraps an already configured Drive service
func NewUploaderWithService(svc *gdrive.Service, folderID string) *Uploader {
	return &Uploader{files: svc.Files, folderID: folderID, now: time.Now}
}

// Upload stores the CSV read from r as a new report file
func (u *Uploader) Upload(ctx context.Context, r io.Reader) (*Result, error) {
	file := &gdrive.File{
		Name:     ReportName(u.now()),
		MimeType: reportMimeType,
	}
	if u.folderID != "" {
		file.Parents = []string{u.folderID}
	}

	created, err := u.files.Create(file).
		Media(r, googleapi.ContentType(reportMimeType)).
		Fields("id", "name").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("drive upload %s: %w", file.Name, err)
	}

	nuts.L.Infof("[Drive] Uploaded %s as %s", file.Name, created.Id)
	return &Result{ID: created.Id, Name: file.Name}, nil
}

// OAuthConfig reads the client secrets file downloaded from the Google console
func OAuthConfig(cfg config.DriveConfig) (*oauth2.Config, error) {
	secrets, err := os.ReadFile(cfg.CredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read client secrets %s: %w", cfg.CredentialsPath, err)
	}
	oauthCfg, err := google.ConfigFromJSON(secrets, gdrive.DriveScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secrets: %w", err)
	}
	return oauthCfg, nil
}

// AuthURL returns the consent page the operator must visit once
func AuthURL(cfg config.DriveConfig) (string, error) {
	oauthCfg, err := OAuthConfig(cfg)
	if err != nil {
		return "", err
	}
	return oauthCfg.AuthCodeURL(authState, oauth2.AccessTypeOffline), nil
}

// Authorize exchanges a consent code for a token and caches it at cfg.TokenPath
func Authorize(ctx context.Context, cfg config.DriveConfig, code string) error {
	oauthCfg, err := OAuthConfig(cfg)
	if err != nil {
		return err
	}
	token, err := oauthCfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("unable to exchange authorisation code: %w", err)
	}
	return saveToken(cfg.TokenPath, token)
}

func loadToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, fmt.Errorf("decode token %s: %w", path, err)
	}
	return token, nil
}

func saveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create token directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to cache oauth token: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	nuts.L.Infof("[Drive] Saved token to %s", path)
	return nil
}
