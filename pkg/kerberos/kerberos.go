package kerberos

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cuemby/rolecfg/pkg/types"
)

const (
	// DefaultKeytabDir is where services expect their keytabs
	DefaultKeytabDir = "/etc/security/keytab"

	SpnegoKeytab      = "spnego.service.keytab"
	RangerAdminKeytab = "rangeradmin.keytab"
)

// Provider fetches keytabs into the local keytab directory
type Provider interface {
	// EnsureKeytabDir creates the keytab directory when missing
	EnsureKeytabDir() error

	// Exists reports whether filename is already present locally
	Exists(filename string) bool

	// DownloadKeytab fetches the keytab of principal and stores it as filename
	DownloadKeytab(ctx context.Context, principal, filename string) error
}

// HTTPProvider downloads keytabs from the master service
type HTTPProvider struct {
	keytabDir string
	masterURL string
	client    *http.Client
}

// NewHTTPProvider creates a provider for the master at masterURL
func NewHTTPProvider(keytabDir, masterURL string) *HTTPProvider {
	if keytabDir == "" {
		keytabDir = DefaultKeytabDir
	}
	return &HTTPProvider{
		keytabDir: keytabDir,
		masterURL: strings.TrimRight(masterURL, "/"),
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Path returns the local path of a keytab file
func (p *HTTPProvider) Path(filename string) string {
	return filepath.Join(p.keytabDir, filename)
}

func (p *HTTPProvider) EnsureKeytabDir() error {
	if err := os.MkdirAll(p.keytabDir, 0755); err != nil {
		return fmt.Errorf("%w: failed to create keytab directory: %v", types.ErrFilesystem, err)
	}
	return nil
}

func (p *HTTPProvider) Exists(filename string) bool {
	_, err := os.Stat(p.Path(filename))
	return err == nil
}

// DownloadKeytab issues GET <master>/keytab?principal=<principal>
func (p *HTTPProvider) DownloadKeytab(ctx context.Context, principal, filename string) error {
	if p.masterURL == "" {
		return fmt.Errorf("no master address configured for keytab download")
	}

	u := p.masterURL + "/keytab?" + url.Values{"principal": {principal}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to build keytab request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download keytab for %s: %w", principal, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download keytab for %s: master returned %s", principal, resp.Status)
	}

	// Write to a temp file first so a partial download never looks present
	tmp, err := os.CreateTemp(p.keytabDir, "."+filename+"-*")
	if err != nil {
		return fmt.Errorf("%w: failed to create keytab file: %v", types.ErrFilesystem, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to read keytab for %s: %w", principal, err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: failed to chmod keytab: %v", types.ErrFilesystem, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: failed to write keytab: %v", types.ErrFilesystem, err)
	}
	if err := os.Rename(tmp.Name(), p.Path(filename)); err != nil {
		return fmt.Errorf("%w: failed to install keytab: %v", types.ErrFilesystem, err)
	}
	return nil
}
