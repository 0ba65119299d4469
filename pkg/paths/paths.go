package paths

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/cuemby/rolecfg/pkg/types"
	"github.com/rs/zerolog"
)

const (
	// DirMode is applied to every directory the manager creates
	DirMode os.FileMode = 0775
)

// Owner applies RunAs ownership to a created path
type Owner interface {
	Chown(path string, runAs *types.RunAs) error
}

// SystemOwner resolves user and group names through the OS account database
type SystemOwner struct{}

// Chown sets path ownership to runAs.User:runAs.Group. An empty group falls
// back to the user's primary group.
func (SystemOwner) Chown(path string, runAs *types.RunAs) error {
	u, err := user.Lookup(runAs.User)
	if err != nil {
		return fmt.Errorf("failed to look up user %s: %w", runAs.User, err)
	}
	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return fmt.Errorf("invalid uid %q for user %s", u.Uid, runAs.User)
	}

	gidStr := u.Gid
	if runAs.Group != "" {
		g, err := user.LookupGroup(runAs.Group)
		if err != nil {
			return fmt.Errorf("failed to look up group %s: %w", runAs.Group, err)
		}
		gidStr = g.Gid
	}
	gid, err := strconv.Atoi(gidStr)
	if err != nil {
		return fmt.Errorf("invalid gid %q for group %s", gidStr, runAs.Group)
	}

	return os.Chown(path, uid, gid)
}

// Manager creates and relocates the directories referenced by path and
// mvpath entries. Both operations check existence first, so re-running a
// configuration is a no-op for paths that are already in place.
type Manager struct {
	owner  Owner
	logger zerolog.Logger
}

// NewManager creates a path manager that chowns through the OS
func NewManager(logger zerolog.Logger) *Manager {
	return &Manager{
		owner:  SystemOwner{},
		logger: logger,
	}
}

// WithOwner replaces the ownership policy
func (m *Manager) WithOwner(owner Owner) *Manager {
	m.owner = owner
	return m
}

// Split breaks a multi-path value on separator. Blank segments are dropped.
func Split(path, separator string) []string {
	if separator == "" || !strings.Contains(path, separator) {
		return []string{path}
	}
	var out []string
	for _, p := range strings.Split(path, separator) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Exists reports whether path exists, without following a final symlink
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// Create makes every directory named by path (split on separator when set)
func (m *Manager) Create(path, separator string, runAs *types.RunAs) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%w: empty path", types.ErrTransform)
	}
	for _, dir := range Split(path, separator) {
		if err := m.mkdir(dir, runAs); err != nil {
			return err
		}
	}
	return nil
}

// Move relocates oldPath into newPath. It only acts when oldPath exists and
// newPath does not; the returned bool reports whether a move happened.
// newPath is created with Create semantics first, then the entries of
// oldPath are moved into it (into its first segment for multi-path values)
// and the emptied oldPath is removed.
func (m *Manager) Move(oldPath, newPath, separator string, runAs *types.RunAs) (bool, error) {
	if oldPath == "" || !Exists(oldPath) || Exists(newPath) {
		m.logger.Debug().
			Str("from", oldPath).
			Str("to", newPath).
			Msg("skip path move")
		return false, nil
	}

	if err := m.Create(newPath, separator, runAs); err != nil {
		return false, err
	}

	dest := Split(newPath, separator)[0]
	if err := moveContents(oldPath, dest); err != nil {
		return false, fmt.Errorf("%w: failed to move %s to %s: %v", types.ErrFilesystem, oldPath, dest, err)
	}

	m.logger.Info().
		Str("from", oldPath).
		Str("to", dest).
		Msg("moved path")
	return true, nil
}

func (m *Manager) mkdir(dir string, runAs *types.RunAs) error {
	if Exists(dir) {
		return nil
	}

	m.logger.Info().Str("path", dir).Msg("create file path")

	if err := os.MkdirAll(dir, DirMode); err != nil {
		return fmt.Errorf("%w: failed to create directory %s: %v", types.ErrFilesystem, dir, err)
	}
	// MkdirAll is subject to the umask
	if err := os.Chmod(dir, DirMode); err != nil {
		return fmt.Errorf("%w: failed to chmod %s: %v", types.ErrFilesystem, dir, err)
	}
	if runAs != nil {
		if err := m.owner.Chown(dir, runAs); err != nil {
			return fmt.Errorf("%w: failed to chown %s to %s:%s: %v", types.ErrFilesystem, dir, runAs.User, runAs.Group, err)
		}
	}
	return nil
}

func moveContents(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return moveOne(src, filepath.Join(dst, filepath.Base(src)))
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, e := range entries {
		target := filepath.Join(dst, e.Name())
		if Exists(target) {
			return fmt.Errorf("destination %s already exists", target)
		}
		if err := moveOne(filepath.Join(src, e.Name()), target); err != nil {
			return err
		}
	}
	return os.Remove(src)
}

// moveOne renames src to dst, copying when they live on different devices
func moveOne(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil || !errors.Is(err, syscall.EXDEV) {
		return err
	}
	if err := copyTree(src, dst); err != nil {
		return err
	}
	return os.RemoveAll(src)
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		info, err := d.Info()
		if err != nil {
			return err
		}

		switch {
		case d.IsDir():
			return os.MkdirAll(target, info.Mode().Perm())
		case info.Mode()&os.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)
		default:
			return copyFile(path, target, info.Mode().Perm())
		}
	})
}

func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_EXCL, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
