package infrastructure

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"go.uber.org/zap"

	"github.com/yourusername/dltrack/internal/domain"
	"github.com/yourusername/dltrack/pkg/logger"
)

// Placeholders substituted in configured locator arguments
const (
	PathPlaceholder = "{path}"
	DirPlaceholder  = "{dir}"
)

// startFunc launches a process without waiting for it to exit
type startFunc func(name string, args ...string) error

// FolderLocator reveals files in the desktop file manager
type FolderLocator struct {
	config *domain.LocatorConfig
	goos   string
	start  startFunc
	logger *zap.Logger
}

// NewFolderLocator creates a locator for the current platform
func NewFolderLocator(config *domain.LocatorConfig, log *zap.Logger) *FolderLocator {
	if config == nil {
		config = &domain.LocatorConfig{}
	}
	return &FolderLocator{
		config: config,
		goos:   runtime.GOOS,
		start:  startDetached,
		logger: logger.OrNop(log),
	}
}

// OpenFileFolder opens the folder containing path with the file selected
// where the platform supports it. The file manager is not waited on.
func (l *FolderLocator) OpenFileFolder(ctx context.Context, path string) error {
	if path == "" {
		return fmt.Errorf("no path to locate")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		// the engine may still be creating the file; its folder is enough
		l.logger.Debug("Located path not found", zap.String("path", path), zap.Error(err))
	}

	binary, args, err := l.Command(path)
	if err != nil {
		return err
	}

	l.logger.Info("Opening file folder", zap.String("command", ShellEscapeCommand(binary, args...)))
	if err := l.start(binary, args...); err != nil {
		return fmt.Errorf("failed to run %s: %w", binary, err)
	}
	return nil
}

// Command returns the program and arguments used to reveal path
func (l *FolderLocator) Command(path string) (string, []string, error) {
	dir := filepath.Dir(path)

	if l.config.Command != "" {
		args := make([]string, 0, len(l.config.Args)+1)
		substituted := false
		for _, arg := range l.config.Args {
			if strings.Contains(arg, PathPlaceholder) || strings.Contains(arg, DirPlaceholder) {
				substituted = true
			}
			arg = strings.ReplaceAll(arg, PathPlaceholder, path)
			arg = strings.ReplaceAll(arg, DirPlaceholder, dir)
			args = append(args, arg)
		}
		if !substituted {
			args = append(args, path)
		}
		return l.config.Command, args, nil
	}

	switch l.goos {
	case "darwin":
		return "open", []string{"-R", path}, nil
	case "windows":
		return "explorer", []string{"/select," + path}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{dir}, nil
	default:
		return "", nil, fmt.Errorf("no file manager known for %s", l.goos)
	}
}

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	// explorer exits non-zero even on success, so the status is not checked
	go func() { _ = cmd.Wait() }()
	return nil
}

// ShellEscape quotes s for display in a logged command line
func ShellEscape(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n\r'\"$`\\!*?[](){}|;<>&~#%") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

// ShellEscapeCommand renders binary and args as a copy-pasteable command line
func ShellEscapeCommand(binary string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, ShellEscape(binary))
	for _, arg := range args {
		parts = append(parts, ShellEscape(arg))
	}
	return strings.Join(parts, " ")
}
