package loader

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/errgroup"

	"wlrecon/internal/reconcile"
	"wlrecon/pkg/contracts/domain"
)

// Inputs holds the loaded tables of a run keyed by role
type Inputs struct {
	Tables       map[domain.Role]domain.Table
	Fingerprints map[domain.Role]string
}

// Table returns the table for role
func (in *Inputs) Table(role domain.Role) (domain.Table, bool) {
	t, ok := in.Tables[role]
	return t, ok
}

// ReconcileInput extracts the three core tables
func (in *Inputs) ReconcileInput() (reconcile.Input, error) {
	for _, r := range domain.RequiredRoles {
		if _, ok := in.Tables[r]; !ok {
			return reconcile.Input{}, fmt.Errorf("no table loaded for %s", r)
		}
	}
	return reconcile.Input{
		Security: in.Tables[domain.RoleCCPSecurity],
		Rules:    in.Tables[domain.RoleCCPRules],
		AT:       in.Tables[domain.RoleATWhitelist],
	}, nil
}

// Loader reads role-assigned files
type Loader struct {
	logger *slog.Logger
}

// New creates a Loader
func New(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger.With(slog.String("component", "loader"))}
}

// LoadInputs reads every file of the role set concurrently. The first
// failure cancels the remaining loads.
func (l *Loader) LoadInputs(ctx context.Context, roles RoleSet) (*Inputs, error) {
	in := &Inputs{
		Tables:       make(map[domain.Role]domain.Table, len(roles)),
		Fingerprints: make(map[domain.Role]string, len(roles)),
	}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for role, path := range roles {
		role, path := role, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			sum, err := Fingerprint(path)
			if err != nil {
				return fmt.Errorf("%s: %w", role, err)
			}
			t, err := ReadFile(path)
			if err != nil {
				return fmt.Errorf("%s: %w", role, err)
			}

			mu.Lock()
			in.Tables[role] = t
			in.Fingerprints[role] = sum
			mu.Unlock()

			l.logger.InfoContext(ctx, "Input loaded",
				slog.String("role", string(role)),
				slog.String("file", path),
				slog.Int("rows", t.Len()),
				slog.Int("columns", len(t.Columns)),
				slog.String("blake2b", sum))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		l.logger.ErrorContext(ctx, "Failed to load inputs", slog.String("error", err.Error()))
		return nil, err
	}
	return in, nil
}

// Fingerprint returns the hex BLAKE2b-256 digest of a file
func Fingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
