package pass

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/suitetecsa/suitetecsa-cli/internal/domain"
	"github.com/suitetecsa/suitetecsa-cli/internal/ports"
)

const entryPrefix = "suitetecsa/"

var ErrUnavailable = errors.New("pass command unavailable")

type runFunc func(ctx context.Context, input string, args ...string) (stdout string, stderr string, err error)

// Store keeps account passwords in the pass password manager, one entry per
// username under "suitetecsa/<username>".
type Store struct {
	run runFunc
}

var _ ports.CredentialStore = (*Store)(nil)

func NewStore() *Store {
	return &Store{run: runPassCommand}
}

func (s *Store) Put(ctx context.Context, credentials domain.Credentials) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := credentials.Validate(); err != nil {
		return err
	}

	key := entryName(credentials.Username)
	_, stderr, err := s.run(ctx, credentials.Password+"\n", "insert", "-m", "-f", key)
	if err != nil {
		return formatError("put", key, err, stderr)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, username string) (domain.Credentials, error) {
	if err := ctx.Err(); err != nil {
		return domain.Credentials{}, err
	}
	if strings.TrimSpace(username) == "" {
		return domain.Credentials{}, domain.ErrMissingUsername
	}

	key := entryName(username)
	stdout, stderr, err := s.run(ctx, "", "show", key)
	if err != nil {
		return domain.Credentials{}, formatError("get", key, err, stderr)
	}

	// pass keeps the password on the first line; later lines are free-form notes.
	password, _, _ := strings.Cut(stdout, "\n")
	password = strings.TrimSuffix(password, "\r")

	return domain.Credentials{Username: username, Password: password}, nil
}

func (s *Store) Delete(ctx context.Context, username string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := entryName(username)
	_, stderr, err := s.run(ctx, "", "rm", "-f", key)
	if err != nil {
		return formatError("delete", key, err, stderr)
	}

	return nil
}

func entryName(username string) string {
	return entryPrefix + strings.TrimSpace(username)
}

func runPassCommand(ctx context.Context, input string, args ...string) (string, string, error) {
	path, err := exec.LookPath("pass")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", "", ErrUnavailable
		}
		return "", "", fmt.Errorf("locate pass command: %w", err)
	}

	cmd := exec.CommandContext(ctx, path, args...)
	if input != "" {
		cmd.Stdin = strings.NewReader(input)
	}

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	return stdout.String(), strings.TrimSpace(stderr.String()), err
}

func formatError(op string, key string, err error, stderr string) error {
	if stderr == "" {
		return fmt.Errorf("pass %s %q: %w", op, key, err)
	}

	return fmt.Errorf("pass %s %q: %w: %s", op, key, err, stderr)
}
