package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"github.com/suitetecsa/suitetecsa-cli/internal/domain"
	"github.com/suitetecsa/suitetecsa-cli/internal/ports"
)

const (
	SessionsPathKey = "sessions.path"

	sessionsFileMode   = 0o600
	sessionsDirMode    = 0o700
	sessionsConfigDir  = ".suitetecsa"
	sessionsConfigFile = "sessions.toml"
	tempFilePattern    = ".sessions-*.toml.tmp"
)

// SessionStore persists the last session of each portal in a single TOML file.
type SessionStore struct {
	sessionsPath string
	clock        ports.Clock
	mu           *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.SessionStore = (*SessionStore)(nil)

func NewSessionStore(cfg *viper.Viper, clock ports.Clock) (*SessionStore, error) {
	if cfg == nil {
		cfg = viper.New()
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}

	sessionsPath := cfg.GetString(SessionsPathKey)
	if sessionsPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		sessionsPath = DefaultSessionsPath(homeDir)
	}

	sessionsPath, err := normalizeSessionsPath(sessionsPath)
	if err != nil {
		return nil, err
	}

	return &SessionStore{sessionsPath: sessionsPath, clock: clock, mu: lockForPath(sessionsPath)}, nil
}

func DefaultSessionsPath(homeDir string) string {
	return filepath.Join(homeDir, sessionsConfigDir, sessionsConfigFile)
}

func (s *SessionStore) Path() string {
	return s.sessionsPath
}

func (s *SessionStore) Exists(ctx context.Context, portal domain.Portal) (bool, error) {
	_, err := s.Load(ctx, portal)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

func (s *SessionStore) Load(ctx context.Context, portal domain.Portal) (domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return domain.Session{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	file, err := s.readSchema()
	if err != nil {
		return domain.Session{}, err
	}

	for _, entry := range file.Sessions {
		if entry.Portal == string(portal) {
			return fromSchema(entry), nil
		}
	}

	return domain.Session{}, domain.ErrSessionNotFound
}

func (s *SessionStore) Save(ctx context.Context, session domain.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !session.Portal.Valid() {
		return fmt.Errorf("save session: unsupported portal %q", session.Portal)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.readSchema()
	if err != nil {
		return err
	}

	encoded := toSchema(session)
	encoded.SavedAt = formatTime(s.clock.Now())

	updated := false
	for i := range file.Sessions {
		if file.Sessions[i].Portal == encoded.Portal {
			file.Sessions[i] = encoded
			updated = true
			break
		}
	}
	if !updated {
		file.Sessions = append(file.Sessions, encoded)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	return s.writeSchema(file)
}

// Delete removes the portal's session. Deleting a missing session is not an error.
func (s *SessionStore) Delete(ctx context.Context, portal domain.Portal) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.readSchema()
	if err != nil {
		return err
	}

	kept := file.Sessions[:0]
	for _, entry := range file.Sessions {
		if entry.Portal != string(portal) {
			kept = append(kept, entry)
		}
	}
	if len(kept) == len(file.Sessions) {
		return nil
	}
	file.Sessions = kept

	return s.writeSchema(file)
}

func (s *SessionStore) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(s.sessionsPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSchema{Version: currentSchemaVersion}, nil
		}
		return fileSchema{}, fmt.Errorf("read sessions file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode sessions file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func (s *SessionStore) writeSchema(file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(s.sessionsPath), sessionsDirMode); err != nil {
		return fmt.Errorf("create sessions directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode sessions file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(s.sessionsPath), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp sessions file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp sessions file: %w", err)
	}

	if err := tempFile.Chmod(sessionsFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp sessions file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp sessions file: %w", err)
	}

	if err := os.Rename(tempName, s.sessionsPath); err != nil {
		return fmt.Errorf("replace sessions file: %w", err)
	}
	cleanup = false

	return nil
}

func normalizeSessionsPath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve sessions path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func toSchema(session domain.Session) sessionSchema {
	return sessionSchema{
		Portal:        string(session.Portal),
		ID:            session.ID,
		CSRF:          session.CSRF,
		AttributeUUID: session.AttributeUUID,
		WLANUserIP:    session.WLANUserIP,
		CreatedAt:     formatTime(session.CreatedAt),
		Cookies:       session.Cookies,
		Account: accountSchema{
			Username:    session.Account.Username,
			BlockDate:   session.Account.BlockDate,
			DeleteDate:  session.Account.DeleteDate,
			AccountType: session.Account.AccountType,
			ServiceType: session.Account.ServiceType,
			Credit:      session.Account.Credit,
			Time:        session.Account.Time,
			MailAccount: session.Account.MailAccount,
		},
	}
}

func fromSchema(entry sessionSchema) domain.Session {
	var cookies map[string]string
	if len(entry.Cookies) > 0 {
		cookies = entry.Cookies
	}

	return domain.Session{
		ID:            entry.ID,
		Portal:        domain.Portal(entry.Portal),
		Cookies:       cookies,
		CSRF:          entry.CSRF,
		AttributeUUID: entry.AttributeUUID,
		WLANUserIP:    entry.WLANUserIP,
		CreatedAt:     parseTime(entry.CreatedAt),
		Account: domain.AccountInfo{
			Username:    entry.Account.Username,
			BlockDate:   entry.Account.BlockDate,
			DeleteDate:  entry.Account.DeleteDate,
			AccountType: entry.Account.AccountType,
			ServiceType: entry.Account.ServiceType,
			Credit:      entry.Account.Credit,
			Time:        entry.Account.Time,
			MailAccount: entry.Account.MailAccount,
		},
	}
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}

	return parsed
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}

	return value.UTC().Format(time.RFC3339)
}
