package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/njprem/lighthouse-api/internal/domain"
	"github.com/njprem/lighthouse-api/internal/media"
	"github.com/njprem/lighthouse-api/internal/repository/memory"
	"github.com/njprem/lighthouse-api/internal/repository/ports"
	"github.com/njprem/lighthouse-api/internal/util"
)

const testSecret = "test-secret"

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fakeStorage struct {
	mu        sync.Mutex
	objects   map[string][]byte
	types     map[string]string
	removed   []string
	uploadErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *fakeStorage) Upload(ctx context.Context, bucket, objectName, contentType string, reader io.Reader, size int64) (string, error) {
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[objectName] = data
	s.types[objectName] = contentType
	return "https://cdn.example.com/" + bucket + "/" + objectName, nil
}

func (s *fakeStorage) Remove(ctx context.Context, bucket, objectName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, objectName)
	s.removed = append(s.removed, objectName)
	return nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []PasswordResetMessage
	err  error
}

func (m *fakeMailer) SendPasswordReset(ctx context.Context, msg PasswordResetMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

// failingAccounts lets a test break individual account operations.
type failingAccounts struct {
	ports.AccountRepository
	createErr error
	findErr   error
}

func (a *failingAccounts) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	if a.createErr != nil {
		return nil, a.createErr
	}
	return a.AccountRepository.Create(ctx, account)
}

func (a *failingAccounts) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	if a.findErr != nil {
		return nil, a.findErr
	}
	return a.AccountRepository.FindByUsername(ctx, username)
}

type failingStore struct {
	*memory.Store
	accounts *failingAccounts
}

func (s *failingStore) Accounts() ports.AccountRepository {
	return s.accounts
}

type harness struct {
	store    *memory.Store
	clock    *fakeClock
	storage  *fakeStorage
	mailer   *fakeMailer
	sessions *util.SessionManager
	auth     *AuthService
	profiles *ProfileService
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWithStore(t, memory.NewStore(), nil)
}

func newHarnessWithStore(t *testing.T, mem *memory.Store, override ports.Store) *harness {
	t.Helper()
	clock := newFakeClock()
	var store ports.Store = mem.WithClock(clock.Now)
	if override != nil {
		store = override
	}
	storage := newFakeStorage()
	mailer := &fakeMailer{}
	sessions := util.NewSessionManager(testSecret, time.Hour, util.WithSessionClock(clock.Now))
	logger := discardLogger()
	auth := NewAuthService(store, util.NewPasswordHasher(bcrypt.MinCost, 4), sessions, storage, mailer, logger, AuthServiceConfig{
		ResetLinkBase: "https://app.example.com/",
		Avatar:        AvatarConfig{Bucket: "avatars"},
	}).WithClock(clock.Now)
	return &harness{
		store:    mem,
		clock:    clock,
		storage:  storage,
		mailer:   mailer,
		sessions: sessions,
		auth:     auth,
		profiles: NewProfileService(store, auth, storage, logger, AvatarConfig{Bucket: "avatars"}),
	}
}

func (h *harness) register(t *testing.T, username, password string) *domain.Account {
	t.Helper()
	account, err := h.auth.Register(context.Background(), RegisterInput{
		FirstName: "First",
		LastName:  "Last",
		Username:  username,
		Password:  password,
	})
	if err != nil {
		t.Fatalf("Register(%s) returned error: %v", username, err)
	}
	return account
}

func pngImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{G: 200, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func pngUpload(t *testing.T) *ImageUpload {
	data := pngImage(t, 4, 4)
	return &ImageUpload{Reader: bytes.NewReader(data), Size: int64(len(data)), FileName: "me.png", ContentType: "image/png"}
}

type stubImageProcessor struct {
	output      []byte
	contentType string
	err         error

	calls   int
	lastDim int
}

func (s *stubImageProcessor) Process(ctx context.Context, upload media.Upload, dimension int) (*media.Result, error) {
	s.calls++
	s.lastDim = dimension
	if s.err != nil {
		return nil, s.err
	}
	ct := s.contentType
	if ct == "" {
		ct = upload.ContentType
	}
	return &media.Result{Bytes: append([]byte(nil), s.output...), ContentType: ct, Resized: true}, nil
}

var errBoom = errors.New("boom")
