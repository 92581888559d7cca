package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"royal-villa/internal/domain"
	"royal-villa/internal/repository"
	"royal-villa/internal/service"
)

type mockUserRepo struct {
	mu        sync.Mutex
	users     map[string]domain.User
	nextID    int64
	inserts   int
	lookupErr error
	// skipID simula un store que no devuelve la clave generada.
	skipID bool
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]domain.User)}
}

func (m *mockUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lookupErr != nil {
		return false, m.lookupErr
	}
	_, ok := m.users[strings.ToLower(email)]
	return ok, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lookupErr != nil {
		return domain.User{}, m.lookupErr
	}
	user, ok := m.users[strings.ToLower(email)]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(user.Email)
	if _, ok := m.users[key]; ok {
		return repository.ErrDuplicateEmail
	}
	m.nextID++
	m.inserts++
	if !m.skipID {
		user.ID = m.nextID
	}
	m.users[key] = *user
	return nil
}

func (m *mockUserRepo) UpdatePasswordHash(_ context.Context, id int64, hash string, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, u := range m.users {
		if u.ID == id {
			u.PasswordHash = hash
			u.UpdatedDate = &updatedAt
			m.users[k] = u
			return nil
		}
	}
	return pgx.ErrNoRows
}

type mockVillaRepo struct {
	mu     sync.Mutex
	villas map[int64]domain.Villa
	nextID int64
	err    error
}

func newMockVillaRepo() *mockVillaRepo {
	return &mockVillaRepo{villas: make(map[int64]domain.Villa)}
}

func (m *mockVillaRepo) List(_ context.Context) ([]domain.Villa, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.Villa
	for _, v := range m.villas {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockVillaRepo) GetByID(_ context.Context, id int64) (domain.Villa, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domain.Villa{}, m.err
	}
	v, ok := m.villas[id]
	if !ok {
		return domain.Villa{}, pgx.ErrNoRows
	}
	return v, nil
}

func (m *mockVillaRepo) GetByName(_ context.Context, name string) (domain.Villa, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domain.Villa{}, m.err
	}
	for _, v := range m.villas {
		if strings.EqualFold(v.Name, name) {
			return v, nil
		}
	}
	return domain.Villa{}, pgx.ErrNoRows
}

func (m *mockVillaRepo) Create(_ context.Context, villa *domain.Villa) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.nextID++
	villa.ID = m.nextID
	m.villas[villa.ID] = *villa
	return nil
}

func (m *mockVillaRepo) Update(_ context.Context, villa domain.Villa) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.villas[villa.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.villas[villa.ID] = villa
	return nil
}

func (m *mockVillaRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.villas[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.villas, id)
	return nil
}

type mockAmenityRepo struct {
	mu        sync.Mutex
	amenities map[int64]domain.VillaAmenity
	nextID    int64
}

func newMockAmenityRepo() *mockAmenityRepo {
	return &mockAmenityRepo{amenities: make(map[int64]domain.VillaAmenity)}
}

func (m *mockAmenityRepo) List(_ context.Context) ([]domain.VillaAmenity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.VillaAmenity
	for _, a := range m.amenities {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockAmenityRepo) GetByID(_ context.Context, id int64) (domain.VillaAmenity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.amenities[id]
	if !ok {
		return domain.VillaAmenity{}, pgx.ErrNoRows
	}
	return a, nil
}

func (m *mockAmenityRepo) GetByName(_ context.Context, villaID int64, name string) (domain.VillaAmenity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.amenities {
		if a.VillaID == villaID && strings.EqualFold(a.Name, name) {
			return a, nil
		}
	}
	return domain.VillaAmenity{}, pgx.ErrNoRows
}

func (m *mockAmenityRepo) Create(_ context.Context, amenity *domain.VillaAmenity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	amenity.ID = m.nextID
	m.amenities[amenity.ID] = *amenity
	return nil
}

func (m *mockAmenityRepo) Update(_ context.Context, amenity domain.VillaAmenity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.amenities[amenity.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.amenities[amenity.ID] = amenity
	return nil
}

func (m *mockAmenityRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.amenities[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.amenities, id)
	return nil
}

type testEnv struct {
	router    *gin.Engine
	signer    *service.TokenSigner
	users     *mockUserRepo
	villas    *mockVillaRepo
	amenities *mockAmenityRepo
}

func setupTestEnv(t *testing.T, loginFailureUnauthorized bool) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	signer, err := service.NewTokenSigner("test-secret", service.DefaultTokenTTL)
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	env := &testEnv{
		signer:    signer,
		users:     newMockUserRepo(),
		villas:    newMockVillaRepo(),
		amenities: newMockAmenityRepo(),
	}
	hasher := service.NewArgon2Hasher(service.Argon2Params{Memory: 1024, Time: 1, Threads: 1})
	authSvc := service.NewAuthService(zap.NewNop(), env.users, hasher, signer, nil, nil)

	env.router = NewRouter(
		zap.NewNop(),
		signer,
		NewAuthHandler(zap.NewNop(), authSvc, loginFailureUnauthorized),
		NewVillaHandler(zap.NewNop(), env.villas),
		NewAmenityHandler(zap.NewNop(), env.amenities, env.villas),
	)
	return env
}

func (e *testEnv) tokenFor(t *testing.T, role string) string {
	t.Helper()
	token, err := e.signer.Issue(domain.User{ID: 99, Email: "tester@example.com", Name: "Tester", Role: role})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

type envelopeBody struct {
	Success    bool            `json:"success"`
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Errors     json.RawMessage `json:"errors"`
	Timestamp  time.Time       `json:"timestamp"`
}

func performRequest(r http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	var payload []byte
	switch b := body.(type) {
	case nil:
	case string:
		payload = []byte(b)
	default:
		payload, _ = json.Marshal(b)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelopeBody {
	t.Helper()
	var env envelopeBody
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v body=%s", err, rec.Body.String())
	}
	if env.Timestamp.IsZero() {
		t.Fatalf("envelope without timestamp: %s", rec.Body.String())
	}
	if env.Success != (env.StatusCode >= 200 && env.StatusCode < 300) {
		t.Fatalf("success flag disagrees with statusCode: %s", rec.Body.String())
	}
	return env
}

func hasErrors(env envelopeBody) bool {
	return len(env.Errors) > 0 && string(env.Errors) != "null"
}
