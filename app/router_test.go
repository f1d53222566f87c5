package app_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"contactsapi/app"
	"contactsapi/internal"
	"contactsapi/internal/model"
	"contactsapi/internal/repo"
	"contactsapi/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// mailRecorder captures confirmation tokens instead of talking to SMTP.
type mailRecorder struct {
	tokens chan string
}

func (m *mailRecorder) SendConfirmation(to, token string) error {
	m.tokens <- token
	return nil
}

type testServer struct {
	router *gin.Engine
	deps   *internal.Deps
	mail   *mailRecorder
}

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	zap.ReplaceGlobals(zap.NewNop())

	viper.Set("rate_limit.requests", 1000)
	viper.Set("rate_limit.window", time.Minute)
	viper.Set("upload.max_avatar_size", 5<<20)

	m.Run()
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Contact{}))

	mail := &mailRecorder{tokens: make(chan string, 8)}

	d := &internal.Deps{
		DB:       db,
		Hasher:   security.NewHasher(),
		Tokens:   security.NewTokenService("test-secret", 15*time.Minute, 7*24*time.Hour, 24*time.Hour),
		Users:    repo.NewUserStore(db),
		Contacts: repo.NewContactStore(db),
		Mailer:   mail,
	}

	return &testServer{
		router: app.Routes(d, nil),
		deps:   d,
		mail:   mail,
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body string, contentType string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) doJSON(t *testing.T, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body string
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = string(b)
	}

	return s.do(t, method, path, token, body, "application/json")
}

// signupAndLogin walks the whole happy path: signup, confirm via the
// mailed token, login, and returns the issued access token.
func (s *testServer) signupAndLogin(t *testing.T, email, password string) string {
	t.Helper()

	w := s.doJSON(t, http.MethodPost, "/api/auth/signup", "", gin.H{"email": email, "password": password})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var confirmToken string
	select {
	case confirmToken = <-s.mail.tokens:
	case <-time.After(2 * time.Second):
		t.Fatal("confirmation mail was never sent")
	}

	w = s.do(t, http.MethodGet, "/api/auth/confirm_email/"+confirmToken, "", "", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	return s.login(t, email, password)
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()

	form := url.Values{"username": {email}, "password": {password}}
	w := s.do(t, http.MethodPost, "/api/auth/login", "", form.Encode(), "application/x-www-form-urlencoded")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		TokenType    string `json:"token_type"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "bearer", resp.TokenType)
	require.NotEmpty(t, resp.AccessToken)

	return resp.AccessToken
}

func contactPayload(firstName string) gin.H {
	return gin.H{
		"first_name": firstName,
		"last_name":  "Smith",
		"email":      firstName + "@Example.Com",
		"phone":      "+123456789",
		"born_date":  "1999-12-12",
		"additional": "Likes Jazz",
	}
}

func TestSignupConflict(t *testing.T) {
	s := newTestServer(t)

	w := s.doJSON(t, http.MethodPost, "/api/auth/signup", "", gin.H{"email": "alice@example.com", "password": "password123"})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "User successfully created")

	w = s.doJSON(t, http.MethodPost, "/api/auth/signup", "", gin.H{"email": "alice@example.com", "password": "different456"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSignupRejectsBadPayloads(t *testing.T) {
	s := newTestServer(t)

	w := s.doJSON(t, http.MethodPost, "/api/auth/signup", "", gin.H{"email": "not-an-email", "password": "password123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.doJSON(t, http.MethodPost, "/api/auth/signup", "", gin.H{"email": "alice@example.com", "password": "short"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginRequiresConfirmedEmail(t *testing.T) {
	s := newTestServer(t)

	w := s.doJSON(t, http.MethodPost, "/api/auth/signup", "", gin.H{"email": "alice@example.com", "password": "password123"})
	require.Equal(t, http.StatusCreated, w.Code)

	// Correct password, but the email was never confirmed.
	form := url.Values{"username": {"alice@example.com"}, "password": {"password123"}}
	w = s.do(t, http.MethodPost, "/api/auth/login", "", form.Encode(), "application/x-www-form-urlencoded")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Email not confirmed")
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s := newTestServer(t)
	s.signupAndLogin(t, "alice@example.com", "password123")

	form := url.Values{"username": {"alice@example.com"}, "password": {"wrongpass99"}}
	w := s.do(t, http.MethodPost, "/api/auth/login", "", form.Encode(), "application/x-www-form-urlencoded")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	form = url.Values{"username": {"nobody@example.com"}, "password": {"password123"}}
	w = s.do(t, http.MethodPost, "/api/auth/login", "", form.Encode(), "application/x-www-form-urlencoded")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestConfirmEmailTwice(t *testing.T) {
	s := newTestServer(t)

	w := s.doJSON(t, http.MethodPost, "/api/auth/signup", "", gin.H{"email": "alice@example.com", "password": "password123"})
	require.Equal(t, http.StatusCreated, w.Code)

	token := <-s.mail.tokens

	w = s.do(t, http.MethodGet, "/api/auth/confirm_email/"+token, "", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Email confirmed")

	w = s.do(t, http.MethodGet, "/api/auth/confirm_email/"+token, "", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "already confirmed")

	w = s.do(t, http.MethodGet, "/api/auth/confirm_email/garbage", "", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestEmail(t *testing.T) {
	s := newTestServer(t)

	w := s.doJSON(t, http.MethodPost, "/api/auth/signup", "", gin.H{"email": "alice@example.com", "password": "password123"})
	require.Equal(t, http.StatusCreated, w.Code)
	<-s.mail.tokens

	w = s.doJSON(t, http.MethodPost, "/api/auth/request_email", "", gin.H{"email": "alice@example.com"})
	assert.Equal(t, http.StatusOK, w.Code)
	select {
	case <-s.mail.tokens:
	case <-time.After(2 * time.Second):
		t.Fatal("confirmation mail was never re-sent")
	}

	// Unknown addresses get the exact same answer, no probing.
	w = s.doJSON(t, http.MethodPost, "/api/auth/request_email", "", gin.H{"email": "nobody@example.com"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Check your email")
}

func TestRefreshTokenRotation(t *testing.T) {
	s := newTestServer(t)
	s.signupAndLogin(t, "alice@example.com", "password123")

	user, err := s.deps.Users.GetByEmail("alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, user.RefreshToken)
	stored := *user.RefreshToken

	w := s.do(t, http.MethodGet, "/api/auth/refresh_token", stored, "", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// The old refresh token no longer matches the stored one. Presenting
	// it again must revoke the session entirely.
	w = s.do(t, http.MethodGet, "/api/auth/refresh_token", stored, "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	user, err = s.deps.Users.GetByEmail("alice@example.com")
	require.NoError(t, err)
	assert.Nil(t, user.RefreshToken)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	s := newTestServer(t)
	access := s.signupAndLogin(t, "alice@example.com", "password123")

	w := s.do(t, http.MethodGet, "/api/auth/refresh_token", access, "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestContactsRequireAuth(t *testing.T) {
	s := newTestServer(t)

	w := s.doJSON(t, http.MethodGet, "/api/contacts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.doJSON(t, http.MethodGet, "/api/contacts", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestContactCRUD(t *testing.T) {
	s := newTestServer(t)
	token := s.signupAndLogin(t, "alice@example.com", "password123")

	w := s.doJSON(t, http.MethodPost, "/api/contacts", token, contactPayload("John"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created model.Contact
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "john", created.FirstName)
	assert.Equal(t, "john@example.com", created.Email)

	w = s.doJSON(t, http.MethodGet, "/api/contacts", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []model.Contact
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	path := fmt.Sprintf("/api/contacts/%d", created.ID)

	w = s.doJSON(t, http.MethodPut, path, token, contactPayload("Jane"))
	require.Equal(t, http.StatusOK, w.Code)
	var updated model.Contact
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "jane", updated.FirstName)
	assert.Equal(t, created.ID, updated.ID)

	w = s.doJSON(t, http.MethodDelete, path, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.doJSON(t, http.MethodGet, path, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.doJSON(t, http.MethodPut, path, token, contactPayload("Jane"))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.doJSON(t, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestContactCreateRejectsFutureBornDate(t *testing.T) {
	s := newTestServer(t)
	token := s.signupAndLogin(t, "alice@example.com", "password123")

	payload := contactPayload("John")
	payload["born_date"] = time.Now().UTC().AddDate(0, 0, 1).Format("2006-01-02")

	w := s.doJSON(t, http.MethodPost, "/api/contacts", token, payload)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestContactsInvisibleAcrossUsers(t *testing.T) {
	s := newTestServer(t)
	aliceToken := s.signupAndLogin(t, "alice@example.com", "password123")
	bobToken := s.signupAndLogin(t, "bob@example.com", "password123")

	w := s.doJSON(t, http.MethodPost, "/api/contacts", aliceToken, contactPayload("John"))
	require.Equal(t, http.StatusCreated, w.Code)

	var created model.Contact
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	path := fmt.Sprintf("/api/contacts/%d", created.ID)

	// Bob sees Alice's contact through no endpoint whatsoever.
	w = s.doJSON(t, http.MethodGet, "/api/contacts", bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))

	w = s.doJSON(t, http.MethodGet, path, bobToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.doJSON(t, http.MethodGet, "/api/contacts/byfield?field=email&value=john@example.com", bobToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.doJSON(t, http.MethodPut, path, bobToken, contactPayload("Hacked"))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.doJSON(t, http.MethodDelete, path, bobToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Alice still owns it, untouched.
	w = s.doJSON(t, http.MethodGet, path, aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "john")
}

func TestContactByField(t *testing.T) {
	s := newTestServer(t)
	token := s.signupAndLogin(t, "alice@example.com", "password123")

	w := s.doJSON(t, http.MethodPost, "/api/contacts", token, contactPayload("John"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.doJSON(t, http.MethodGet, "/api/contacts/byfield?field=first_name&value=john", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Empty results are a 404, including unknown fields and bad ids.
	w = s.doJSON(t, http.MethodGet, "/api/contacts/byfield?field=first_name&value=jane", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.doJSON(t, http.MethodGet, "/api/contacts/byfield?field=phone&value=123", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.doJSON(t, http.MethodGet, "/api/contacts/byfield?field=id&value=abc", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.doJSON(t, http.MethodGet, "/api/contacts/byfield?field=first_name", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestContactBirthdayRoute(t *testing.T) {
	s := newTestServer(t)
	token := s.signupAndLogin(t, "alice@example.com", "password123")

	soon := contactPayload("John")
	soon["born_date"] = time.Now().UTC().AddDate(-25, 0, 3).Format("2006-01-02")

	far := contactPayload("Jane")
	far["born_date"] = time.Now().UTC().AddDate(-30, 0, 60).Format("2006-01-02")

	w := s.doJSON(t, http.MethodPost, "/api/contacts", token, soon)
	require.Equal(t, http.StatusCreated, w.Code)
	w = s.doJSON(t, http.MethodPost, "/api/contacts", token, far)
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.doJSON(t, http.MethodGet, "/api/contacts/birthday", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list []model.Contact
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "john", list[0].FirstName)
}

func TestUsersMe(t *testing.T) {
	s := newTestServer(t)
	token := s.signupAndLogin(t, "alice@example.com", "password123")

	w := s.doJSON(t, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var me struct {
		ID     uint    `json:"id"`
		Email  string  `json:"email"`
		Avatar *string `json:"avatar"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, "alice@example.com", me.Email)
	assert.NotZero(t, me.ID)
	assert.Nil(t, me.Avatar)
}

func TestAvatarWithoutStorageConfigured(t *testing.T) {
	s := newTestServer(t)
	token := s.signupAndLogin(t, "alice@example.com", "password123")

	w := s.do(t, http.MethodPatch, "/api/users/avatar", token, "", "multipart/form-data; boundary=x")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRootRoute(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/", "", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Contacts")
}
