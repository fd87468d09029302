package http

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/cook-api/internal/api/http/handlers"
	"github.com/spec-kit/cook-api/internal/auth"
	"github.com/spec-kit/cook-api/internal/events"
	"github.com/spec-kit/cook-api/internal/observability"
	"github.com/spec-kit/cook-api/internal/repository"
	"github.com/spec-kit/cook-api/internal/service"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	codec, err := auth.NewTokenCodec(base64.StdEncoding.EncodeToString([]byte("router-test-signing-key-0123456789")))
	if err != nil {
		t.Fatalf("NewTokenCodec() error: %v", err)
	}
	tokens := auth.NewTokenService(codec, 15*time.Minute, time.Hour)

	users := repository.NewInMemoryUserRepository()
	reviews := repository.NewInMemoryReviewRepository()
	recipes := repository.NewInMemoryRecipeRepository().WithReviews(reviews)
	dispatcher := events.NewInMemoryDispatcher()
	service.NewAuditService(dispatcher, logger).RegisterHandlers()

	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:   users,
		Tokens:     tokens,
		Dispatcher: dispatcher,
		BcryptCost: bcrypt.MinCost,
	})

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("cook-api", "test", map[string]handlers.Pinger{"postgres": nil}, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Recipes:        handlers.NewRecipesHandler(service.NewRecipeService(recipes, nil, dispatcher)),
		Reviews:        handlers.NewReviewsHandler(service.NewReviewService(reviews, recipes, dispatcher)),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, users),
	})
	return app
}

type response struct {
	status int
	body   map[string]any
}

func call(t *testing.T, app *fiber.App, method, path, token string, payload any) response {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	out := response{status: resp.StatusCode}
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out.body)
	}
	return out
}

func (r response) errorCode() string {
	errBody, _ := r.body["error"].(map[string]any)
	code, _ := errBody["code"].(string)
	return code
}

func (r response) dataID() int64 {
	data, _ := r.body["data"].(map[string]any)
	id, _ := data["id"].(float64)
	return int64(id)
}

func registerAndLogin(t *testing.T, app *fiber.App, username string) (string, string) {
	t.Helper()
	reg := call(t, app, fiber.MethodPost, "/api/auth/register", "", map[string]string{
		"fullname": "Test " + username,
		"username": username,
		"password": "pw-" + username,
	})
	if reg.status != fiber.StatusOK {
		t.Fatalf("register %s: status %d body %v", username, reg.status, reg.body)
	}
	login := call(t, app, fiber.MethodPost, "/api/auth/login", "", map[string]string{
		"username": username,
		"password": "pw-" + username,
	})
	if login.status != fiber.StatusOK {
		t.Fatalf("login %s: status %d body %v", username, login.status, login.body)
	}
	access, _ := login.body["accessToken"].(string)
	refresh, _ := login.body["refreshToken"].(string)
	if access == "" || refresh == "" {
		t.Fatalf("login %s: missing tokens in %v", username, login.body)
	}
	return access, refresh
}

func TestAuthFlow(t *testing.T) {
	app := newTestApp(t)
	access, refresh := registerAndLogin(t, app, "alice")

	dup := call(t, app, fiber.MethodPost, "/api/auth/register", "", map[string]string{
		"fullname": "Alice Again", "username": "alice", "password": "pw1",
	})
	if dup.status != fiber.StatusBadRequest || dup.errorCode() != "USERNAME_TAKEN" {
		t.Fatalf("duplicate register: %d %v", dup.status, dup.body)
	}

	bad := call(t, app, fiber.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "alice", "password": "wrong",
	})
	if bad.status != fiber.StatusBadRequest || bad.errorCode() != "INVALID_CREDENTIALS" {
		t.Fatalf("bad login: %d %v", bad.status, bad.body)
	}

	me := call(t, app, fiber.MethodGet, "/api/auth", access, nil)
	if me.status != fiber.StatusOK || me.body["username"] != "alice" || me.body["role"] != "USER" {
		t.Fatalf("me: %d %v", me.status, me.body)
	}
	if _, leaked := me.body["password"]; leaked {
		t.Fatal("password field leaked")
	}

	if anon := call(t, app, fiber.MethodGet, "/api/auth", "", nil); anon.status != fiber.StatusUnauthorized {
		t.Fatalf("anonymous me: %d", anon.status)
	}
	if wrongType := call(t, app, fiber.MethodGet, "/api/auth", refresh, nil); wrongType.status != fiber.StatusUnauthorized {
		t.Fatalf("refresh token as bearer: %d", wrongType.status)
	}

	refreshed := call(t, app, fiber.MethodPost, "/api/auth/refresh-token", "", map[string]string{"refreshToken": refresh})
	if refreshed.status != fiber.StatusOK || refreshed.body["refreshToken"] != refresh {
		t.Fatalf("refresh: %d %v", refreshed.status, refreshed.body)
	}

	misuse := call(t, app, fiber.MethodPost, "/api/auth/refresh-token", "", map[string]string{"refreshToken": access})
	if misuse.status != fiber.StatusBadRequest || misuse.errorCode() != "WRONG_TOKEN_TYPE" {
		t.Fatalf("access token refresh: %d %v", misuse.status, misuse.body)
	}
}

func TestRecipeAndReviewOwnership(t *testing.T) {
	app := newTestApp(t)
	aliceToken, _ := registerAndLogin(t, app, "alice")
	bobToken, _ := registerAndLogin(t, app, "bob")

	recipe := map[string]any{
		"name": "Pancakes", "description": "Fluffy", "difficulty": "EASY", "calories": 350,
		"ingredients": []string{"flour", "milk", "eggs"},
	}
	noIngredients := map[string]any{
		"name": "Air", "description": "Nothing", "difficulty": "EASY", "calories": 0,
	}
	if bad := call(t, app, fiber.MethodPost, "/api/recipe", aliceToken, noIngredients); bad.status != fiber.StatusBadRequest {
		t.Fatalf("create without ingredients: %d %v", bad.status, bad.body)
	}
	if anon := call(t, app, fiber.MethodPost, "/api/recipe", "", recipe); anon.status != fiber.StatusUnauthorized {
		t.Fatalf("anonymous create: %d", anon.status)
	}
	created := call(t, app, fiber.MethodPost, "/api/recipe", aliceToken, recipe)
	if created.status != fiber.StatusCreated {
		t.Fatalf("create recipe: %d %v", created.status, created.body)
	}
	recipePath := "/api/recipe/" + strconv.FormatInt(created.dataID(), 10)

	got := call(t, app, fiber.MethodGet, recipePath, "", nil)
	if got.status != fiber.StatusOK {
		t.Fatalf("public get: %d", got.status)
	}
	data, _ := got.body["data"].(map[string]any)
	if ingredients, _ := data["ingredients"].([]any); len(ingredients) != 3 || ingredients[0] != "flour" {
		t.Fatalf("unexpected ingredients: %v", data["ingredients"])
	}
	if list := call(t, app, fiber.MethodGet, "/api/recipe", "", nil); list.status != fiber.StatusOK {
		t.Fatalf("public list: %d", list.status)
	}

	forbidden := call(t, app, fiber.MethodPut, recipePath, bobToken, map[string]any{"name": "Stolen"})
	if forbidden.status != fiber.StatusForbidden || forbidden.errorCode() != "FORBIDDEN" {
		t.Fatalf("foreign update: %d %v", forbidden.status, forbidden.body)
	}
	if del := call(t, app, fiber.MethodDelete, recipePath, bobToken, nil); del.status != fiber.StatusForbidden {
		t.Fatalf("foreign delete: %d", del.status)
	}

	reviewPath := "/api/review/recipe/" + strconv.FormatInt(created.dataID(), 10)
	review := map[string]any{"title": "Yum", "reviewContent": "Lovely", "rating": 8}
	if own := call(t, app, fiber.MethodPost, reviewPath, aliceToken, review); own.status != fiber.StatusForbidden {
		t.Fatalf("self review: %d", own.status)
	}
	posted := call(t, app, fiber.MethodPost, reviewPath, bobToken, review)
	if posted.status != fiber.StatusCreated {
		t.Fatalf("create review: %d %v", posted.status, posted.body)
	}
	singleReview := "/api/review/" + strconv.FormatInt(posted.dataID(), 10)
	if edit := call(t, app, fiber.MethodPut, singleReview, aliceToken, map[string]any{"rating": 1}); edit.status != fiber.StatusForbidden {
		t.Fatalf("foreign review update: %d", edit.status)
	}
	if list := call(t, app, fiber.MethodGet, reviewPath, "", nil); list.status != fiber.StatusOK {
		t.Fatalf("list reviews: %d", list.status)
	}

	if del := call(t, app, fiber.MethodDelete, recipePath, aliceToken, nil); del.status != fiber.StatusNoContent {
		t.Fatalf("owner delete: %d", del.status)
	}
	missing := call(t, app, fiber.MethodGet, recipePath, "", nil)
	if missing.status != fiber.StatusNotFound || missing.errorCode() != "NOT_FOUND" {
		t.Fatalf("deleted recipe: %d %v", missing.status, missing.body)
	}
	if orphan := call(t, app, fiber.MethodGet, singleReview, "", nil); orphan.status != fiber.StatusNotFound {
		t.Fatalf("review of deleted recipe: %d %v", orphan.status, orphan.body)
	}
}

func TestBadRequestsAndProbes(t *testing.T) {
	app := newTestApp(t)

	if r := call(t, app, fiber.MethodGet, "/api/recipe/abc", "", nil); r.status != fiber.StatusBadRequest {
		t.Fatalf("bad id: %d", r.status)
	}
	if r := call(t, app, fiber.MethodGet, "/no/such/route", "", nil); r.status != fiber.StatusNotFound {
		t.Fatalf("unknown route: %d", r.status)
	}
	short := call(t, app, fiber.MethodPost, "/api/auth/register", "", map[string]string{
		"fullname": "Al", "username": "al", "password": "pw1",
	})
	if short.status != fiber.StatusBadRequest || short.errorCode() != "VALIDATION_FAILED" {
		t.Fatalf("short fullname: %d %v", short.status, short.body)
	}

	if r := call(t, app, fiber.MethodGet, "/health/live", "", nil); r.status != fiber.StatusOK {
		t.Fatalf("live: %d", r.status)
	}
	ready := call(t, app, fiber.MethodGet, "/health/ready", "", nil)
	if ready.status != fiber.StatusOK || ready.body["status"] != "ready" {
		t.Fatalf("ready: %d %v", ready.status, ready.body)
	}
	if r := call(t, app, fiber.MethodGet, "/metrics", "", nil); r.status != fiber.StatusOK {
		t.Fatalf("metrics: %d", r.status)
	}
}

func TestErrorBodyCarriesRequestID(t *testing.T) {
	app := newTestApp(t)
	req := httptest.NewRequest(fiber.MethodGet, "/api/recipe/999", nil)
	req.Header.Set(observability.RequestIDHeader, "req-123")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test() error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	if got := resp.Header.Get(observability.RequestIDHeader); got != "req-123" {
		t.Fatalf("request id not echoed: %q", got)
	}
	var body struct {
		Error struct {
			Code      string `json:"code"`
			RequestID string `json:"requestId"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "NOT_FOUND" || body.Error.RequestID != "req-123" {
		t.Fatalf("unexpected error body %+v", body)
	}
}

func TestPanicIsRendered(t *testing.T) {
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)
	app.Get("/boom", func(*fiber.Ctx) error { panic("kaboom") })

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/boom", nil), -1)
	if err != nil {
		t.Fatalf("app.Test() error: %v", err)
	}
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
}
