package server_test

import (
	"context"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/localnerve/sportfed/internal/auth"
	"github.com/localnerve/sportfed/internal/config"
	"github.com/localnerve/sportfed/internal/models"
	"github.com/localnerve/sportfed/internal/server"
	"github.com/localnerve/sportfed/internal/services"
	"github.com/localnerve/sportfed/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeProvider struct {
	users   []services.IdentityUser
	admins  []services.IdentityUser
	deleted []string
	tokens  []string
}

func (f *fakeProvider) ListUsers(ctx context.Context, token string) ([]services.IdentityUser, error) {
	f.tokens = append(f.tokens, token)
	return f.users, nil
}

func (f *fakeProvider) DeleteUser(ctx context.Context, token, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeProvider) ListAdmins(ctx context.Context, token string) ([]services.IdentityUser, error) {
	return f.admins, nil
}

type fixture struct {
	app      *fiber.App
	db       *gorm.DB
	provider *fakeProvider
}

func newFixture(t *testing.T, cfg *config.Config) *fixture {
	t.Helper()

	if cfg == nil {
		cfg = &config.Config{AppEnv: "development", AllowedOrigin: "*", AuthProvider: "jwt"}
	}

	db := testutil.NewTestDB(t)
	authn, err := auth.NewJWTAuthenticator(testutil.TestSecret, "", "", "")
	require.NoError(t, err)

	provider := &fakeProvider{
		users:  []services.IdentityUser{{ID: "boss", Name: "Boss"}, {ID: "u1", Name: "User"}},
		admins: []services.IdentityUser{{ID: "boss", Name: "Boss"}},
	}
	cache := services.NewMemoryRoleCache()

	srv := server.New(server.Deps{
		Config:        cfg,
		DB:            db,
		Authenticator: authn,
		Resolver:      &services.RoleResolver{DB: db, Cache: cache, Identity: provider, TTL: time.Minute},
		Identity:      provider,
		Cache:         cache,
	})
	t.Cleanup(srv.Hub.Shutdown)

	return &fixture{app: srv.App, db: db, provider: provider}
}

func userToken(t *testing.T) string {
	return testutil.Token(t, "u1", "User", time.Hour)
}

func adminToken(t *testing.T) string {
	return testutil.Token(t, "boss", "Boss", time.Hour)
}

type mutationResponse struct {
	OK           bool   `json:"ok"`
	ID           string `json:"id"`
	AffectedRows int64  `json:"affectedRows"`
}

func TestSaveTrainerThenListBySchool(t *testing.T) {
	f := newFixture(t, nil)
	token := userToken(t)

	resp := testutil.DoWithToken(t, f.app, "POST", "/saveTrainer", token, map[string]string{
		"schoolId":  "s1",
		"name":      "A. Ivanov",
		"birthday":  "1980-01-01",
		"telephone": "123",
	})
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	var saved mutationResponse
	testutil.ParseJSON(t, resp, &saved)
	assert.True(t, saved.OK)
	assert.NoError(t, uuid.Validate(saved.ID))

	resp = testutil.DoWithToken(t, f.app, "GET", "/trainers?schoolId=s1", token, nil)
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	var list struct {
		Trainers []models.Trainer `json:"trainers"`
	}
	testutil.ParseJSON(t, resp, &list)
	require.Len(t, list.Trainers, 1)
	assert.Equal(t, saved.ID, list.Trainers[0].ID)
	assert.Equal(t, "s1", list.Trainers[0].SchoolID)
	assert.Equal(t, "A. Ivanov", list.Trainers[0].Name)
	assert.Equal(t, "1980-01-01", list.Trainers[0].Birthday)
	assert.Equal(t, "123", list.Trainers[0].Telephone)

	resp = testutil.DoWithToken(t, f.app, "GET", "/trainers?schoolId=s2", token, nil)
	testutil.ParseJSON(t, resp, &list)
	assert.Empty(t, list.Trainers)
}

func TestSaveEntryThenListBySchool(t *testing.T) {
	f := newFixture(t, nil)
	token := userToken(t)

	resp := testutil.DoWithToken(t, f.app, "POST", "/entries/save", token, map[string]interface{}{
		"competitionId": "c1",
		"schoolId":      "s1",
		"sportsmenList": []string{"p1", "p2"},
	})
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	var saved mutationResponse
	testutil.ParseJSON(t, resp, &saved)

	resp = testutil.DoWithToken(t, f.app, "GET", "/entries?schoolId=s1", token, nil)
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	var list struct {
		Entries []map[string]interface{} `json:"entries"`
	}
	testutil.ParseJSON(t, resp, &list)
	require.Len(t, list.Entries, 1)

	entry := list.Entries[0]
	assert.Equal(t, saved.ID, entry["_id"])
	assert.Equal(t, "c1", entry["competitionId"])
	assert.Equal(t, "s1", entry["schoolId"])
	assert.Equal(t, []interface{}{"p1", "p2"}, entry["sportsmenList"])

	resp = testutil.DoWithToken(t, f.app, "GET", "/entries?schoolId=s1&competitionId=c2", token, nil)
	testutil.ParseJSON(t, resp, &list)
	assert.Empty(t, list.Entries)
}

func TestGetByID(t *testing.T) {
	f := newFixture(t, nil)
	token := userToken(t)

	resp := testutil.DoWithToken(t, f.app, "POST", "/saveSportsman", token, map[string]interface{}{
		"schoolId":    "s1",
		"name":        "Petrov",
		"nowTrainer":  "t1",
		"listResults": `[{"competition":"Cup","discipline":"kata","place":2}]`,
	})
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	var saved mutationResponse
	testutil.ParseJSON(t, resp, &saved)

	resp = testutil.DoWithToken(t, f.app, "GET", "/sportsmen/"+saved.ID, token, nil)
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	var got struct {
		Sportsman *models.Sportsman `json:"sportsman"`
	}
	testutil.ParseJSON(t, resp, &got)
	require.NotNil(t, got.Sportsman)
	require.Len(t, got.Sportsman.Results, 1)
	assert.Equal(t, "2", got.Sportsman.Results[0].Place.String())

	resp = testutil.DoWithToken(t, f.app, "GET", "/sportsmen/"+uuid.NewString(), token, nil)
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"sportsman":null}`, string(body))

	// A malformed id surfaces as a generic server error
	resp = testutil.DoWithToken(t, f.app, "GET", "/sportsmen/not-an-id", token, nil)
	testutil.AssertStatus(t, resp, fiber.StatusInternalServerError)
}

func TestSportsmanClientPayloadRoundTrip(t *testing.T) {
	f := newFixture(t, nil)
	token := userToken(t)

	// The shape the web client posts from its sportsman form
	payload := map[string]interface{}{
		"schoolId":      "s1",
		"school":        "Dojo",
		"photo":         "photos/petrov",
		"enrolmentDate": "2020-09-01",
		"placeStudy":    "Gymnasium 5",
		"name":          "Petrov",
		"birthday":      "2010-05-05",
		"fTrainer":      "Old Coach",
		"nowTrainer":    "t1",
		"address":       "Main st 1",
		"telephone":     "555",
		"listResults":   `[{"competition":"Cup","discipline":"kata","place":1}]`,
	}
	resp := testutil.DoWithToken(t, f.app, "POST", "/saveSportsman", token, payload)
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	var saved mutationResponse
	testutil.ParseJSON(t, resp, &saved)

	read := func() map[string]interface{} {
		resp := testutil.DoWithToken(t, f.app, "GET", "/sportsmen/"+saved.ID, token, nil)
		testutil.AssertStatus(t, resp, fiber.StatusOK)
		var got struct {
			Sportsman map[string]interface{} `json:"sportsman"`
		}
		testutil.ParseJSON(t, resp, &got)
		require.NotNil(t, got.Sportsman)
		return got.Sportsman
	}

	got := read()
	assert.Equal(t, "Old Coach", got["fTrainer"])
	assert.Equal(t, "Gymnasium 5", got["studyPlace"])
	assert.Equal(t, "2020-09-01", got["enrolmentDate"])
	assert.Equal(t, "t1", got["nowTrainer"])

	payload["_id"] = saved.ID
	payload["placeStudy"] = "Lyceum 2"
	payload["fTrainer"] = "New Coach"
	resp = testutil.DoWithToken(t, f.app, "POST", "/editSportsman", token, payload)
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	var edited mutationResponse
	testutil.ParseJSON(t, resp, &edited)
	assert.EqualValues(t, 1, edited.AffectedRows)

	got = read()
	assert.Equal(t, "New Coach", got["fTrainer"])
	assert.Equal(t, "Lyceum 2", got["studyPlace"])
}

func TestEditUnknownIDSucceeds(t *testing.T) {
	f := newFixture(t, nil)

	resp := testutil.DoWithToken(t, f.app, "POST", "/editTrainer", userToken(t), map[string]string{
		"_id":  uuid.NewString(),
		"name": "Ghost",
	})
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	var edited mutationResponse
	testutil.ParseJSON(t, resp, &edited)
	assert.True(t, edited.OK)
	assert.Zero(t, edited.AffectedRows)
}

func TestEditReplacesRecord(t *testing.T) {
	f := newFixture(t, nil)
	token := userToken(t)

	resp := testutil.DoWithToken(t, f.app, "POST", "/saveTrainer", token, map[string]string{"schoolId": "s1", "name": "Before", "telephone": "1"})
	var saved mutationResponse
	testutil.ParseJSON(t, resp, &saved)

	resp = testutil.DoWithToken(t, f.app, "POST", "/editTrainer", token, map[string]string{"_id": saved.ID, "schoolId": "s1", "name": "After"})
	testutil.AssertStatus(t, resp, fiber.StatusOK)

	resp = testutil.DoWithToken(t, f.app, "GET", "/trainers/"+saved.ID, token, nil)
	var got struct {
		Trainer models.Trainer `json:"trainer"`
	}
	testutil.ParseJSON(t, resp, &got)
	assert.Equal(t, "After", got.Trainer.Name)
	assert.Empty(t, got.Trainer.Telephone)
}

func TestSchools(t *testing.T) {
	f := newFixture(t, nil)
	owner := userToken(t)

	resp := testutil.DoWithToken(t, f.app, "POST", "/schools/save", owner, map[string]string{"name": "Dojo", "city": "Riga"})
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	var saved mutationResponse
	testutil.ParseJSON(t, resp, &saved)
	assert.Equal(t, int64(1), saved.AffectedRows)

	// Saving again is a no-op that names the existing school
	resp = testutil.DoWithToken(t, f.app, "POST", "/schools/save", owner, map[string]string{"name": "Second Dojo"})
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	var again mutationResponse
	testutil.ParseJSON(t, resp, &again)
	assert.Equal(t, saved.ID, again.ID)
	assert.Zero(t, again.AffectedRows)

	resp = testutil.DoWithToken(t, f.app, "GET", "/school", owner, nil)
	var mine struct {
		School *models.School `json:"school"`
	}
	testutil.ParseJSON(t, resp, &mine)
	require.NotNil(t, mine.School)
	assert.Equal(t, "Dojo", mine.School.Name)
	assert.Equal(t, "u1", mine.School.UserID)

	resp = testutil.DoWithToken(t, f.app, "GET", "/school?userId=u9", owner, nil)
	testutil.ParseJSON(t, resp, &mine)
	assert.Nil(t, mine.School)

	// Someone else may not edit it
	intruder := testutil.Token(t, "u2", "Intruder", time.Hour)
	resp = testutil.DoWithToken(t, f.app, "POST", "/schools/edit", intruder, map[string]string{"_id": saved.ID, "userId": "u1", "name": "Taken"})
	testutil.AssertStatus(t, resp, fiber.StatusForbidden)

	resp = testutil.DoWithToken(t, f.app, "POST", "/schools/save", intruder, map[string]string{"userId": "u1", "name": "Taken"})
	testutil.AssertStatus(t, resp, fiber.StatusForbidden)

	resp = testutil.DoWithToken(t, f.app, "POST", "/schools/edit", owner, map[string]string{"_id": saved.ID, "userId": "u1", "name": "Renamed"})
	testutil.AssertStatus(t, resp, fiber.StatusOK)

	resp = testutil.DoWithToken(t, f.app, "GET", "/schools", intruder, nil)
	var all struct {
		Schools []models.School `json:"schools"`
	}
	testutil.ParseJSON(t, resp, &all)
	require.Len(t, all.Schools, 1)
	assert.Equal(t, "Renamed", all.Schools[0].Name)
}

func TestAuthentication(t *testing.T) {
	f := newFixture(t, nil)

	resp := testutil.Do(t, f.app, "GET", "/schools", nil)
	testutil.AssertStatus(t, resp, fiber.StatusUnauthorized)
	var envelope struct {
		Status int    `json:"status"`
		OK     bool   `json:"ok"`
		Type   string `json:"type"`
	}
	testutil.ParseJSON(t, resp, &envelope)
	assert.Equal(t, fiber.StatusUnauthorized, envelope.Status)
	assert.False(t, envelope.OK)
	assert.Equal(t, "auth.authentication", envelope.Type)

	resp = testutil.DoWithToken(t, f.app, "GET", "/schools", "garbage", nil)
	testutil.AssertStatus(t, resp, fiber.StatusForbidden)

	expired := testutil.Token(t, "u1", "User", -time.Minute)
	resp = testutil.DoWithToken(t, f.app, "GET", "/schools", expired, nil)
	testutil.AssertStatus(t, resp, fiber.StatusForbidden)
}

func TestAdminOnlyRoutes(t *testing.T) {
	f := newFixture(t, nil)
	competition := map[string]string{"name": "Spring Cup", "startDate": "2026-04-01"}

	resp := testutil.DoWithToken(t, f.app, "POST", "/competitions/save", userToken(t), competition)
	testutil.AssertStatus(t, resp, fiber.StatusForbidden)

	resp = testutil.DoWithToken(t, f.app, "GET", "/users", userToken(t), nil)
	testutil.AssertStatus(t, resp, fiber.StatusForbidden)

	// boss is an admin through the identity provider's admin role
	resp = testutil.DoWithToken(t, f.app, "POST", "/competitions/save", adminToken(t), competition)
	testutil.AssertStatus(t, resp, fiber.StatusOK)

	// A token carrying the admin role is enough as well
	roleToken := testutil.Token(t, "u7", "Role Admin", time.Hour, auth.RoleAdmin)
	resp = testutil.DoWithToken(t, f.app, "GET", "/users", roleToken, nil)
	testutil.AssertStatus(t, resp, fiber.StatusOK)

	resp = testutil.DoWithToken(t, f.app, "GET", "/competitions", userToken(t), nil)
	var list struct {
		Competitions []models.Competition `json:"competitions"`
	}
	testutil.ParseJSON(t, resp, &list)
	require.Len(t, list.Competitions, 1)
	assert.Equal(t, "Spring Cup", list.Competitions[0].Name)
}

func TestCheckUserRoleAndSession(t *testing.T) {
	f := newFixture(t, nil)

	resp := testutil.DoWithToken(t, f.app, "POST", "/checkUserRole", userToken(t), map[string]string{"sub": "u1", "name": "User"})
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	var role struct {
		IsAdmin bool `json:"isAdmin"`
	}
	testutil.ParseJSON(t, resp, &role)
	assert.False(t, role.IsAdmin)

	resp = testutil.DoWithToken(t, f.app, "POST", "/checkUserRole", userToken(t), map[string]string{"sub": "u2"})
	testutil.AssertStatus(t, resp, fiber.StatusForbidden)

	resp = testutil.DoWithToken(t, f.app, "POST", "/checkUserRole", adminToken(t), map[string]string{})
	testutil.ParseJSON(t, resp, &role)
	assert.True(t, role.IsAdmin)

	resp = testutil.DoWithToken(t, f.app, "GET", "/users", adminToken(t), nil)
	var users struct {
		Users []models.User `json:"users"`
	}
	testutil.ParseJSON(t, resp, &users)
	assert.Len(t, users.Users, 2)

	resp = testutil.DoWithToken(t, f.app, "GET", "/session", userToken(t), nil)
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	var sess auth.Session
	testutil.ParseJSON(t, resp, &sess)
	assert.Equal(t, "u1", sess.UserID)
	assert.False(t, sess.IsAdmin)
	assert.WithinDuration(t, time.Now().Add(time.Minute), sess.ExpiresAt, 5*time.Second)
}

func TestIdentityProxy(t *testing.T) {
	f := newFixture(t, nil)

	resp := testutil.DoWithToken(t, f.app, "GET", "/identity/users", userToken(t), nil)
	testutil.AssertStatus(t, resp, fiber.StatusForbidden)

	req := httptest.NewRequest("GET", "/identity/users", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	req.Header.Set("X-Identity-Token", "mgmt")
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	var users struct {
		Users []services.IdentityUser `json:"users"`
	}
	testutil.ParseJSON(t, resp, &users)
	assert.Len(t, users.Users, 2)
	assert.Equal(t, []string{"mgmt"}, f.provider.tokens)

	resp = testutil.DoWithToken(t, f.app, "GET", "/identity/admins", adminToken(t), nil)
	var admins struct {
		Admins []services.IdentityUser `json:"admins"`
	}
	testutil.ParseJSON(t, resp, &admins)
	require.Len(t, admins.Admins, 1)
	assert.Equal(t, "boss", admins.Admins[0].ID)

	resp = testutil.DoWithToken(t, f.app, "DELETE", "/identity/users/u1", adminToken(t), nil)
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	var deleted struct {
		Deleted bool `json:"deleted"`
	}
	testutil.ParseJSON(t, resp, &deleted)
	assert.True(t, deleted.Deleted)
	assert.Equal(t, []string{"u1"}, f.provider.deleted)
}

func TestPublicEndpoints(t *testing.T) {
	f := newFixture(t, nil)

	resp := testutil.Do(t, f.app, "GET", "/health", nil)
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	var health services.HealthCheckResult
	testutil.ParseJSON(t, resp, &health)
	assert.Equal(t, "healthy", health.Status)

	resp = testutil.Do(t, f.app, "GET", "/metrics", nil)
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "sportfed_realtime_connections")

	resp = testutil.Do(t, f.app, "GET", "/nowhere", nil)
	testutil.AssertStatus(t, resp, fiber.StatusNotFound)

	resp = testutil.DoWithToken(t, f.app, "GET", "/socket", userToken(t), nil)
	testutil.AssertStatus(t, resp, fiber.StatusUpgradeRequired)
}

func TestStaticFrontEnd(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>sportfed</html>"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o600))

	f := newFixture(t, &config.Config{AppEnv: "production", StaticDir: dir, AllowedOrigin: "*", AuthProvider: "jwt"})

	resp := testutil.Do(t, f.app, "GET", "/app.js", nil)
	testutil.AssertStatus(t, resp, fiber.StatusOK)

	resp = testutil.Do(t, f.app, "GET", "/schools/mine", nil)
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "sportfed")

	// API routes are not shadowed by the front end
	resp = testutil.Do(t, f.app, "GET", "/schools", nil)
	testutil.AssertStatus(t, resp, fiber.StatusUnauthorized)
}
