package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	pkgdb "github.com/Skotchmaster/dealer_market/pkg/db"
	"github.com/Skotchmaster/dealer_market/pkg/tokens"
	"github.com/Skotchmaster/dealer_market/services/order/internal/models"
	"github.com/Skotchmaster/dealer_market/services/order/internal/realtime"
	"github.com/Skotchmaster/dealer_market/services/order/internal/repo"
	"github.com/Skotchmaster/dealer_market/services/order/internal/service"
)

type testEnv struct {
	T      *testing.T
	E      *echo.Echo
	Repo   *repo.GormRepo
	Hub    *realtime.Hub
	Secret []byte
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	ctx := context.Background()
	db, err := pkgdb.Open(ctx, "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	rp := &repo.GormRepo{DB: db}
	require.NoError(t, rp.Migrate(ctx))

	hub := realtime.NewHub()
	notifier := &service.NotificationService{Repo: rp, Pusher: hub}
	orders := &service.OrderService{Repo: rp, Notifier: notifier}

	secret := []byte("test-jwt-secret")
	e := echo.New()
	Register(e, &Deps{
		OrderHandler:        &OrderHTTP{Svc: orders, Matching: &service.MatchingService{Repo: rp}},
		NotificationHandler: &NotificationHTTP{Svc: notifier, Hub: hub},
		DealerHandler:       &DealerHTTP{Svc: &service.AccountService{Repo: rp, Notifier: notifier}},
		CatalogHandler:      &CatalogHTTP{Svc: &service.CatalogService{Repo: rp, Notifier: notifier}},
		AddressHandler:      &AddressHTTP{Svc: &service.AddressService{Repo: rp}},
		JWTSecret:           secret,
	})

	return &testEnv{T: t, E: e, Repo: rp, Hub: hub, Secret: secret}
}

func (env *testEnv) token(acc models.Account) string {
	env.T.Helper()
	tok, err := tokens.NewAccessToken(acc.ID.String(), string(acc.Role), time.Now().Add(15*time.Minute), env.Secret)
	require.NoError(env.T, err)
	return tok
}

func (env *testEnv) doJSONRequest(method, path string, body any, token string) *httptest.ResponseRecorder {
	env.T.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (env *testEnv) account(role models.Role, name, pin string) models.Account {
	env.T.Helper()
	acc := models.Account{
		Name:         name,
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "x",
		Role:         role,
		PinCode:      pin,
		IsActive:     true,
	}
	require.NoError(env.T, env.Repo.DB.Create(&acc).Error)
	if role == models.RoleCustomer {
		addr := models.Address{CustomerID: acc.ID, Line1: "12 MG Road", City: "Bengaluru", PinCode: pin, IsDefault: true}
		require.NoError(env.T, env.Repo.DB.Create(&addr).Error)
	}
	return acc
}

func (env *testEnv) product(dealerID uuid.UUID, title, sku string, price int64, stock int64) models.Product {
	env.T.Helper()
	p := models.Product{
		DealerID:      dealerID,
		Title:         title,
		SKU:           sku,
		DealerPrice:   decimal.Zero,
		CustomerPrice: decimal.NewFromInt(price),
		Commission:    decimal.NewFromInt(price / 10),
		Stock:         stock,
		IsApproved:    true,
		IsActive:      true,
	}
	require.NoError(env.T, env.Repo.DB.Create(&p).Error)
	return p
}
