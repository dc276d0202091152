package httpserver

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/dealer_market/services/order/internal/models"
)

func TestDealerOnboarding_HTTP(t *testing.T) {
	env := newTestEnv(t)
	admin := env.account(models.RoleAdmin, "Admin", "")
	staff := env.account(models.RoleEmployee, "Employee", "")

	reg := map[string]any{"name": "Sharma Auto", "email": "sharma@example.com", "password": "s3cret-pass", "pin_code": "411001"}
	rec := env.doJSONRequest(http.MethodPost, "/dealers/register", reg, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password")

	dealer := decode[models.Account](t, rec)
	assert.False(t, dealer.IsActive)

	rec = env.doJSONRequest(http.MethodPost, "/dealers/register", reg, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.doJSONRequest(http.MethodGet, "/notifications", nil, env.token(admin))
	require.Equal(t, http.StatusOK, rec.Code)
	unread := decode[[]models.Notification](t, rec)
	require.Len(t, unread, 1)
	assert.Equal(t, models.NotificationDealer, unread[0].Type)

	cust := env.account(models.RoleCustomer, "Customer", "411001")
	rec = env.doJSONRequest(http.MethodPatch, "/notifications/"+unread[0].ID.String()+"/read", nil, env.token(cust))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = env.doJSONRequest(http.MethodGet, "/notifications", nil, env.token(admin))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Notification](t, rec), 1)

	approvePath := "/dealers/" + dealer.ID.String() + "/approve"
	rec = env.doJSONRequest(http.MethodPatch, approvePath, nil, env.token(staff))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.doJSONRequest(http.MethodPatch, approvePath, nil, env.token(admin))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[models.Account](t, rec).IsActive)

	rec = env.doJSONRequest(http.MethodPost, "/catalog/products", map[string]any{
		"title": "Clutch Plate", "sku": "CP-9", "dealer_price": "800", "customer_price": "950", "stock": 3,
	}, env.token(dealer))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	prod := decode[models.Product](t, rec)
	assert.False(t, prod.IsApproved)
	assert.Equal(t, "411001", prod.PinCode)

	rec = env.doJSONRequest(http.MethodPatch, "/catalog/products/"+prod.ID.String()+"/pricing",
		map[string]any{"dealer_price": "800", "customer_price": "1000"}, env.token(staff))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decimal.NewFromInt(200).Equal(decode[models.Product](t, rec).Commission))

	rec = env.doJSONRequest(http.MethodPatch, "/catalog/products/"+prod.ID.String()+"/approve", nil, env.token(dealer))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = env.doJSONRequest(http.MethodPatch, "/catalog/products/"+prod.ID.String()+"/approve", nil, env.token(staff))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[models.Product](t, rec).IsApproved)
}

func TestAddresses_HTTP(t *testing.T) {
	env := newTestEnv(t)
	cust := env.account(models.RoleCustomer, "Customer", "560001")
	dealer := env.account(models.RoleDealer, "Dealer", "560001")

	rec := env.doJSONRequest(http.MethodPost, "/addresses", map[string]any{"line1": "2 Work Rd", "city": "Pune", "pin_code": "411002"}, env.token(cust))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	work := decode[models.Address](t, rec)
	assert.False(t, work.IsDefault)

	rec = env.doJSONRequest(http.MethodPatch, "/addresses/"+work.ID.String()+"/default", nil, env.token(cust))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.doJSONRequest(http.MethodGet, "/addresses", nil, env.token(cust))
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]models.Address](t, rec)
	require.Len(t, list, 2)
	defaults := 0
	for _, a := range list {
		if a.IsDefault {
			defaults++
			assert.Equal(t, work.ID, a.ID)
		}
	}
	assert.Equal(t, 1, defaults)

	rec = env.doJSONRequest(http.MethodGet, "/addresses", nil, env.token(dealer))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
