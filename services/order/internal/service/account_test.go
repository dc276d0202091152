package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Skotchmaster/dealer_market/services/order/internal/models"
	"github.com/Skotchmaster/dealer_market/services/order/internal/transport"
)

func TestRegisterDealer(t *testing.T) {
	rp := newTestRepo(t)
	s := newSeeder(t, rp)
	push := &fakePusher{}
	svc := &AccountService{Repo: rp, Notifier: &NotificationService{Repo: rp, Pusher: push}}
	ctx := context.Background()

	req := transport.RegisterDealerRequest{
		Name:     "Sharma Auto Parts",
		Email:    " Sharma@Example.com ",
		Password: "s3cret-pass",
		PinCode:  "560001",
	}

	acc, err := svc.RegisterDealer(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, models.RoleDealer, acc.Role)
	assert.False(t, acc.IsActive)
	assert.Equal(t, "sharma@example.com", acc.Email)
	assert.NotEqual(t, req.Password, acc.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(req.Password)))

	require.Equal(t, 1, push.count())
	n := push.pushed[0]
	assert.Equal(t, models.NotificationDealer, n.Type)
	assert.Nil(t, n.TargetUserID, "registrations are broadcast")
	require.NotNil(t, n.DealerID)
	assert.Equal(t, acc.ID, *n.DealerID)

	_, err = svc.RegisterDealer(ctx, req)
	assert.ErrorIs(t, err, ErrConflict)

	// Unapproved dealers are not candidates.
	matching := &MatchingService{Repo: rp}
	got, err := matching.FindDealerCandidates(ctx, "560001", nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	admin := s.account(models.RoleAdmin, "admin", "", true)
	approved, err := svc.ApproveDealer(ctx, actorOf(admin), acc.ID)
	require.NoError(t, err)
	assert.True(t, approved.IsActive)

	got, err = matching.FindDealerCandidates(ctx, "560001", nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, acc.ID, got[0].DealerID)
}

func TestRegisterDealer_Validation(t *testing.T) {
	rp := newTestRepo(t)
	svc := &AccountService{Repo: rp}

	tests := []struct {
		name string
		req  transport.RegisterDealerRequest
	}{
		{name: "empty name", req: transport.RegisterDealerRequest{Email: "a@b.co", Password: "longenough", PinCode: "1"}},
		{name: "bad email", req: transport.RegisterDealerRequest{Name: "n", Email: "nope", Password: "longenough", PinCode: "1"}},
		{name: "short password", req: transport.RegisterDealerRequest{Name: "n", Email: "a@b.co", Password: "short", PinCode: "1"}},
		{name: "no pin code", req: transport.RegisterDealerRequest{Name: "n", Email: "a@b.co", Password: "longenough"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RegisterDealer(context.Background(), tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestApproveDealer_Rejections(t *testing.T) {
	rp := newTestRepo(t)
	s := newSeeder(t, rp)
	svc := &AccountService{Repo: rp}
	ctx := context.Background()

	admin := s.account(models.RoleAdmin, "admin", "", true)
	staff := s.account(models.RoleEmployee, "employee", "", true)
	cust, _ := s.customer()
	pending := s.account(models.RoleDealer, "Pending", "560001", false)

	_, err := svc.ApproveDealer(ctx, actorOf(staff), pending.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.ApproveDealer(ctx, actorOf(admin), cust.ID)
	assert.ErrorIs(t, err, ErrDealerNotFound)
	_, err = svc.ApproveDealer(ctx, actorOf(admin), uuid.New())
	assert.ErrorIs(t, err, ErrDealerNotFound)
}
