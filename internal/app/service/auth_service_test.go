package service

import (
	"context"
	"testing"
	"thundercipher/internal/common"
	"thundercipher/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authFixture struct {
	svc      *AuthService
	users    *fakeUserRepo
	profiles *fakeProfileRepo
	codes    *fakeCodeStore
	mailer   *fakeMailer
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		users:    newFakeUserRepo(),
		profiles: newFakeProfileRepo(),
		codes:    newFakeCodeStore(),
		mailer:   &fakeMailer{},
	}
	f.svc = NewAuthService(f.users, f.profiles, f.codes, f.mailer)
	return f
}

func (f *authFixture) signup(t *testing.T) *AuthResponse {
	t.Helper()
	resp, err := f.svc.Signup(context.Background(), SignupRequest{
		Username: "neo",
		Email:    "neo@example.com",
		Password: "redpill-123",
	})
	require.NoError(t, err)
	return resp
}

func TestSignupValidation(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	cases := []struct {
		name string
		req  SignupRequest
	}{
		{"short username", SignupRequest{Username: "ab", Email: "a@b.com", Password: "longenough"}},
		{"bad email", SignupRequest{Username: "neo", Email: "not-an-email", Password: "longenough"}},
		{"short password", SignupRequest{Username: "neo", Email: "a@b.com", Password: "short"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Signup(ctx, tc.req)
			assert.ErrorIs(t, err, common.ErrValidation)
		})
	}
}

func TestSignupCreatesUserAndSendsOTP(t *testing.T) {
	f := newAuthFixture()

	resp := f.signup(t)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, model.RoleUser, resp.User.Role)
	assert.Empty(t, resp.User.HashedPassword)
	assert.Equal(t, "neo@example.com", resp.User.Email)

	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "neo@example.com", f.mailer.sent[0].To)
	assert.Len(t, f.mailer.lastCode(), 6)
	assert.False(t, resp.CodeDeliveryFailed)
}

func TestSignupSurvivesCodeDeliveryFailure(t *testing.T) {
	f := newAuthFixture()
	f.codes.failsPut = true

	// The account commit precedes the code issue; a dead code store
	// must not fail the signup, or retries would hit the conflict.
	resp := f.signup(t)
	assert.NotNil(t, resp.User)
	assert.NotEmpty(t, resp.Token)
	assert.True(t, resp.CodeDeliveryFailed)
	assert.Empty(t, f.mailer.sent)

	// Once the store recovers, /resend-otp completes verification.
	f.codes.failsPut = false
	require.NoError(t, f.svc.ResendOTP(context.Background(), ResendOTPRequest{Email: "neo@example.com"}))
	require.Len(t, f.mailer.sent, 1)
	require.NoError(t, f.svc.VerifyEmail(context.Background(), VerifyEmailRequest{
		Email: "neo@example.com",
		Code:  f.mailer.lastCode(),
	}))
}

func TestSignupDuplicateConflicts(t *testing.T) {
	f := newAuthFixture()
	f.signup(t)

	_, err := f.svc.Signup(context.Background(), SignupRequest{
		Username: "neo",
		Email:    "other@example.com",
		Password: "redpill-123",
	})
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestLoginByEmailAndUsername(t *testing.T) {
	f := newAuthFixture()
	f.signup(t)
	ctx := context.Background()

	resp, err := f.svc.Login(ctx, LoginRequest{LoginField: "neo@example.com", Password: "redpill-123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)

	resp, err = f.svc.Login(ctx, LoginRequest{LoginField: "neo", Password: "redpill-123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newAuthFixture()
	f.signup(t)
	ctx := context.Background()

	// Wrong password and unknown account look identical to the caller.
	_, err := f.svc.Login(ctx, LoginRequest{LoginField: "neo", Password: "bluepill-123"})
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	_, err = f.svc.Login(ctx, LoginRequest{LoginField: "nobody", Password: "redpill-123"})
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestVerifyEmailConsumesCode(t *testing.T) {
	f := newAuthFixture()
	resp := f.signup(t)
	ctx := context.Background()
	code := f.mailer.lastCode()

	err := f.svc.VerifyEmail(ctx, VerifyEmailRequest{Email: "neo@example.com", Code: code})
	require.NoError(t, err)
	assert.True(t, f.users.verified[resp.User.ID])

	// Codes are single use.
	err = f.svc.VerifyEmail(ctx, VerifyEmailRequest{Email: "neo@example.com", Code: code})
	assert.ErrorIs(t, err, common.ErrCodeExpired)
}

func TestVerifyEmailWrongCode(t *testing.T) {
	f := newAuthFixture()
	f.signup(t)

	err := f.svc.VerifyEmail(context.Background(), VerifyEmailRequest{Email: "neo@example.com", Code: "000000"})
	assert.ErrorIs(t, err, common.ErrCodeExpired)
}

func TestForgotPasswordDoesNotDiscloseAccounts(t *testing.T) {
	f := newAuthFixture()
	f.signup(t)
	sentBefore := len(f.mailer.sent)

	err := f.svc.ForgotPassword(context.Background(), ForgotPasswordRequest{Email: "ghost@example.com"})
	require.NoError(t, err)
	assert.Len(t, f.mailer.sent, sentBefore)
}

func TestResetPasswordFlow(t *testing.T) {
	f := newAuthFixture()
	f.signup(t)
	ctx := context.Background()

	require.NoError(t, f.svc.ForgotPassword(ctx, ForgotPasswordRequest{Email: "neo@example.com"}))
	code := f.mailer.lastCode()

	err := f.svc.ResetPassword(ctx, ResetPasswordRequest{Email: "neo@example.com", Code: code, NewPassword: "follow-the-white-rabbit"})
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, LoginRequest{LoginField: "neo", Password: "redpill-123"})
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	_, err = f.svc.Login(ctx, LoginRequest{LoginField: "neo", Password: "follow-the-white-rabbit"})
	assert.NoError(t, err)
}

func TestMeIncludesStanding(t *testing.T) {
	f := newAuthFixture()
	resp := f.signup(t)
	f.profiles.standings[resp.User.ID] = &model.LeaderboardEntry{Rank: 3, Points: 700, Solved: 5}

	me, err := f.svc.Me(context.Background(), resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "neo", me.User.Username)
	require.NotNil(t, me.Standing)
	assert.Equal(t, 3, me.Standing.Rank)
}

func TestMeWithoutProfileStillSucceeds(t *testing.T) {
	f := newAuthFixture()
	resp := f.signup(t)

	me, err := f.svc.Me(context.Background(), resp.User.ID)
	require.NoError(t, err)
	assert.Nil(t, me.Standing)
}
