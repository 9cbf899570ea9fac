package healthmate_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/healthmate/server/pkg/healthsdk"
	"github.com/stretchr/testify/require"
)

// TestUnverifiedAccountIsReaped registers with a short OTP window and waits
// for the reaper to remove the account, after which the email is free again.
func TestUnverifiedAccountIsReaped(t *testing.T) {
	svc := setupService(t, map[string]string{
		"OTP_VALIDITY":     "2s",
		"CLEANUP_INTERVAL": "1s",
	})
	client := svc.client()
	ctx := t.Context()

	_, err := client.Register(ctx, healthsdk.RegisterRequest{Email: "carol@example.com", Password: testPassword})
	require.NoError(t, err)
	stale := svc.waitForOTP(t, "carol@example.com")

	// Verified accounts are never reaped.
	session := svc.registerAndVerify(t, "dave@example.com", "Dave")

	require.Eventually(t, func() bool {
		_, err := client.VerifyOTP(ctx, "carol@example.com", stale)
		return healthsdk.IsCode(err, healthsdk.ErrorCodeNotFound)
	}, 15*time.Second, 250*time.Millisecond, "unverified account should be reaped")

	_, err = client.Register(ctx, healthsdk.RegisterRequest{Email: "carol@example.com", Password: testPassword})
	require.NoError(t, err, "email should be reusable after reaping")

	me, err := session.Me(ctx)
	require.NoError(t, err)
	require.True(t, me.Verified)
}

// TestExpiredOTPBeforeReaper checks the expiry path when the reaper has not
// run yet.
func TestExpiredOTPBeforeReaper(t *testing.T) {
	svc := setupService(t, map[string]string{
		"OTP_VALIDITY":     "1s",
		"CLEANUP_INTERVAL": "1h",
	})
	client := svc.client()
	ctx := t.Context()

	_, err := client.Register(ctx, healthsdk.RegisterRequest{Email: "erin@example.com", Password: testPassword})
	require.NoError(t, err)
	otp := svc.waitForOTP(t, "erin@example.com")

	time.Sleep(1500 * time.Millisecond)

	_, err = client.VerifyOTP(ctx, "erin@example.com", otp)
	assertAPIError(t, err, http.StatusBadRequest, healthsdk.ErrorCodeOTPExpired)
}
