/*
Package healthsdk provides a client SDK for the HealthMate API.

# Overview

The package is organized around two types:

  - SDKClient: public endpoints (register, OTP verification, login, health)
  - Session: endpoints that need a bearer token (account and diagnosis)

Typical signup flow:

	client := healthsdk.NewSDKClient("https://api.healthmate.example")

	_, err := client.Register(ctx, healthsdk.RegisterRequest{
		Email:    "alice@example.com",
		Password: "correct horse",
		Name:     "Alice",
	})

	// The OTP arrives by email.
	_, err = client.VerifyOTP(ctx, "alice@example.com", "042817")

	session, err := client.AuthenticateWithPassword(ctx, "alice@example.com", "correct horse")
	me, err := session.Me(ctx)

	report, err := session.CreateDiagnosis(ctx, "headache, fever")
	history, err := session.ListDiagnoses(ctx)

# Error Handling

Every non-success response is returned as *APIError carrying the HTTP status,
the machine-readable code and a human message:

	_, err := client.Login(ctx, email, password)
	if healthsdk.IsCode(err, healthsdk.ErrorCodeUnverified) {
		// ask the user to enter their OTP first
	}

The server uses the same type to write its error bodies, so both sides agree
on the wire shape.

# Thread Safety

SDKClient and Session hold no mutable state after construction and are safe
for concurrent use.
*/
package healthsdk
