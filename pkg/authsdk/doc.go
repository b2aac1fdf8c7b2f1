/*
Package authsdk is the client side of the tabsession auth service: it logs
in, keeps the credential, watches it expire and forces a logout when the
session can no longer be used.

# Credential storage

A CredentialStore spans two Storage scopes. The durable scope (FileStorage)
survives restarts; the session scope (MemoryStorage) lasts as long as the
process. A login writes the "token", "user" and "auth" keys into one scope
and removes them from the other. Reads prefer the durable scope.

	store := authsdk.NewCredentialStore(
		authsdk.NewFileStorage("~/.tabsession/credentials.json"),
		authsdk.NewMemoryStorage(),
	)
	client := authsdk.NewSDKClient("http://localhost:8080", store)

	if _, err := client.Login(ctx, email, password, remember); err != nil {
		var apiErr *authsdk.APIError
		if errors.As(err, &apiErr) {
			fmt.Println(apiErr.Message) // "Invalid credentials."
		}
		return err
	}

# Logout

LogoutOrchestrator clears every credential key in both scopes and hands the
entry point to a Navigator. Concurrent and repeated calls are safe: only the
first call per stored credential does anything. Saving a new credential
re-arms it.

	logout := authsdk.NewLogoutOrchestrator(store, authsdk.NavigatorFunc(func(target string) {
		fmt.Println("signed out, continue at", target)
	}))

# Authenticated calls

Gateway attaches "Authorization: Bearer <token>" when a credential is stored.
A 401 carrying TOKEN_EXPIRED or TOKEN_INVALID forces a logout and is returned
as a "Session expired" Response; callers never see the raw rejection.
Transport failures become NETWORK_ERROR and leave the session alone.

	gw := authsdk.NewGateway(client, logout)
	resp := gw.Get(ctx, "/api/profile")
	if !resp.OK() {
		fmt.Println(resp.Code, resp.Message)
	}

# Expiry monitoring

Monitor polls the stored credential and derives a State (Valid, Warning,
Expired or NoToken) with the integer seconds remaining. It reads expiry
without verifying the signature; the server remains the authority.
Coordinator runs a separate grace-period countdown once the warning window
is entered. Watch couples the two:

	mon := authsdk.NewMonitor(store, logout, authsdk.DefaultMonitorOptions())
	coord := authsdk.NewCoordinator(logout, store, authsdk.DefaultCoordinatorOptions())
	w := authsdk.NewWatch(mon, coord)
	w.Start(ctx)
	defer w.Close()

FormatRemaining and UrgencyFor are display helpers over integer seconds.
Formatted labels are output only.

# Thread Safety

All exported types are safe for concurrent use. Callbacks registered with
OnState, OnWarning and OnChange run on the goroutine that produced the event.
A Navigator may close the Watch that forced the logout: Stop and Close
called from their own goroutine cancel without waiting.
*/
package authsdk
