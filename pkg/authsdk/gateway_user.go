package authsdk

import "context"

// Profile fetches the authenticated user's profile. Token rejections have
// already forced a logout by the time the *APIError is returned.
func (g *Gateway) Profile(ctx context.Context) (*ProfileResponse, error) {
	var out ProfileResponse
	if err := g.Get(ctx, "/api/profile").Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangePassword updates the authenticated user's password.
func (g *Gateway) ChangePassword(ctx context.Context, current, next string) error {
	var out MessageResponse
	return g.Put(ctx, "/api/password", ChangePasswordRequest{
		CurrentPassword: current,
		NewPassword:     next,
	}).Decode(&out)
}
