package handler

import "strings"

// --- Request types ---
//
// Forms post as application/x-www-form-urlencoded; JSON bodies bind to the
// same structs.

type registerRequest struct {
	Username   string `form:"username"   json:"username"`
	Password   string `form:"password"   json:"password"`
	Email      string `form:"email"      json:"email"`
	RedirectTo string `form:"redirectTo" json:"redirectTo"`
}

type loginRequest struct {
	Username   string `form:"username"   json:"username"`
	Password   string `form:"password"   json:"password"`
	RedirectTo string `form:"redirectTo" json:"redirectTo"`
}

type profileRequest struct {
	Email           string `form:"email"           json:"email"`
	CurrentPassword string `form:"currentPassword" json:"currentPassword"`
	NewPassword     string `form:"newPassword"     json:"newPassword"`
	ConfirmPassword string `form:"confirmPassword" json:"confirmPassword"`
}

// safeRedirect confines post-auth redirects to local paths; anything else
// falls back to the application root.
func safeRedirect(target string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return "/"
	}
	return target
}
