package handler

import (
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/authflow-server/internal/model"
	"github.com/dtroode/authflow-server/internal/service"
)

type registerRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8,max_bytes=72,password_strength"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=Password"`
	AgreeToTerms    bool   `json:"agree_to_terms" binding:"eq=true"`
}

type loginRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"remember_me"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type updateProfileRequest struct {
	Name  string `json:"name" binding:"required,min=1"`
	Email string `json:"email" binding:"required,email"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max_bytes=72,password_strength"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=NewPassword"`
}

type userResponse struct {
	ID            uuid.UUID  `json:"id"`
	Email         string     `json:"email"`
	Name          *string    `json:"name"`
	AvatarURL     *string    `json:"avatar_url"`
	Role          model.Role `json:"role"`
	EmailVerified bool       `json:"email_verified"`
	TermsAccepted bool       `json:"terms_accepted"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	LastLogin     *time.Time `json:"last_login"`
}

type profileResponse struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	Name      *string    `json:"name"`
	AvatarURL *string    `json:"avatar_url"`
	Role      model.Role `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login"`
}

type authResponse struct {
	User         userResponse `json:"user"`
	Token        string       `json:"token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"`
}

type statsResponse struct {
	TotalUsers            int64 `json:"total_users"`
	ActiveSessions        int64 `json:"active_sessions"`
	NewRegistrationsToday int64 `json:"new_registrations_today"`
	LoginAttemptsToday    int64 `json:"login_attempts_today"`
}

type activityResponse struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	UserEmail string    `json:"user_email"`
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"`
}

type loginsPerDayResponse struct {
	Date   string `json:"date"`
	Logins int64  `json:"logins"`
}

func newUserResponse(u model.User) userResponse {
	return userResponse{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		AvatarURL:     u.AvatarURL,
		Role:          u.Role,
		EmailVerified: u.EmailVerified,
		TermsAccepted: u.TermsAccepted,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
		LastLogin:     u.LastLogin,
	}
}

func newProfileResponse(u model.User) profileResponse {
	p := u.Profile()
	return profileResponse{
		ID:        p.ID,
		Email:     p.Email,
		Name:      p.Name,
		AvatarURL: p.AvatarURL,
		Role:      p.Role,
		CreatedAt: p.CreatedAt,
		LastLogin: p.LastLogin,
	}
}

func newAuthResponse(s service.Session) authResponse {
	return authResponse{
		User:         newUserResponse(s.User),
		Token:        s.Tokens.AccessToken,
		RefreshToken: s.Tokens.RefreshToken,
		ExpiresIn:    s.Tokens.ExpiresIn,
	}
}
