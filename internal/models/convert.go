package models

func UserToResponse(u User) UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt.UTC(),
	}
}

func AuthToResponse(r *AuthResult) AuthResponse {
	return AuthResponse{
		Token:     r.Token,
		ExpiresAt: r.ExpiresAt.Unix(),
		User:      UserToResponse(r.User),
	}
}
