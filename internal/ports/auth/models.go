package auth

// Claims es la identidad del criador que hace el request.
type Claims struct {
	UserID string
	Email  string
}
