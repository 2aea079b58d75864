package domain

// User is referenced by orders but never owned by them. PasswordHash is
// excluded from every serialization.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Phone        string `json:"phone,omitempty"`
	IsAdmin      bool   `json:"is_admin"`
	Street       string `json:"street,omitempty"`
	Apartment    string `json:"apartment,omitempty"`
	Zip          string `json:"zip,omitempty"`
	City         string `json:"city,omitempty"`
	Country      string `json:"country,omitempty"`
}
