package clinicconfig

import "time"

// Config is the clinic-wide settings singleton. It is created lazily with
// defaults on first read.
type Config struct {
	Name           string    `json:"name"`
	Address        string    `json:"address"`
	Phone          string    `json:"phone"`
	Email          string    `json:"email"`
	BusinessHours  string    `json:"business_hours"`
	CurrencySymbol string    `json:"currency_symbol"`
	LogoURL        string    `json:"logo_url"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Defaults returns the configuration used until an admin customizes it.
func Defaults() *Config {
	return &Config{
		Name:           "Clinica",
		BusinessHours:  "Lunes a Viernes 08:00 - 18:00",
		CurrencySymbol: "$",
	}
}
