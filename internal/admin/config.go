package admin

// Config holds the shared admin credential.
type Config struct {
	Token string `env:"ADMIN_TOKEN,required,notEmpty"`
}
