package email

// Provider names accepted by EMAIL_PROVIDER.
const (
	ProviderPostmark = "postmark"
	ProviderSES      = "ses"
	ProviderDev      = "dev"
)

// Config holds email delivery configuration. Only the credentials of the
// selected provider are required; New fails fast when they are missing.
type Config struct {
	Provider     string `env:"EMAIL_PROVIDER" envDefault:"postmark"`
	SenderEmail  string `env:"SENDER_EMAIL,required,notEmpty"`
	SenderName   string `env:"SENDER_NAME"`
	SupportEmail string `env:"SUPPORT_EMAIL"`

	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`

	AWSRegion           string `env:"AWS_REGION" envDefault:"us-east-1"`
	AWSAccessKeyID      string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey  string `env:"AWS_SECRET_ACCESS_KEY"`
	SESConfigurationSet string `env:"SES_CONFIGURATION_SET"`

	DevOutputDir string `env:"EMAIL_DEV_DIR" envDefault:"./tmp/emails"`
}
