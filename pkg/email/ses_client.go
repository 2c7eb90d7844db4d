package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// SESAPI is the part of the SES v2 client used by the sender.
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// sesTagName is the SES message tag carrying SendEmailParams.Tag.
const sesTagName = "tracking_id"

type sesClient struct {
	api    SESAPI
	config Config
}

// NewSESClient creates an Amazon SES v2 sender. Static credentials are used
// when both keys are set, otherwise the default AWS credential chain applies.
func NewSESClient(ctx context.Context, cfg Config) (EmailSender, error) {
	if cfg.AWSRegion == "" {
		return nil, fmt.Errorf("%w: AWSRegion is required", ErrInvalidConfig)
	}
	if (cfg.AWSAccessKeyID == "") != (cfg.AWSSecretAccessKey == "") {
		return nil, fmt.Errorf("%w: AWSAccessKeyID and AWSSecretAccessKey must be set together", ErrInvalidConfig)
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWSRegion)}
	if cfg.AWSAccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}

	return NewSESSender(sesv2.NewFromConfig(awsCfg), cfg)
}

// NewSESSender wraps an existing SES API client.
func NewSESSender(api SESAPI, cfg Config) (EmailSender, error) {
	if api == nil {
		return nil, fmt.Errorf("%w: SES client is required", ErrInvalidConfig)
	}
	if err := validateSender(cfg); err != nil {
		return nil, err
	}
	return &sesClient{api: api, config: cfg}, nil
}

func (c *sesClient) SendEmail(ctx context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress(c.config)),
		Destination:      &types.Destination{ToAddresses: []string{params.SendTo}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(params.Subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(params.BodyHTML), Charset: aws.String("UTF-8")},
				},
			},
		},
	}
	if c.config.SupportEmail != "" {
		input.ReplyToAddresses = []string{c.config.SupportEmail}
	}
	if c.config.SESConfigurationSet != "" {
		input.ConfigurationSetName = aws.String(c.config.SESConfigurationSet)
	}
	if params.Tag != "" {
		input.EmailTags = []types.MessageTag{{Name: aws.String(sesTagName), Value: aws.String(params.Tag)}}
	}

	if _, err := c.api.SendEmail(ctx, input); err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}
	return nil
}
