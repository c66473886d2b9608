package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"net/mail"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"guestbook/internal/domain"
)

const kindTag = "kind"

// SESConfig holds configuration for AWS SES.
type SESConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	// ConfigSet routes bounce and complaint events; empty sends without one.
	ConfigSet          string
	InsecureSkipVerify bool
}

// MailerConfig selects the delivery provider and the sender identity.
type MailerConfig struct {
	Provider    string
	FromAddress string
	FromName    string
	SES         SESConfig
}

// sesAPI is the subset of the SES client the mailer calls.
type sesAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// NewMailer returns an SES mailer for provider "ses". An empty or unknown provider
// logs messages instead of sending them, which keeps local runs free of AWS.
func NewMailer(config MailerConfig, logger *slog.Logger) (domain.Mailer, error) {
	switch config.Provider {
	case "ses":
		return newSESMailer(config, logger)
	case "noop", "":
	default:
		logger.Warn("unknown email provider, using noop", "provider", config.Provider)
	}
	return &noopMailer{logger: logger}, nil
}

func newSESMailer(config MailerConfig, logger *slog.Logger) (*sesMailer, error) {
	if config.SES.Region == "" || config.FromAddress == "" {
		return nil, fmt.Errorf("ses mailer needs a region and a from address")
	}
	from := mail.Address{Name: config.FromName, Address: config.FromAddress}
	if _, err := mail.ParseAddress(from.String()); err != nil {
		return nil, fmt.Errorf("invalid from address %q: %w", config.FromAddress, err)
	}
	if config.SES.InsecureSkipVerify {
		logger.Warn("TLS certificate verification is disabled for SES; use only in development")
	}

	awsCfg := aws.Config{
		Region: config.SES.Region,
		Credentials: aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
			config.SES.AccessKeyID, config.SES.SecretAccessKey, "",
		)),
		HTTPClient: &http.Client{Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: config.SES.InsecureSkipVerify,
				MinVersion:         tls.VersionTLS12,
			},
		}},
	}
	return &sesMailer{
		client:    ses.NewFromConfig(awsCfg),
		source:    from.String(),
		configSet: config.SES.ConfigSet,
		logger:    logger,
	}, nil
}

type sesMailer struct {
	client    sesAPI
	source    string
	configSet string
	logger    *slog.Logger
}

func (s *sesMailer) Send(ctx context.Context, msg domain.OutboundEmail) error {
	if msg.To == "" {
		return fmt.Errorf("email has no recipient")
	}
	out, err := s.client.SendEmail(ctx, s.input(msg))
	if err != nil {
		return fmt.Errorf("ses send %s: %w", msg.Kind, err)
	}
	s.logger.InfoContext(ctx, "email sent via SES", "kind", msg.Kind, "message_id", aws.ToString(out.MessageId))
	return nil
}

func (s *sesMailer) input(msg domain.OutboundEmail) *ses.SendEmailInput {
	body := &types.Body{}
	if msg.HTML != "" {
		body.Html = utf8Content(msg.HTML)
	}
	if msg.Text != "" {
		body.Text = utf8Content(msg.Text)
	}
	in := &ses.SendEmailInput{
		Source:      aws.String(s.source),
		Destination: &types.Destination{ToAddresses: []string{msg.To}},
		Message:     &types.Message{Subject: utf8Content(msg.Subject), Body: body},
	}
	if msg.ReplyTo != "" {
		in.ReplyToAddresses = []string{msg.ReplyTo}
	}
	if msg.Kind != "" {
		in.Tags = []types.MessageTag{{Name: aws.String(kindTag), Value: aws.String(msg.Kind)}}
	}
	if s.configSet != "" {
		in.ConfigurationSetName = aws.String(s.configSet)
	}
	return in
}

func utf8Content(data string) *types.Content {
	return &types.Content{Data: aws.String(data), Charset: aws.String("UTF-8")}
}

type noopMailer struct {
	logger *slog.Logger
}

func (n *noopMailer) Send(ctx context.Context, msg domain.OutboundEmail) error {
	n.logger.InfoContext(ctx, "email not sent (noop provider)", "kind", msg.Kind, "to", msg.To, "subject", msg.Subject)
	return nil
}
