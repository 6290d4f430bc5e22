// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// LinkEmailData fills the single-button email used for account
// verification and password reset.
type LinkEmailData struct {
	SiteName  string
	Greeting  string // e.g. "Hi Jane,"; optional
	Intro     string
	Button    string
	Link      string
	ExpiresIn string // e.g. "24 hours"
	Ignore    string
}

// BuildVerificationEmail creates the "verify your email" message sent
// after registration and on resend.
func BuildVerificationEmail(siteName, name, link, expiresIn string) Email {
	d := LinkEmailData{
		SiteName:  siteName,
		Greeting:  greeting(name),
		Intro:     fmt.Sprintf("Thanks for joining %s. Please confirm your email address to start giving and taking food.", siteName),
		Button:    "Verify email",
		Link:      link,
		ExpiresIn: expiresIn,
		Ignore:    "If you did not create an account, you can safely ignore this email.",
	}
	return Email{
		Subject:  fmt.Sprintf("Verify your %s account", siteName),
		TextBody: buildLinkText(d),
		HTMLBody: buildLinkHTML(d),
	}
}

// BuildPasswordResetEmail creates the password reset message.
func BuildPasswordResetEmail(siteName, name, link, expiresIn string) Email {
	d := LinkEmailData{
		SiteName:  siteName,
		Greeting:  greeting(name),
		Intro:     "We received a request to reset your password. Use the button below to choose a new one.",
		Button:    "Reset password",
		Link:      link,
		ExpiresIn: expiresIn,
		Ignore:    "If you did not ask to reset your password, you can safely ignore this email.",
	}
	return Email{
		Subject:  fmt.Sprintf("Reset your %s password", siteName),
		TextBody: buildLinkText(d),
		HTMLBody: buildLinkHTML(d),
	}
}

func greeting(name string) string {
	if name == "" {
		return "Hello,"
	}
	return fmt.Sprintf("Hi %s,", name)
}

func buildLinkText(d LinkEmailData) string {
	var buf bytes.Buffer
	buf.WriteString(d.Greeting + "\n\n")
	buf.WriteString(d.Intro + "\n\n")
	buf.WriteString(d.Link + "\n\n")
	buf.WriteString(fmt.Sprintf("This link expires in %s.\n\n", d.ExpiresIn))
	buf.WriteString(d.Ignore + "\n")
	return buf.String()
}

var linkHTML = template.Must(template.New("link").Parse(linkHTMLTemplate))

func buildLinkHTML(d LinkEmailData) string {
	var buf bytes.Buffer
	_ = linkHTML.Execute(&buf, d)
	return buf.String()
}

const linkHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.SiteName}}</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px;">
          <tr>
            <td style="padding: 32px 32px 24px; text-align: center; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 24px; font-weight: 600; color: #15803d;">{{.SiteName}}</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 32px;">
              <p style="margin: 0 0 16px; font-size: 16px; color: #374151;">{{.Greeting}}</p>
              <p style="margin: 0 0 24px; font-size: 16px; color: #374151; line-height: 1.5;">{{.Intro}}</p>
              <table role="presentation" width="100%" cellspacing="0" cellpadding="0">
                <tr>
                  <td align="center">
                    <a href="{{.Link}}" style="display: inline-block; padding: 14px 32px; background-color: #15803d; color: #ffffff; text-decoration: none; font-size: 16px; font-weight: 500; border-radius: 6px;">{{.Button}}</a>
                  </td>
                </tr>
              </table>
              <p style="margin: 24px 0 0; font-size: 13px; color: #9ca3af; text-align: center;">This link expires in {{.ExpiresIn}}.</p>
            </td>
          </tr>
          <tr>
            <td style="padding: 24px 32px; background-color: #f9fafb; border-top: 1px solid #e5e7eb; border-radius: 0 0 8px 8px;">
              <p style="margin: 0; font-size: 12px; color: #9ca3af; text-align: center;">{{.Ignore}}</p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`
