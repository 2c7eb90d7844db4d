package mailer

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// emailData is everything a template interpolates. Names are raw user input.
type emailData struct {
	Brand        string
	FirstName    string
	Amount       string
	PixelURL     string
	ClickURL     string
	SupportEmail string
}

// layout wraps body in the shared document chrome. It contains no links or
// images of its own: the only <a> and <img> in a message come from body.
func layout(title string, d emailData, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`+
			`<meta name="viewport" content="width=device-width, initial-scale=1"><title>`+
			templ.EscapeString(title)+
			`</title></head><body style="margin:0;padding:0;background:#f4f4f0;font-family:Helvetica,Arial,sans-serif;color:#1f2a24;">`+
			`<table role="presentation" width="100%" cellpadding="0" cellspacing="0"><tr><td align="center" style="padding:32px 16px;">`+
			`<table role="presentation" width="560" cellpadding="0" cellspacing="0" style="background:#ffffff;border-radius:8px;padding:32px;">`+
			`<tr><td style="font-size:20px;font-weight:bold;padding-bottom:16px;">`+templ.EscapeString(d.Brand)+`</td></tr><tr><td>`); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `</td></tr>`); err != nil {
			return err
		}
		if d.SupportEmail != "" {
			if _, err := io.WriteString(w, `<tr><td style="font-size:12px;color:#6b7570;padding-top:24px;">Questions? Write to `+
				templ.EscapeString(d.SupportEmail)+`.</td></tr>`); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</table>`+pixel(d.PixelURL)+`</td></tr></table></body></html>`)
		return err
	})
}

func pixel(src string) string {
	return `<img src="` + templ.EscapeString(string(templ.URL(src))) +
		`" width="0" height="0" alt="" style="display:block;width:0;height:0;border:0;overflow:hidden;">`
}

func button(href, label string) string {
	return `<table role="presentation" cellpadding="0" cellspacing="0" style="margin:24px 0;"><tr>` +
		`<td style="background:#2f6f4f;border-radius:6px;"><a href="` + templ.EscapeString(string(templ.URL(href))) +
		`" style="display:inline-block;padding:12px 24px;color:#ffffff;text-decoration:none;font-weight:bold;">` +
		templ.EscapeString(label) + `</a></td></tr></table>`
}

func paragraph(parts ...string) string {
	return `<p style="font-size:16px;line-height:24px;margin:0 0 16px;">` + strings.Join(parts, "") + `</p>`
}

func betaEmail(d emailData) templ.Component {
	body := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(paragraph("Hi ", templ.EscapeString(d.FirstName), ","))
		b.WriteString(paragraph("Thanks for applying to the ", templ.EscapeString(d.Brand),
			" beta. We are matching early members with local guides and will be in touch about your first trip."))
		if d.Amount != "" {
			b.WriteString(paragraph("We have recorded your deposit of ", templ.EscapeString(d.Amount),
				". It is fully credited toward your first booking."))
		}
		b.WriteString(paragraph("Take a minute to review what happens next:"))
		b.WriteString(button(d.ClickURL, "See next steps"))
		b.WriteString(paragraph("See you outside,<br>The ", templ.EscapeString(d.Brand), " team"))
		_, err := io.WriteString(w, b.String())
		return err
	})
	return layout("Welcome to the beta", d, body)
}

func waitlistEmail(d emailData) templ.Component {
	body := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(paragraph("Hi ", templ.EscapeString(d.FirstName), ","))
		b.WriteString(paragraph("You are on the ", templ.EscapeString(d.Brand),
			" waitlist. We will email you as soon as guides open up in your area."))
		b.WriteString(paragraph("In the meantime, browse the guides already on board:"))
		b.WriteString(button(d.ClickURL, "Meet the guides"))
		b.WriteString(paragraph("Talk soon,<br>The ", templ.EscapeString(d.Brand), " team"))
		_, err := io.WriteString(w, b.String())
		return err
	})
	return layout("You're on the waitlist", d, body)
}

// render writes c into a string.
func render(ctx context.Context, c templ.Component) (string, error) {
	var sb strings.Builder
	if err := c.Render(ctx, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}
