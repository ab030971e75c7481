package notification

import (
	"html/template"
	"time"
)

// Sanitized submission fields are already HTML-escaped, so the views carry
// them as template.HTML. Display names and config values are plain strings
// and get escaped by html/template.

type contactView struct {
	Company      string
	FirstName    template.HTML
	LastName     template.HTML
	Email        template.HTML
	Phone        string
	Organisation template.HTML
	Subject      template.HTML
	Inquiry      string
	Message      template.HTML
	Date         string
	Year         int
	ReplyURL     template.URL
	AdminURL     template.URL
}

type quoteView struct {
	Company      string
	FirstName    template.HTML
	LastName     template.HTML
	Email        template.HTML
	Phone        string
	Organisation template.HTML
	Industry     string
	Address      template.HTML
	Services     string
	Budget       string
	Timeline     string
	Requirements template.HTML
	Newsletter   bool
	Submitted    string
	Year         int
	AdminURL     template.URL
}

const dateLayout = "January 2, 2006 at 03:04 PM"

func formatDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dateLayout)
}

const layoutTpl = `{{define "layout"}}<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{template "title" .}}</title>
<style>
body { font-family: Arial, sans-serif; line-height: 1.6; color: #333333; background-color: #f5f7fa; margin: 0; padding: 20px 0; }
.container { max-width: 640px; margin: 0 auto; background: #ffffff; border-radius: 10px; overflow: hidden; }
.header { background: #0056b3; color: #ffffff; padding: 24px 20px; text-align: center; }
.header.alert { background: #b91c1c; }
.content { padding: 30px; color: #4a5568; }
.box { background: #f8fafc; border-left: 4px solid #3182ce; padding: 16px 20px; margin: 20px 0; }
.message { background: #ffffff; border: 1px solid #e2e8f0; border-radius: 6px; padding: 15px; margin: 20px 0; }
.label { color: #718096; width: 130px; padding: 4px 0; vertical-align: top; }
.btn { display: inline-block; background: #3182ce; color: #ffffff; text-decoration: none; padding: 10px 20px; border-radius: 4px; margin: 8px 8px 8px 0; }
.btn.secondary { background: #e2e8f0; color: #2d3748; }
.footer { text-align: center; padding: 20px; background: #f8fafc; color: #718096; font-size: 13px; border-top: 1px solid #e2e8f0; }
</style>
</head>
<body>
<div class="container">
{{template "body" .}}
<div class="footer">
<p>&copy; {{.Year}} {{.Company}}. All rights reserved.</p>
{{template "footnote" .}}
</div>
</div>
</body>
</html>{{end}}`

const contactConfirmationTpl = `{{define "title"}}Thank you for contacting {{.Company}}{{end}}
{{define "body"}}
<div class="header"><h1>{{.Company}}</h1></div>
<div class="content">
<h2>Thank You for Contacting Us, {{.FirstName}}!</h2>
<p>We've received your message and our team will review it shortly. Here's a summary of your inquiry:</p>
<div class="box">
<table cellpadding="0" cellspacing="0" width="100%">
<tr><td class="label">Name:</td><td>{{.FirstName}} {{.LastName}}</td></tr>
<tr><td class="label">Email:</td><td>{{.Email}}</td></tr>
<tr><td class="label">Phone:</td><td>{{if .Phone}}{{.Phone}}{{else}}Not provided{{end}}</td></tr>
<tr><td class="label">Company:</td><td>{{if .Organisation}}{{.Organisation}}{{else}}Not provided{{end}}</td></tr>
<tr><td class="label">Subject:</td><td>{{if .Subject}}{{.Subject}}{{else}}{{.Inquiry}}{{end}}</td></tr>
<tr><td class="label">Inquiry Type:</td><td>{{.Inquiry}}</td></tr>
<tr><td class="label">Date:</td><td>{{.Date}}</td></tr>
</table>
</div>
<h4>Your Message:</h4>
<div class="message">{{.Message}}</div>
<p>We'll respond to your inquiry as soon as possible, typically within 24 hours.</p>
</div>
{{end}}
{{define "footnote"}}<p>This email was sent to {{.Email}} because you contacted us through our website.</p>{{end}}`

const contactAdminTpl = `{{define "title"}}New Contact Form Submission - {{.Company}}{{end}}
{{define "body"}}
<div class="header alert">
<p><strong>NEW CONTACT SUBMISSION</strong></p>
<h1>You have a new message from {{.FirstName}} {{.LastName}}</h1>
<p>Submitted on {{.Date}}</p>
</div>
<div class="content">
<div class="box">
<table cellpadding="0" cellspacing="0" width="100%">
<tr><td class="label">Name</td><td>{{.FirstName}} {{.LastName}}</td></tr>
<tr><td class="label">Email</td><td>{{.Email}}</td></tr>
<tr><td class="label">Phone</td><td>{{if .Phone}}{{.Phone}}{{else}}Not provided{{end}}</td></tr>
<tr><td class="label">Company</td><td>{{if .Organisation}}{{.Organisation}}{{else}}Not provided{{end}}</td></tr>
<tr><td class="label">Inquiry Type</td><td>{{.Inquiry}}</td></tr>
<tr><td class="label">Subject</td><td>{{if .Subject}}{{.Subject}}{{else}}No subject{{end}}</td></tr>
</table>
</div>
<h3>Message:</h3>
<div class="message">{{.Message}}</div>
<p>
<a class="btn" href="{{.ReplyURL}}">Reply to {{.FirstName}}</a>
<a class="btn secondary" href="{{.AdminURL}}">View in Admin Panel</a>
</p>
<p><strong>Action Required:</strong> Please respond to this inquiry within 24 hours.</p>
</div>
{{end}}
{{define "footnote"}}<p>This is an automated notification.</p>{{end}}`

const quoteConfirmationTpl = `{{define "title"}}Quote Request Received - {{.Company}}{{end}}
{{define "body"}}
<div class="header"><h1>{{.Company}}</h1></div>
<div class="content">
<h2>Thank you for your quote request!</h2>
<p>Dear {{.FirstName}} {{.LastName}},</p>
<p>Thank you for your interest in {{.Company}}. We have received your quote request and our team will review it carefully.</p>
<div class="box">
<h3>Request Summary:</h3>
<p><strong>Company:</strong> {{.Organisation}}</p>
<p><strong>Services:</strong> {{.Services}}</p>
<p><strong>Budget:</strong> {{.Budget}}</p>
<p><strong>Timeline:</strong> {{.Timeline}}</p>
</div>
<p>Our technical team will analyze your requirements and get back to you within 24 hours with a detailed quote.</p>
<p>Best regards,<br>The {{.Company}} Team</p>
</div>
{{end}}
{{define "footnote"}}<p>This email was sent to {{.Email}} because you requested a quote through our website.</p>{{end}}`

const quoteAdminTpl = `{{define "title"}}New Quote Request - {{.Organisation}}{{end}}
{{define "body"}}
<div class="header alert"><h1>New Quote Request Received</h1></div>
<div class="content">
<div class="box">
<h3>Client Information:</h3>
<p><strong>Name:</strong> {{.FirstName}} {{.LastName}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
<p><strong>Phone:</strong> {{if .Phone}}{{.Phone}}{{else}}Not provided{{end}}</p>
<p><strong>Company:</strong> {{if .Organisation}}{{.Organisation}}{{else}}Not provided{{end}}</p>
<p><strong>Industry:</strong> {{.Industry}}</p>
<p><strong>Address:</strong> {{if .Address}}{{.Address}}{{else}}Not provided{{end}}</p>
</div>
<div class="box">
<h3>Project Requirements:</h3>
<p><strong>Services:</strong> {{.Services}}</p>
<p><strong>Budget:</strong> {{.Budget}}</p>
<p><strong>Timeline:</strong> {{.Timeline}}</p>
<p><strong>Requirements:</strong> {{.Requirements}}</p>
<p><strong>Newsletter:</strong> {{if .Newsletter}}Yes{{else}}No{{end}}</p>
</div>
<p><strong>Submitted:</strong> {{.Submitted}}</p>
<p><a class="btn secondary" href="{{.AdminURL}}">View in Admin Panel</a></p>
<p>Please review this request and prepare a quote response.</p>
</div>
{{end}}
{{define "footnote"}}<p>This is an automated notification.</p>{{end}}`

var (
	contactConfirmationTemplate = mustParse("contact-confirmation", contactConfirmationTpl)
	contactAdminTemplate        = mustParse("contact-admin", contactAdminTpl)
	quoteConfirmationTemplate   = mustParse("quote-confirmation", quoteConfirmationTpl)
	quoteAdminTemplate          = mustParse("quote-admin", quoteAdminTpl)
)

// mustParse builds a document from the shared layout and one page body.
// The returned template executes the layout.
func mustParse(name, page string) *template.Template {
	t := template.Must(template.New(name).Parse(layoutTpl))
	template.Must(t.Parse(page))
	return t.Lookup("layout")
}
