package notify

import "html/template"

const layout = `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f8f9fa;">
  <div style="background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); padding: 30px; border-radius: 10px; text-align: center; margin-bottom: 20px;">
    <h1 style="color: white; margin: 0; font-size: 28px;">PG Finder</h1>
    <p style="color: rgba(255,255,255,0.9); margin: 10px 0 0 0;">{{template "title" .}}</p>
  </div>
  <div style="background: white; padding: 30px; border-radius: 10px;">
    <h2 style="color: #2d3748; margin-bottom: 20px;">Hello {{.Name}}!</h2>
    {{template "content" .}}
    <div style="border-top: 1px solid #e2e8f0; padding-top: 20px; margin-top: 30px;">
      <p style="color: #718096; font-size: 14px; margin: 0;">Best regards,<br>The PG Finder Team</p>
    </div>
  </div>
</div>`

const codeBlock = `{{define "code"}}<div style="background: #667eea; color: white; padding: 20px; border-radius: 10px; text-align: center; margin: 25px 0;">
  <h1 style="font-size: 36px; margin: 0; letter-spacing: 5px; font-weight: bold;">{{.Code}}</h1>
</div>{{end}}`

var templates = map[Template]mail{
	RegistrationOtp: parse("PG Finder - Email Verification OTP", "Email Verification", `
<p>Thank you for registering with PG Finder! To complete your registration, please use the verification code below:</p>
{{template "code" .}}
<p style="color: #718096; font-size: 14px;">This code will expire in {{.Minutes}} minutes. If you didn't request this code, please ignore this email.</p>`),

	Welcome: parse("Welcome to PG Finder!", "Welcome", `
<p>Your email has been verified and your account is ready.</p>
<p>Start exploring listings at <a href="{{.FrontendURL}}">{{.FrontendURL}}</a>.</p>`),

	PasswordResetOtp: parse("PG Finder - Password Reset OTP", "Password Reset", `
<p>You requested a password reset for your PG Finder account. Please use the verification code below to reset your password:</p>
{{template "code" .}}
<p style="color: #718096; font-size: 14px;">This code will expire in {{.Minutes}} minutes. If you didn't request this password reset, please ignore this email and your password will remain unchanged.</p>`),

	PasswordResetConfirmation: parse("PG Finder - Password Reset Successful", "Password Reset Successful", `
<p>Your password has been changed. You can now log in with your new password.</p>
<p style="color: #718096; font-size: 14px;">If you didn't make this change, reset your password right away.</p>`),
}

func parse(subject, title, content string) mail {
	t := template.Must(template.New("layout").Parse(layout))
	template.Must(t.Parse(codeBlock))
	template.Must(t.Parse(`{{define "title"}}` + title + `{{end}}`))
	template.Must(t.Parse(`{{define "content"}}` + content + `{{end}}`))

	return mail{subject: subject, body: t}
}
