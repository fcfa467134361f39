package email

const emailTemplates = `
{{define "subscription_started"}}
<h2>Welcome to the {{.PlanName}} plan, {{.Name}}!</h2>
<p>Your subscription is active for {{.Duration}} days and includes {{.TotalCredits}} credits.</p>
<p>Amount paid: {{.Price}}</p>
<p>Your plan expires on {{.ExpiresAt.Format "January 2, 2006"}}.</p>
{{end}}

{{define "expiry_warning"}}
<h2>Heads up, {{.Name}}</h2>
<p>Your {{.PlanName}} plan expires in {{.DaysLeft}} days, on {{.ExpiryDate.Format "January 2, 2006"}}.</p>
<p>Renew now to keep your chatbot and remaining credits.</p>
{{end}}
`
