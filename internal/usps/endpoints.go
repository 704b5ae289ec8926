package usps

const (
	UserAgent = "Mozilla/5.0 (Windows NT 6.1) AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/41.0.2228.0 Safari/537.36"

	Attribution = "Information provided by www.usps.com"

	efmjHeader = "x-efmj"
)

// Endpoints are the portal urls a Session talks to.
type Endpoints struct {
	LoginPage    string
	Authenticate string
	Login        string
	Dashboard    string
	// MailImageBase is prefixed to the raw mail image src.
	MailImageBase string
	Profile       string
}

// DefaultEndpoints points at the live site.
var DefaultEndpoints = Endpoints{
	LoginPage:     "https://reg.usps.com/login?app=MyUSPS",
	Authenticate:  "https://reg.usps.com/entreg/json/AuthenticateAction",
	Login:         "https://reg.usps.com/entreg/LoginAction",
	Dashboard:     "https://informeddelivery.usps.com/box/pages/secure/DashboardAction_input.action",
	MailImageBase: "https://informeddelivery.usps.com/box/pages/secure/",
	Profile:       "https://store.usps.com/store/myaccount/profile.jsp",
}

// WithBase returns endpoints that all live under base, keeping the paths of
// the live site. It is meant for pointing a session at a fake portal.
func WithBase(base string) Endpoints {
	return Endpoints{
		LoginPage:     base + "/login?app=MyUSPS",
		Authenticate:  base + "/entreg/json/AuthenticateAction",
		Login:         base + "/entreg/LoginAction",
		Dashboard:     base + "/box/pages/secure/DashboardAction_input.action",
		MailImageBase: base + "/box/pages/secure/",
		Profile:       base + "/store/myaccount/profile.jsp",
	}
}
