package usps

import (
	"bytes"
	"strings"
	"testing"
	"time"

	_ "embed"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

//go:embed testdata/dashboard.html
var dashboardPage []byte

//go:embed testdata/dashboard_empty.html
var dashboardEmptyPage []byte

//go:embed testdata/dashboard_changed.html
var dashboardChangedPage []byte

//go:embed testdata/login.html
var loginPage []byte

//go:embed testdata/login_no_token.html
var loginNoTokenPage []byte

//go:embed testdata/profile.html
var profilePage []byte

func parseDoc(t testing.TB, page []byte) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestParsePackages(t *testing.T) {
	packages, err := parsePackages(parseDoc(t, dashboardPage), time.UTC)
	if err != nil {
		t.Fatal(err)
	}

	scanned := time.Date(2017, 9, 7, 19, 14, 0, 0, time.UTC)
	expected := []Package{
		{
			TrackingNumber:  "9400100000000000000001",
			PrimaryStatus:   "Delivered",
			SecondaryStatus: "In/At Mailbox",
			StatusTime:      &scanned,
			ShippedFrom:     "AMAZON",
			Location:        "SPRINGFIELD, IL 62701",
		},
		{
			PrimaryStatus: "In Transit",
		},
	}
	diff := cmp.Diff(expected, packages)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestParsePackagesNoPackages(t *testing.T) {
	packages, err := parsePackages(parseDoc(t, dashboardEmptyPage), time.UTC)
	require.NoError(t, err)
	require.NotNil(t, packages)
	require.Len(t, packages, 0)
}

func TestParsePackagesMissingDashboard(t *testing.T) {
	_, err := parsePackages(parseDoc(t, dashboardChangedPage), time.UTC)
	require.ErrorIs(t, err, ErrMissingPageElement)

	var missing *MissingElementError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, selPackageDashboard, missing.Selector)
}

func TestPackageRowMissingFields(t *testing.T) {
	doc := parseDoc(t, []byte(`<div class="pack_row"></div>`))
	pkg := parsePackageRow(doc.Find(selPackageRow), time.UTC)
	require.Equal(t, Package{}, pkg)
}

func TestShippedFromNeedsTwoDivs(t *testing.T) {
	doc := parseDoc(t, []byte(`<div class="pack_row"><div class="mobile-from"><div>From:</div></div></div>`))
	require.Equal(t, "", shippedFrom(doc.Find(selPackageRow)))
}

func TestSplitStatus(t *testing.T) {
	testCases := []struct {
		text      string
		primary   string
		secondary string
	}{
		{text: "", primary: "", secondary: ""},
		{text: "primary", primary: "primary", secondary: ""},
		{text: "primary,secondary", primary: "primary", secondary: "secondary"},
		{text: " Delivered ,  Front Door ", primary: "Delivered", secondary: "Front Door"},
		{text: "Alert, Held, Addressee Request", primary: "Alert", secondary: "Held, Addressee Request"},
	}
	for _, test := range testCases {
		primary, secondary := splitStatus(test.text)
		require.Equal(t, test.primary, primary, test.text)
		require.Equal(t, test.secondary, secondary, test.text)
	}
}

func TestParseTimestamp(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	testCases := []struct {
		text     string
		expected time.Time
		ok       bool
	}{
		{text: "Sep 07, 2017 at 07:14 PM", expected: time.Date(2017, 9, 7, 19, 14, 0, 0, loc), ok: true},
		{text: "September 7, 2017 at 7:14 pm", expected: time.Date(2017, 9, 7, 19, 14, 0, 0, loc), ok: true},
		{text: "Thursday, September 7, 2017, 8:02 a.m.", expected: time.Date(2017, 9, 7, 8, 2, 0, 0, loc), ok: true},
		{text: "Thursday, September 7, 2017, 8:02 A.M.", expected: time.Date(2017, 9, 7, 8, 2, 0, 0, loc), ok: true},
		{text: "SEPTEMBER 7, 2017 AT 7:14 P.M.", expected: time.Date(2017, 9, 7, 19, 14, 0, 0, loc), ok: true},
		{text: "09/07/2017", expected: time.Date(2017, 9, 7, 0, 0, 0, 0, loc), ok: true},
		{text: "Arriving soon", ok: false},
		{text: "   ", ok: false},
	}
	for _, test := range testCases {
		parsed, ok := parseTimestamp(test.text, loc)
		require.Equal(t, test.ok, ok, test.text)
		if test.ok {
			require.True(t, test.expected.Equal(parsed), "%s: got %s", test.text, parsed)
		}
	}
}

func TestParseMail(t *testing.T) {
	date := time.Date(2017, 9, 22, 0, 0, 0, 0, time.UTC)
	base := DefaultEndpoints.MailImageBase

	mail := parseMail(parseDoc(t, dashboardPage), base, date)
	expected := []MailPiece{
		{
			Id:       "12345",
			ImageUrl: "https://informeddelivery.usps.com/box/pages/secure/getMailpieceImageFile.action?id=12345",
			Date:     date,
		},
		{
			Id:       "67890",
			ImageUrl: "https://informeddelivery.usps.com/box/pages/secure/getMailpieceImageFile.action?id=67890",
			Date:     date,
		},
	}
	diff := cmp.Diff(expected, mail)
	if diff != "" {
		t.Fatal(diff)
	}

	empty := parseMail(parseDoc(t, dashboardEmptyPage), base, date)
	require.NotNil(t, empty)
	require.Len(t, empty, 0)
}

func TestMailpieceId(t *testing.T) {
	image := "getMailpieceImageFile.action?id=12345"
	require.Equal(t, "12345", mailpieceId(image))
	require.Equal(t, DefaultEndpoints.MailImageBase+image, mailpieceUrl(DefaultEndpoints.MailImageBase, image))

	require.Equal(t, "", mailpieceId("getMailpieceImageFile.action"))
	require.Equal(t, "", mailpieceId("a?id=1&b=2"))
}

func TestParseProfile(t *testing.T) {
	profile, err := parseProfile(parseDoc(t, profilePage))
	require.NoError(t, err)
	require.Equal(t, Profile{
		"full_name":     "Jane Doe",
		"zip_code":      "12345",
		"email_address": "jane@example.com",
	}, profile)
}

func TestParseProfileTwoRows(t *testing.T) {
	markup := `<div class="atg_store_myProfileInfo"><table>
		<tr><td>Full Name</td><td>Jane Doe</td></tr>
		<tr><td>Zip Code</td><td> 12345 </td></tr>
	</table></div>`
	profile, err := parseProfile(parseDoc(t, []byte(markup)))
	require.NoError(t, err)
	require.Equal(t, Profile{"full_name": "Jane Doe", "zip_code": "12345"}, profile)
}

func TestParseProfileMissing(t *testing.T) {
	_, err := parseProfile(parseDoc(t, dashboardPage))
	require.ErrorIs(t, err, ErrMissingPageElement)
}

func TestParseLoginTokens(t *testing.T) {
	tokens, err := parseLoginTokens(loginPage, false)
	require.NoError(t, err)
	require.Equal(t, loginTokens{form: "tok-123"}, tokens)

	tokens, err = parseLoginTokens(loginPage, true)
	require.NoError(t, err)
	require.Equal(t, loginTokens{
		form:       "tok-123",
		uuid:       "b7f2c1d0-uuid-token",
		payloadKey: "PAYLOADKEY42",
	}, tokens)

	_, err = parseLoginTokens(loginNoTokenPage, false)
	require.ErrorIs(t, err, ErrNoLoginToken)
	require.ErrorIs(t, err, ErrMissingPageElement)

	noGtm := bytes.ReplaceAll(loginPage, []byte("uniqueStateKey"), []byte("somethingElse"))
	_, err = parseLoginTokens(noGtm, true)
	require.ErrorIs(t, err, ErrNoLoginToken)
}

func TestLoginError(t *testing.T) {
	reason, rejected, err := loginError([]byte(`<div><span class="error">
		The username or password you entered is incorrect.
	</span></div>`))
	require.NoError(t, err)
	require.True(t, rejected)
	require.Equal(t, "The username or password you entered is incorrect.", reason)

	_, rejected, err = loginError([]byte(`<a href="/box">Found</a>`))
	require.NoError(t, err)
	require.False(t, rejected)
}

func TestHasLoginForm(t *testing.T) {
	require.True(t, hasLoginForm(parseDoc(t, loginPage)))
	require.False(t, hasLoginForm(parseDoc(t, dashboardPage)))
}

func TestErrorMessages(t *testing.T) {
	err := &AuthError{Reason: "bad password"}
	require.Equal(t, "usps: authentication failed: bad password", err.Error())
	require.True(t, strings.HasPrefix((&MissingElementError{Page: "dashboard", Selector: "div.x"}).Error(), "usps: missing page element"))
}
