package usps

import (
	"context"
	"strings"

	"myusps/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

const (
	report_profile_get = "profile.get"

	selProfile    = "div.atg_store_myProfileInfo"
	selProfileRow = "tr"
	selCell       = "td"
)

// Profile maps normalized labels of the account profile table to their values,
// ex. "Full Name" is stored under "full_name".
type Profile map[string]string

func cellText(cell *goquery.Selection) string {
	if cell.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(strings.Join(htmlutil.GetTextNodes(cell.Nodes[0]), " "))
}

func parseProfile(doc *goquery.Document) (Profile, error) {
	container := doc.Find(selProfile).First()
	if container.Length() == 0 {
		return nil, &MissingElementError{Page: "profile", Selector: selProfile}
	}

	profile := Profile{}
	container.Find(selProfileRow).Each(func(_ int, row *goquery.Selection) {
		cells := row.ChildrenFiltered(selCell)
		if cells.Length() != 2 {
			return
		}
		key := htmlutil.NormalizeKey(cellText(cells.Eq(0)))
		if key == "" {
			return
		}
		profile[key] = cellText(cells.Eq(1))
	})
	return profile, nil
}

func getProfile(ctx context.Context, s *Session) (Profile, error) {
	doc, err := s.fetchPage(ctx, s.endpoints.Profile, nil)
	if err != nil {
		return nil, err
	}
	profile, err := parseProfile(doc)
	if err != nil {
		s.tel.ReportBroken(report_profile_get, err)
		return nil, err
	}
	return profile, nil
}

// Profile returns the label/value pairs of the account profile page.
func (s *Session) Profile(ctx context.Context) (Profile, error) {
	return authenticated(ctx, s, "Profile", getProfile)
}
