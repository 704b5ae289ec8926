package usps

import (
	"context"
	"strings"
	"time"

	"myusps/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

const (
	report_dashboard_get_packages = "dashboard.get-packages"

	selPackageDashboard = "div.package-dashboard"
	selNoPackages       = "div.no-packages"
	selPackageRow       = "div.pack_row"
	selHeading          = "h1, h2, h3, h4, h5, h6"
	selPackageStatus    = "div.pack_status"
	selPackageDate      = "div.pack_date"
	selPackageLocation  = "div.pack_location"
	selShippedFrom      = "div.mobile-from"
)

var statusColorClasses = []string{
	"pack_green",
	"pack_blue",
	"pack_red",
	"pack_orange",
	"pack_yellow",
	"pack_gray",
}

// Package is one tracked shipment, fields the page did not have are empty.
type Package struct {
	TrackingNumber  string     `json:"tracking_number"`
	PrimaryStatus   string     `json:"primary_status"`
	SecondaryStatus string     `json:"secondary_status"`
	StatusTime      *time.Time `json:"status_time,omitempty"`
	ShippedFrom     string     `json:"shipped_from"`
	Location        string     `json:"location"`
}

func hasStatusColor(_ int, sel *goquery.Selection) bool {
	for _, class := range statusColorClasses {
		if sel.HasClass(class) {
			return true
		}
	}
	return false
}

func trackingNumber(row *goquery.Selection) string {
	heading := row.Find(selHeading).FilterFunction(hasStatusColor).First()
	return htmlutil.SelectionText(heading)
}

// splitStatus splits "primary, secondary" into its two parts, anything
// after the first comma belongs to the secondary status.
func splitStatus(text string) (string, string) {
	primary, secondary, _ := strings.Cut(text, ",")
	return strings.TrimSpace(primary), strings.TrimSpace(secondary)
}

func packageStatus(row *goquery.Selection) (string, string) {
	return splitStatus(htmlutil.SelectionText(row.Find(selPackageStatus)))
}

func statusTime(row *goquery.Selection, loc *time.Location) *time.Time {
	t, ok := parseTimestamp(htmlutil.SelectionText(row.Find(selPackageDate)), loc)
	if !ok {
		return nil
	}
	return &t
}

func packageLocation(row *goquery.Selection) string {
	text := htmlutil.SelectionText(row.Find(selPackageLocation))
	return strings.ReplaceAll(text, " ,", ",")
}

func shippedFrom(row *goquery.Selection) string {
	from := row.Find(selShippedFrom).First().ChildrenFiltered("div").Eq(1)
	return htmlutil.SelectionText(from)
}

func parsePackageRow(row *goquery.Selection, loc *time.Location) Package {
	primary, secondary := packageStatus(row)
	return Package{
		TrackingNumber:  trackingNumber(row),
		PrimaryStatus:   primary,
		SecondaryStatus: secondary,
		StatusTime:      statusTime(row, loc),
		ShippedFrom:     shippedFrom(row),
		Location:        packageLocation(row),
	}
}

// parsePackages reads every package row of the dashboard. The no-packages
// placeholder short-circuits to an empty list before the dashboard is looked at.
func parsePackages(doc *goquery.Document, loc *time.Location) ([]Package, error) {
	if doc.Find(selNoPackages).Length() > 0 {
		return []Package{}, nil
	}

	dashboard := doc.Find(selPackageDashboard).First()
	if dashboard.Length() == 0 {
		return nil, &MissingElementError{Page: "dashboard", Selector: selPackageDashboard}
	}

	rows := dashboard.Find(selPackageRow)
	packages := make([]Package, 0, rows.Length())
	rows.Each(func(_ int, row *goquery.Selection) {
		packages = append(packages, parsePackageRow(row, loc))
	})
	return packages, nil
}

func getPackages(ctx context.Context, s *Session) ([]Package, error) {
	doc, err := s.fetchDashboard(ctx, s.time.Now())
	if err != nil {
		return nil, err
	}
	packages, err := parsePackages(doc, s.time.Location())
	if err != nil {
		s.tel.ReportBroken(report_dashboard_get_packages, err)
		return nil, err
	}
	s.tel.ReportCount(report_dashboard_get_packages, int64(len(packages)))
	return packages, nil
}

// Packages returns the shipments currently listed on the dashboard.
func (s *Session) Packages(ctx context.Context) ([]Package, error) {
	return authenticated(ctx, s, "Packages", getPackages)
}
