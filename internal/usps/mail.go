package usps

import (
	"context"
	"strings"
	"time"

	"myusps/internal/components/chrono"

	"github.com/PuerkitoBio/goquery"
)

const (
	report_dashboard_get_mail = "dashboard.get-mail"

	selMailpiece      = "div.mailpiece"
	selMailpieceImage = "img.mailpieceIMG"

	dashboardDateLayout = "01/02/2006"
)

// MailPiece is one scanned mail image delivered on Date.
type MailPiece struct {
	Id       string    `json:"id"`
	ImageUrl string    `json:"image"`
	Date     time.Time `json:"date"`
}

func (s *Session) fetchDashboard(ctx context.Context, date time.Time) (*goquery.Document, error) {
	return s.fetchPage(ctx, s.endpoints.Dashboard, map[string]string{
		"selectedDate": date.Format(dashboardDateLayout),
	})
}

func mailpieceImage(row *goquery.Selection) string {
	src, _ := row.Find(selMailpieceImage).First().Attr("src")
	return src
}

// mailpieceId is the value of the single query parameter of the image src,
// ex. "getMailpieceImageFile.action?id=12345" gives "12345".
func mailpieceId(image string) string {
	parts := strings.Split(image, "=")
	if len(parts) != 2 {
		return ""
	}
	return parts[1]
}

func mailpieceUrl(base, image string) string {
	return base + image
}

// parseMail skips rows without an image instead of returning partial pieces.
func parseMail(doc *goquery.Document, imageBase string, date time.Time) []MailPiece {
	mail := []MailPiece{}
	doc.Find(selMailpiece).Each(func(_ int, row *goquery.Selection) {
		image := mailpieceImage(row)
		if image == "" {
			return
		}
		mail = append(mail, MailPiece{
			Id:       mailpieceId(image),
			ImageUrl: mailpieceUrl(imageBase, image),
			Date:     date,
		})
	})
	return mail
}

// Mail returns the mail scanned for the calendar day of date, the zero
// time means today.
func (s *Session) Mail(ctx context.Context, date time.Time) ([]MailPiece, error) {
	if date.IsZero() {
		date = s.time.Now()
	}
	date = chrono.Date(date)

	return authenticated(ctx, s, "Mail", func(ctx context.Context, s *Session) ([]MailPiece, error) {
		s.tel.ReportDebug("get mail", date.Format(dashboardDateLayout))
		doc, err := s.fetchDashboard(ctx, date)
		if err != nil {
			return nil, err
		}
		mail := parseMail(doc, s.endpoints.MailImageBase, date)
		s.tel.ReportCount(report_dashboard_get_mail, int64(len(mail)))
		return mail, nil
	})
}
