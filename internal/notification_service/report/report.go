// Package report renders and emails the list of reminders an expiration sweep expired.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/ordernotify/golang_services/internal/notification_service/domain"
)

const (
	Subject            = "Expired Orders"
	Title              = "Expired Order Data Report"
	AttachmentFilename = "expired-orders.csv"

	displayTimeLayout = "01/02/2006 03:04 PM"
)

var columns = []string{
	"Order #", "Customer Name", "Phone", "Original Pickup Date", "Expired", "Status", "Reminder Sent", "Last Updated",
}

// Report is one rendered expiration report.
type Report struct {
	Subject string
	HTML    string
	Text    string
	CSV     []byte
}

type row struct {
	OrderNumber       string
	Name              string
	Phone             string
	InitialPickupDate string
	Expired           string
	Status            string
	ReminderSent      string
	LastUpdated       string
}

func (r row) cells() []string {
	return []string{r.OrderNumber, r.Name, r.Phone, r.InitialPickupDate, r.Expired, r.Status, r.ReminderSent, r.LastUpdated}
}

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"even": func(i int) bool { return i%2 == 0 },
}).Parse(`<div style="font-family: Arial, sans-serif;">
  <h2 style="color: #333; margin-bottom: 20px;">{{.Title}}</h2>
  {{- if .Rows}}
  <table style="width: 100%; border-collapse: collapse; font-family: Arial, sans-serif; font-size: 14px; margin: 20px 0;">
    <thead>
      <tr>{{range .Columns}}<th style="background-color: #4a90e2; color: white; padding: 12px 8px; text-align: left; border: 1px solid #ddd; font-weight: bold;">{{.}}</th>{{end}}</tr>
    </thead>
    <tbody>
      {{- range $i, $r := .Rows}}
      <tr style="background-color: {{if even $i}}#f9f9f9{{else}}white{{end}};">
        <td style="padding: 10px 8px; border: 1px solid #ddd; text-align: left;">{{$r.OrderNumber}}</td>
        <td style="padding: 10px 8px; border: 1px solid #ddd; text-align: left;">{{$r.Name}}</td>
        <td style="padding: 10px 8px; border: 1px solid #ddd; text-align: left;">{{$r.Phone}}</td>
        <td style="padding: 10px 8px; border: 1px solid #ddd; text-align: left;">{{$r.InitialPickupDate}}</td>
        <td style="padding: 10px 8px; border: 1px solid #ddd; text-align: left;">{{$r.Expired}}</td>
        <td style="padding: 10px 8px; border: 1px solid #ddd; text-align: left;"><span style="color: #e74c3c; font-weight: bold; text-transform: uppercase;">{{$r.Status}}</span></td>
        <td style="padding: 10px 8px; border: 1px solid #ddd; text-align: left;">{{$r.ReminderSent}}</td>
        <td style="padding: 10px 8px; border: 1px solid #ddd; text-align: left;">{{$r.LastUpdated}}</td>
      </tr>
      {{- end}}
    </tbody>
  </table>
  {{- else}}
  <p>No data available.</p>
  {{- end}}
  <p style="font-size: 12px; color: #666; margin-top: 20px;">Total records: {{len .Rows}}</p>
</div>
`))

// Build renders records as HTML, plain text and CSV. Times are shown in loc (UTC when nil).
func Build(records []*domain.ReminderRecord, loc *time.Location) (*Report, error) {
	if loc == nil {
		loc = time.UTC
	}
	rows := make([]row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, toRow(rec, loc))
	}

	var html bytes.Buffer
	if err := htmlTemplate.Execute(&html, map[string]any{"Title": Title, "Columns": columns, "Rows": rows}); err != nil {
		return nil, fmt.Errorf("rendering report html: %w", err)
	}

	csvData, err := renderCSV(rows)
	if err != nil {
		return nil, err
	}

	return &Report{
		Subject: Subject,
		HTML:    html.String(),
		Text:    renderText(rows),
		CSV:     csvData,
	}, nil
}

func toRow(rec *domain.ReminderRecord, loc *time.Location) row {
	return row{
		OrderNumber:       orDash(rec.OrderNumber),
		Name:              orDash(rec.Name),
		Phone:             orDash(domain.FormatPhoneNumber(rec.PhoneNumber)),
		InitialPickupDate: orDash(rec.InitialPickupDate),
		Expired:           formatTime(rec.ExpirationDate, loc),
		Status:            strings.ToUpper(string(domain.ReminderStatusExpired)),
		ReminderSent:      formatTime(rec.ReminderSentDate, loc),
		LastUpdated:       formatTime(rec.LastUpdated, loc),
	}
}

func renderText(rows []row) string {
	var b strings.Builder
	b.WriteString("Here's a list of all the expired orders:\n\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "#%s  %s  %s  pickup %s  expired %s\n", r.OrderNumber, r.Name, r.Phone, r.InitialPickupDate, r.Expired)
	}
	fmt.Fprintf(&b, "\nTotal records: %d\n", len(rows))
	return b.String()
}

func renderCSV(rows []row) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(columns); err != nil {
		return nil, fmt.Errorf("writing CSV header failed: %w", err)
	}
	for _, r := range rows {
		if err := w.Write(r.cells()); err != nil {
			return nil, fmt.Errorf("writing CSV row failed: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("csv writer error: %w", err)
	}
	return buf.Bytes(), nil
}

func formatTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(loc).Format(displayTimeLayout)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
