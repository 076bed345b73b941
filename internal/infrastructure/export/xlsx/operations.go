package xlsx

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"venuedesk/internal/domain/operations"
)

// DailyBusinessName is the sheet and file base name of the daily business
// report.
const DailyBusinessName = "業務連絡書"

// DailyBusiness renders the meetings of the day, one row per detail with
// its used services on one line.
func DailyBusiness(r *operations.DailyBusinessReport) (*Workbook, error) {
	f := excelize.NewFile()
	s := newSheet(f, DailyBusinessName)

	s.set(1, 1, "対象日: "+r.Day.Format("2006/01/02"))
	s.set(6, 1, "発行日時: "+r.IssuedAt.Format("2006/01/02 15:04"))
	headers := []string{"会議室", "顧客名", "開始", "終了", "レイアウト", "件名", "人数", "追加机", "追加椅子", "使用サービス", "備考"}
	widths := []float64{15, 25, 8, 8, 12, 25, 8, 8, 8, 40, 30}
	for col, h := range headers {
		s.set(col+1, 2, h)
		s.width(col+1, widths[col])
	}
	for i, d := range r.Details {
		used := make([]string, len(d.UsedServices))
		for j, u := range d.UsedServices {
			used[j] = fmt.Sprintf("%s×%d", u.Name, u.Count)
		}
		for col, v := range []any{
			d.RoomName, d.CustomerName, d.StartTime, d.EndTime, d.LayoutName, d.Title,
			d.GuestCount, d.ExtraTableCount, d.ExtraChairCount, strings.Join(used, "、"), d.Note,
		} {
			s.set(col+1, i+3, v)
		}
	}
	if len(r.Details) > 0 {
		s.style(1, 3, len(headers), len(r.Details)+2, amountStyle(""))
	}
	s.style(1, 2, len(headers), 2, headerStyle(fillHeader))

	if s.err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("daily business sheet: %w", s.err)
	}
	return &Workbook{FileName: fileName(DailyBusinessName, r.IssuedAt), file: f}, nil
}
