package model

import "time"

// DateLayout は日付の入出力フォーマット。
const DateLayout = "2006-01-02"

// ParseDate はYYYY-MM-DD形式の文字列をUTCの0時として解釈する。
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// FormatDate は日付をYYYY-MM-DD形式で返す。
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DateOf は時刻tをlocのカレンダー日付に変換し、UTCの0時として返す。
// 期限（DATE型）との比較に使用する。
func DateOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
