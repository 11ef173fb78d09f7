// Package certid builds and normalizes public certificate codes.
//
// A code reads RMMO-YYFMMSDDCNN:
//
//	YY  last two digits of the issue year
//	F   first initial
//	MM  issue month
//	S   surname initial
//	DD  issue day
//	C   type code (C completion, S appreciation, A awards)
//	NN  serial within the bucket, zero-padded to at least two digits
package certid

import (
	"fmt"
	"net/url"
	"strings"

	"romportal/internal/certificate/models"
)

// Prefix starts every certificate code.
const Prefix = "RMMO-"

const (
	fallbackYear  = "2026"
	fallbackMonth = "01"
	fallbackDay   = "01"
)

// Generate computes a modern certificate code. It never fails: missing date
// parts fall back to fixed values and the date string is split, not parsed,
// so no timezone can shift the day.
func Generate(firstName, surname, dateIssued string, certType models.CertificateType, serial int) string {
	year, month, day := splitDate(dateIssued)
	month, day = strings.ToUpper(month), strings.ToUpper(day)
	yy := strings.ToUpper(year)
	if len(yy) > 2 {
		yy = yy[len(yy)-2:]
	}

	var b strings.Builder
	b.WriteString(Prefix)
	b.WriteString(yy)
	b.WriteString(initial(firstName))
	b.WriteString(month)
	b.WriteString(initial(surname))
	b.WriteString(day)
	b.WriteString(TypeCode(certType))
	fmt.Fprintf(&b, "%02d", serial)
	return b.String()
}

// TypeCode maps a certificate type to its single-letter code.
func TypeCode(t models.CertificateType) string {
	switch t {
	case models.TypeAwards:
		return "A"
	case models.TypeAppreciation:
		return "S"
	default:
		return "C"
	}
}

func splitDate(date string) (year, month, day string) {
	year, month, day = fallbackYear, fallbackMonth, fallbackDay
	parts := strings.Split(strings.TrimSpace(date), "-")
	if len(parts) > 0 && parts[0] != "" {
		year = parts[0]
	}
	if len(parts) > 1 && parts[1] != "" {
		month = parts[1]
	}
	if len(parts) > 2 && parts[2] != "" {
		day = parts[2]
	}
	return year, month, day
}

func initial(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return strings.ToUpper(string([]rune(name)[0]))
}

// NormalizeCode turns user input into a comparable code. Input may be a bare
// code with or without prefix, or a scanned QR payload carrying the code in a
// "c" query parameter or as the last path segment.
func NormalizeCode(raw string) string {
	code := strings.ToUpper(extractPayload(strings.TrimSpace(raw)))
	for strings.HasPrefix(code, Prefix+Prefix) {
		code = strings.TrimPrefix(code, Prefix)
	}
	if code == "" {
		return ""
	}
	if !strings.HasPrefix(code, Prefix) {
		code = Prefix + code
	}
	return code
}

// NormalizeNumber prepares a manually entered number for storage. It is the
// same transformation as NormalizeCode without payload extraction.
func NormalizeNumber(raw string) string {
	code := strings.ToUpper(strings.TrimSpace(raw))
	for strings.HasPrefix(code, Prefix+Prefix) {
		code = strings.TrimPrefix(code, Prefix)
	}
	if code == "" {
		return ""
	}
	if !strings.HasPrefix(code, Prefix) {
		code = Prefix + code
	}
	return code
}

// extractPayload unwraps a scanned link. Only a "c" query parameter or an
// absolute URL is unwrapped; anything else is taken as a bare code, which
// keeps legacy numbers containing "/" or "?" intact.
func extractPayload(s string) string {
	if !strings.ContainsAny(s, "?/") {
		return s
	}
	u, err := url.Parse(s)
	if err != nil {
		return s
	}
	if c := strings.TrimSpace(u.Query().Get("c")); c != "" {
		return c
	}
	if u.Scheme == "" || u.Host == "" {
		return s
	}
	path := strings.TrimRight(u.Path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		path = path[i+1:]
	}
	if path != "" {
		return path
	}
	return s
}

// ShareLink renders the public verification link encoded into QR codes.
func ShareLink(baseURL, code string) string {
	short := strings.TrimPrefix(strings.ToUpper(code), Prefix)
	return strings.TrimRight(baseURL, "/") + "/?c=" + url.QueryEscape(short)
}
