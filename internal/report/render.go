package report

import (
	"fmt"
	"strconv"
	"strings"

	"chocan/pkg/domain"
)

const separator = "----------------------------------------\n"

// formatFee renders the shortest decimal that round-trips (100 -> "100",
// 99.99 -> "99.99").
func formatFee(fee float64) string {
	return strconv.FormatFloat(fee, 'f', -1, 64)
}

func writePersonHeader(b *strings.Builder, role string, p domain.Person) {
	fmt.Fprintf(b, "%s name: %s\n", role, p.Name)
	fmt.Fprintf(b, "%s number: %d\n", role, p.ID)
	fmt.Fprintf(b, "%s street address: %s\n", role, p.Location.Address)
	fmt.Fprintf(b, "%s city: %s\n", role, p.Location.City)
	fmt.Fprintf(b, "%s state: %s\n", role, p.Location.State)
	fmt.Fprintf(b, "%s zip code: %d\n", role, p.Location.Zipcode)
}

func writeMemberItem(b *strings.Builder, it resolved) {
	b.WriteString(separator)
	fmt.Fprintf(b, "Date of service: %s\n", it.c.ServiceDate)
	fmt.Fprintf(b, "Provider name: %s\n", it.provider.Name)
	fmt.Fprintf(b, "Service name: %s\n", it.service.Name)
}

func writeProviderItem(b *strings.Builder, it resolved) {
	b.WriteString(separator)
	fmt.Fprintf(b, "Date of service: %s\n", it.c.ServiceDate)
	fmt.Fprintf(b, "Date and time data were received by the computer: %s\n", it.c.CapturedAt)
	fmt.Fprintf(b, "Member name: %s\n", it.member.Name)
	fmt.Fprintf(b, "Member number: %d\n", it.c.MemberID)
	fmt.Fprintf(b, "Service code: %d\n", it.c.ServiceCode)
	fmt.Fprintf(b, "Fee: %s\n", formatFee(it.service.Fee))
}

func writeProviderFooter(b *strings.Builder, consultations int, totalFee float64) {
	b.WriteString(separator)
	fmt.Fprintf(b, "Total consultations: %d\n", consultations)
	fmt.Fprintf(b, "Total fee: %s\n", formatFee(totalFee))
}

func writeManagerItem(b *strings.Builder, c domain.Consultation) {
	b.WriteString(separator)
	fmt.Fprintf(b, "Current date-time: %s\n", c.CapturedAt)
	fmt.Fprintf(b, "Service date: %s\n", c.ServiceDate)
	fmt.Fprintf(b, "Provider ID: %d\n", c.ProviderID)
	fmt.Fprintf(b, "Member ID: %d\n", c.MemberID)
	fmt.Fprintf(b, "Service code: %d\n", c.ServiceCode)
	fmt.Fprintf(b, "Comments: %s\n", c.Comments)
}

func writeDirectoryLine(b *strings.Builder, e domain.ServiceEntry) {
	fmt.Fprintf(b, "%s, ID: %d, Fee: %s\n", e.Name, e.ID, formatFee(e.Fee))
}
