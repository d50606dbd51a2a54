package chat

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/acrolabs/counsel/pkg/format"
	"github.com/acrolabs/counsel/pkg/schema"
)

// CardRow is one labeled row of the result summary card. A Divider row
// carries no label or value.
type CardRow struct {
	Label     string `json:"label,omitempty"`
	Value     string `json:"value,omitempty"`
	Highlight bool   `json:"highlight,omitempty"`
	Divider   bool   `json:"divider,omitempty"`
}

// ResultCard is the structured repayment-plan summary. The labeled-row
// structure is the primary observable output of the interview and is
// preserved verbatim by every renderer.
type ResultCard struct {
	Title string    `json:"title"`
	Rows  []CardRow `json:"rows"`
}

// BuildCard formats a computed result into the fixed summary template:
// repayment rate, debt breakdown (secured-debt row only when secured debt is
// positive), totals, and the client-derived forgiveness estimate.
func BuildCard(res *schema.Result) *ResultCard {
	divider := CardRow{Divider: true}

	rows := []CardRow{
		{Label: "예상 변제율", Value: fmt.Sprintf("%.1f%%", res.RepaymentRate), Highlight: true},
		divider,
		{Label: "총 채무", Value: format.DisplayWon(res.TotalDebt)},
	}

	unsecuredLabel := "무담보 채무"
	if res.SecuredDebt > 0 {
		rows = append(rows, CardRow{Label: "└ 별제권 (담보)", Value: format.DisplayWon(res.SecuredDebt)})
		unsecuredLabel = "└ 무담보 채무"
	}
	rows = append(rows,
		CardRow{Label: unsecuredLabel, Value: format.DisplayWon(res.UnsecuredDebt)},
		divider,
		CardRow{Label: "총 변제액 (36개월)", Value: format.DisplayWon(res.TotalRepayment)},
		CardRow{Label: "월 변제금", Value: format.DisplayWon(res.MonthlyRepaymentTotal)},
		divider,
		CardRow{Label: "예상 탕감액", Value: format.DisplayWon(res.Forgiven()), Highlight: true},
	)

	return &ResultCard{Title: "변제계획 요약", Rows: rows}
}

// Markdown renders the card as transcript rich text.
func (c *ResultCard) Markdown() string {
	var b strings.Builder
	b.WriteString("**")
	b.WriteString(c.Title)
	b.WriteString("**\n")
	for _, row := range c.Rows {
		if row.Divider {
			b.WriteString("\n")
			continue
		}
		if row.Highlight {
			fmt.Fprintf(&b, "%s  **%s**\n", row.Label, row.Value)
			continue
		}
		fmt.Fprintf(&b, "%s  %s\n", row.Label, row.Value)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Plain renders the card for plain terminal output, right-aligning values in
// a fixed-width column. Hangul is double-width, so padding is computed with
// runewidth rather than len.
func (c *ResultCard) Plain(width int) string {
	if width < 24 {
		width = 24
	}
	var b strings.Builder
	b.WriteString(c.Title)
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", width))
	b.WriteString("\n")
	for _, row := range c.Rows {
		if row.Divider {
			b.WriteString(strings.Repeat("┄", width))
			b.WriteString("\n")
			continue
		}
		pad := width - runewidth.StringWidth(row.Label) - runewidth.StringWidth(row.Value)
		if pad < 1 {
			pad = 1
		}
		b.WriteString(row.Label)
		b.WriteString(strings.Repeat(" ", pad))
		b.WriteString(row.Value)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
