// Package report renders the monthly digest as Markdown. Rendering is a pure
// function of its inputs: identical records always produce byte-identical
// output.
package report

import (
	"fmt"
	"strings"

	"github.com/growthdesk/blogdigest/internal/domain"
)

const tableHeader = "| Сайт | Название статьи | Дата публикации | Ссылка | Описание |"
const tableDivider = "| --- | --- | --- | --- | --- |"

// publishedLayout renders publish dates as DD.MM.YYYY.
const publishedLayout = "02.01.2006"

// Render produces the Markdown report for the month: one "## <site>" block
// per section in input order, a table of articles per site, and the
// placeholder line for sites with no matches.
func Render(month domain.Month, sections []domain.Section) string {
	var b strings.Builder

	for _, section := range sections {
		fmt.Fprintf(&b, "## %s\n", section.Site.Name)

		if len(section.Articles) == 0 {
			fmt.Fprintf(&b, "Нет статей за %s.\n\n", month)
			continue
		}

		b.WriteString(tableHeader + "\n")
		b.WriteString(tableDivider + "\n")
		for _, article := range section.Articles {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
				article.Site,
				escapeCell(article.Title),
				article.PublishedAt.Format(publishedLayout),
				article.URL,
				escapeCell(article.Summary),
			)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// escapeCell escapes pipe characters so titles and summaries cannot break the
// table layout.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
