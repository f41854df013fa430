package survey

import (
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
)

const labelLimit = 80

// questionLabel returns a short plain-text label for log lines.
func questionLabel(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find("script, style, option").Remove()

	text := strings.Join(strings.Fields(doc.Text()), " ")
	if r := []rune(text); len(r) > labelLimit {
		text = string(r[:labelLimit]) + "..."
	}
	return text
}

const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

// questionFormatter renders question HTML for the summary request.
type questionFormatter struct {
	format string
	md     *converter.Converter
}

func newQuestionFormatter(format string) (*questionFormatter, error) {
	switch format {
	case "", FormatHTML:
		return &questionFormatter{format: FormatHTML}, nil
	case FormatMarkdown:
		return &questionFormatter{
			format: FormatMarkdown,
			md: converter.NewConverter(
				converter.WithPlugins(
					base.NewBasePlugin(),
					commonmark.NewCommonmarkPlugin(),
					table.NewTablePlugin(),
				),
			),
		}, nil
	default:
		return nil, fmt.Errorf("unknown question format %q", format)
	}
}

func (f *questionFormatter) render(html string) (string, error) {
	if f.md == nil {
		return html, nil
	}
	out, err := f.md.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("convert question to markdown: %w", err)
	}
	return out, nil
}
