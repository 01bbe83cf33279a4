package storefront

import (
	"embed"
	"html/template"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed templates/*.html
var templateFS embed.FS

var categoryEmojis = map[string]string{
	"keychains":  "🔑",
	"bottles":    "💧",
	"nameplates": "📝",
}

const defaultEmoji = "🎨"

// CategoryEmoji returns the card emoji for a category, matched case-insensitively
func CategoryEmoji(category string) string {
	if e, ok := categoryEmojis[strings.ToLower(category)]; ok {
		return e
	}
	return defaultEmoji
}

// CategoryLabel capitalizes a category for its badge
func CategoryLabel(category string) string {
	return cases.Title(language.English).String(category)
}

var priceLocale = language.MustParse("en-IN")

// FormatPrice renders a rupee amount such as ₹199 or ₹249.50
func FormatPrice(amount float64) string {
	p := message.NewPrinter(priceLocale)
	s := p.Sprint(currency.NarrowSymbol(currency.INR.Amount(amount)))
	// Glue the symbol to the digits and drop paise on whole amounts
	s = strings.Join(strings.Fields(s), "")
	return strings.TrimSuffix(s, ".00")
}

// Page is everything the landing page template renders
type Page struct {
	Content *Content
	Grid    Grid
}

// Renderer executes the landing page template
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded templates
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("index.html").Funcs(template.FuncMap{
		"emoji":    CategoryEmoji,
		"category": CategoryLabel,
		"price":    FormatPrice,
		"stars":    func(n int) string { return strings.Repeat("★", n) },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render writes the landing page
func (r *Renderer) Render(w io.Writer, page Page) error {
	return r.tmpl.ExecuteTemplate(w, "index.html", page)
}
