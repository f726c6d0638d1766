package pricing

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Category is the product category derived from a title.
type Category string

const (
	CategoryRevistaAluno     Category = "revista_aluno"
	CategoryRevistaProfessor Category = "revista_professor"
	CategoryBiblia           Category = "biblia"
	CategoryLivro            Category = "livro"
	CategoryKit              Category = "kit"
	CategoryInfantil         Category = "infantil"
	CategoryJuvenil          Category = "juvenil"
	CategoryOutros           Category = "outros"
)

// AllCategories returns every category in classification order.
func AllCategories() []Category {
	return []Category{
		CategoryRevistaProfessor,
		CategoryRevistaAluno,
		CategoryKit,
		CategoryBiblia,
		CategoryInfantil,
		CategoryJuvenil,
		CategoryLivro,
		CategoryOutros,
	}
}

// IsValid returns true if c is a known category
func (c Category) IsValid() bool {
	for _, known := range AllCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// String returns the string representation of the category
func (c Category) String() string {
	return string(c)
}

// keywordRule matches when every keyword is a word of the folded title.
type keywordRule struct {
	keywords []string
	category Category
}

// Order matters: a teacher's magazine also contains "revista".
var keywordRules = []keywordRule{
	{[]string{"revista", "professor"}, CategoryRevistaProfessor},
	{[]string{"revista", "professora"}, CategoryRevistaProfessor},
	{[]string{"revista", "mestre"}, CategoryRevistaProfessor},
	{[]string{"revista"}, CategoryRevistaAluno},
	{[]string{"kit"}, CategoryKit},
	{[]string{"combo"}, CategoryKit},
	{[]string{"biblia"}, CategoryBiblia},
	{[]string{"infantil"}, CategoryInfantil},
	{[]string{"criancas"}, CategoryInfantil},
	{[]string{"kids"}, CategoryInfantil},
	{[]string{"juvenil"}, CategoryJuvenil},
	{[]string{"adolescentes"}, CategoryJuvenil},
	{[]string{"jovens"}, CategoryJuvenil},
	{[]string{"livro"}, CategoryLivro},
}

// Classify maps a free-text product title to a category. It is total:
// titles matching no keyword are CategoryOutros.
func Classify(title string) Category {
	words := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(Fold(title), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		words[w] = struct{}{}
	}

	for _, rule := range keywordRules {
		matched := true
		for _, kw := range rule.keywords {
			if _, ok := words[kw]; !ok {
				matched = false
				break
			}
		}
		if matched {
			return rule.category
		}
	}
	return CategoryOutros
}

// Fold lowercases s, strips diacritics and collapses whitespace, so
// "Evangelho de  JOÃO" and "evangelho de joao" compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

// ContainsFolded reports whether needle occurs in haystack, ignoring case
// and accents.
func ContainsFolded(haystack, needle string) bool {
	return strings.Contains(Fold(haystack), Fold(needle))
}
