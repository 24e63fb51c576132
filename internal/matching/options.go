package matching

// Substitution rewrites one spelling of a title fragment into another.
type Substitution struct {
	Pattern     string `mapstructure:"pattern" yaml:"pattern"`
	Replacement string `mapstructure:"replacement" yaml:"replacement"`
	IgnoreCase  bool   `mapstructure:"ignore_case" yaml:"ignore_case"`
}

// Equivalent pairs a spelled-out number with the form it takes in stylized titles.
type Equivalent struct {
	Word  string `mapstructure:"word" yaml:"word"`
	Digit string `mapstructure:"digit" yaml:"digit"`
}

// Options holds the tunable constants of term generation and match resolution.
// The defaults were tuned against a handful of known titles and are not invariants.
type Options struct {
	Substitutions []Substitution `mapstructure:"substitutions" yaml:"substitutions"`
	Stopwords     []string       `mapstructure:"stopwords" yaml:"stopwords"`
	Equivalents   []Equivalent   `mapstructure:"equivalents" yaml:"equivalents"`

	ExactYearTolerance int `mapstructure:"exact_year_tolerance" yaml:"exact_year_tolerance"`
	FuzzyYearTolerance int `mapstructure:"fuzzy_year_tolerance" yaml:"fuzzy_year_tolerance"`
	YearOnlyTolerance  int `mapstructure:"year_only_tolerance" yaml:"year_only_tolerance"`
}

// DefaultSubstitutions returns the numeral/word rewrites tried as alternate search terms.
func DefaultSubstitutions() []Substitution {
	return []Substitution{
		{Pattern: "Se7en", Replacement: "Seven", IgnoreCase: true},
		{Pattern: "Seven", Replacement: "Se7en", IgnoreCase: true},
		{Pattern: "2", Replacement: "Two"},
		{Pattern: "Two", Replacement: "2", IgnoreCase: true},
		{Pattern: "3", Replacement: "Three"},
		{Pattern: "Three", Replacement: "3", IgnoreCase: true},
		{Pattern: "4", Replacement: "Four"},
		{Pattern: "Four", Replacement: "4", IgnoreCase: true},
	}
}

// DefaultStopwords returns the words dropped by the stopword variant.
func DefaultStopwords() []string {
	return []string{"for", "of", "the", "and", "in", "on", "at", "to"}
}

// DefaultEquivalents returns the word/digit pairs treated as similar titles.
func DefaultEquivalents() []Equivalent {
	return []Equivalent{
		{Word: "seven", Digit: "se7en"},
		{Word: "two", Digit: "2"},
		{Word: "three", Digit: "3"},
		{Word: "four", Digit: "4"},
		{Word: "five", Digit: "5"},
		{Word: "six", Digit: "6"},
		{Word: "eight", Digit: "8"},
		{Word: "nine", Digit: "9"},
		{Word: "ten", Digit: "10"},
	}
}

// DefaultOptions returns the stock matching configuration.
func DefaultOptions() Options {
	return Options{
		Substitutions:      DefaultSubstitutions(),
		Stopwords:          DefaultStopwords(),
		Equivalents:        DefaultEquivalents(),
		ExactYearTolerance: 1,
		FuzzyYearTolerance: 2,
		YearOnlyTolerance:  1,
	}
}

// withDefaults fills nil tables from DefaultOptions. A zero tolerance accepts
// only the query's own year; negative tolerances take the default.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Substitutions == nil {
		o.Substitutions = d.Substitutions
	}
	if o.Stopwords == nil {
		o.Stopwords = d.Stopwords
	}
	if o.Equivalents == nil {
		o.Equivalents = d.Equivalents
	}
	if o.ExactYearTolerance < 0 {
		o.ExactYearTolerance = d.ExactYearTolerance
	}
	if o.FuzzyYearTolerance < 0 {
		o.FuzzyYearTolerance = d.FuzzyYearTolerance
	}
	if o.YearOnlyTolerance < 0 {
		o.YearOnlyTolerance = d.YearOnlyTolerance
	}
	return o
}
